package object

// Container is satisfied by every concrete object type: it must expose its
// embedded Object header so Handle can manage its refcount generically.
type Container interface {
	Obj() *Object
}

// Handle[T] is a reference-counted, clonable reference to a kernel object.
// Cloning bumps the refcount instead of copying the object; Close drops a
// reference and, once the last one is gone, invokes destroy so the owning
// package can release whatever backing memory it used.
type Handle[T Container] struct {
	ptr     T
	destroy func(T)
}

// NewHandle wraps value in a Handle, taking ownership of the single
// reference value's Object header was constructed with.
func NewHandle[T Container](value T, destroy func(T)) Handle[T] {
	return Handle[T]{ptr: value, destroy: destroy}
}

// Get returns the underlying object. The returned pointer is only valid
// while the handle (or a clone of it) remains open.
func (h Handle[T]) Get() T { return h.ptr }

// Value returns the numeric handle value used to name this object across
// the syscall boundary.
func (h Handle[T]) Value() uintptr { return h.ptr.Obj().Handle() }

// Clone returns a new handle to the same object, incrementing its
// reference count.
func (h Handle[T]) Clone() Handle[T] {
	h.ptr.Obj().Retain()
	return h
}

// Close drops this handle's reference, invoking destroy if it was the
// last one.
func (h Handle[T]) Close() {
	if h.ptr.Obj().Release() && h.destroy != nil {
		h.destroy(h.ptr)
	}
}
