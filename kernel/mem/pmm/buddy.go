package pmm

import (
	"reflect"
	"unsafe"

	"petos/kernel"
	"petos/kernel/mem"
)

// buddyOrders is the number of distinct block sizes the allocator tracks,
// from single pages (order 0) up to mem.MaxPageOrder.
const buddyOrders = int(mem.MaxPageOrder) + 1

// orderBitmap is a one-bit-per-block free/used bitmap for a single order,
// built over raw memory the way the teacher's physical.Allocator builds its
// per-order bitmaps: a reflect.SliceHeader laid directly over a byte range
// handed to us by the boot memory allocator, since no general-purpose heap
// exists yet at buddy-allocator bring-up time.
type orderBitmap struct {
	bits   []uint8
	blocks uint64
}

func newOrderBitmap(addr uintptr, blocks uint64) orderBitmap {
	byteLen := (blocks + 7) / 8
	var bits []uint8
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&bits))
	hdr.Data = addr
	hdr.Len = int(byteLen)
	hdr.Cap = int(byteLen)
	return orderBitmap{bits: bits, blocks: blocks}
}

func (b *orderBitmap) sizeBytes() uintptr {
	return uintptr((b.blocks + 7) / 8)
}

func (b *orderBitmap) isFree(block uint64) bool {
	return b.bits[block/8]&(1<<(block%8)) == 0
}

func (b *orderBitmap) setUsed(block uint64) {
	b.bits[block/8] |= 1 << (block % 8)
}

func (b *orderBitmap) setFree(block uint64) {
	b.bits[block/8] &^= 1 << (block % 8)
}

// BuddyAllocator is a power-of-two physical page-frame allocator. It owns
// frames [startFrame, startFrame+frameCount) and hands out contiguous runs
// sized 2^order pages, splitting and merging blocks as described in
// SPEC_FULL.md §4.1.
type BuddyAllocator struct {
	startFrame Frame
	frameCount uint64
	bitmaps    [buddyOrders]orderBitmap
}

// NewBuddyAllocator constructs an allocator governing frameCount frames
// starting at startFrame, using the byte range [bitmapBase, bitmapBase+n)
// for its free bitmaps. Callers (normally the boot allocator) must reserve
// that range before any page in [startFrame, startFrame+frameCount) is
// handed out.
func NewBuddyAllocator(startFrame Frame, frameCount uint64, bitmapBase uintptr) *BuddyAllocator {
	a := &BuddyAllocator{startFrame: startFrame, frameCount: frameCount}

	addr := bitmapBase
	for order := 0; order < buddyOrders; order++ {
		blocks := frameCount >> uint(order)
		if blocks == 0 {
			blocks = 1
		}
		bm := newOrderBitmap(addr, blocks)
		a.bitmaps[order] = bm
		addr += bm.sizeBytes()
	}

	for block := uint64(0); block < a.bitmaps[buddyOrders-1].blocks; block++ {
		a.bitmaps[buddyOrders-1].setFree(block)
	}
	for order := buddyOrders - 2; order >= 0; order-- {
		for block := range a.bitmaps[order].bits {
			a.bitmaps[order].bits[block] = 0xFF
		}
	}

	return a
}

// BitmapBytes reports how many bytes of reserved memory the bitmaps for
// frameCount frames require, so callers can size the reservation before
// calling NewBuddyAllocator.
func BitmapBytes(frameCount uint64) uintptr {
	var total uintptr
	for order := 0; order < buddyOrders; order++ {
		blocks := frameCount >> uint(order)
		if blocks == 0 {
			blocks = 1
		}
		total += uintptr((blocks + 7) / 8)
	}
	return total
}

// AllocContiguous reserves a run of 2^order contiguous frames, splitting a
// larger free block if no exact-order block is free.
func (a *BuddyAllocator) AllocContiguous(order mem.PageOrder) (Frame, *kernel.Error) {
	o := int(order)
	if o >= buddyOrders {
		return InvalidFrame, &kernel.Error{Module: "pmm", Message: "order exceeds MaxPageOrder", Kind: kernel.ErrInvalidData}
	}

	splitFrom := -1
	var block uint64
	for cur := o; cur < buddyOrders; cur++ {
		if b, ok := a.firstFree(cur); ok {
			splitFrom = cur
			block = b
			break
		}
	}
	if splitFrom == -1 {
		return InvalidFrame, kernel.ErrOutOfMemory
	}

	a.bitmaps[splitFrom].setUsed(block)
	for cur := splitFrom; cur > o; cur-- {
		left := block * 2
		right := left + 1
		a.bitmaps[cur-1].setUsed(left)
		a.bitmaps[cur-1].setFree(right)
		block = left
	}

	return a.startFrame + Frame(block<<uint(o)), nil
}

// AllocZeroed behaves like AllocContiguous but zero-fills the returned run
// before returning it, matching the teacher's AllocZeroed helper used for
// page tables and other structures that must not observe stale contents.
func (a *BuddyAllocator) AllocZeroed(order mem.PageOrder) (Frame, *kernel.Error) {
	f, err := a.AllocContiguous(order)
	if err != nil {
		return InvalidFrame, err
	}
	mem.Memset(f.Address(), 0, order.Size())
	return f, nil
}

// Dealloc releases a run previously returned by AllocContiguous/AllocZeroed
// at the same order, merging it with its buddy up through higher orders
// whenever the buddy is also free.
func (a *BuddyAllocator) Dealloc(f Frame, order mem.PageOrder) {
	o := int(order)
	block := uint64(f-a.startFrame) >> uint(o)

	for o < buddyOrders {
		a.bitmaps[o].setFree(block)

		if o == buddyOrders-1 {
			break
		}

		buddy := block ^ 1
		if buddy >= a.bitmaps[o].blocks || !a.bitmaps[o].isFree(buddy) {
			break
		}

		a.bitmaps[o].setUsed(block)
		a.bitmaps[o].setUsed(buddy)
		block /= 2
		o++
	}
}

func (a *BuddyAllocator) firstFree(order int) (uint64, bool) {
	bm := &a.bitmaps[order]
	for block := uint64(0); block < bm.blocks; block++ {
		if bm.isFree(block) {
			return block, true
		}
	}
	return 0, false
}
