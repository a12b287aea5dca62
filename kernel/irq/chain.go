package irq

import (
	"petos/kernel/kfmt/early"
	"petos/kernel/sync"
)

// Callback is invoked once per dispatched hardware interrupt on the line it
// is registered against. alreadyHandled is true if an earlier callback in
// the same chain already claimed the interrupt; the callback returns true
// if it consumed it.
type Callback func(alreadyHandled bool, ctx interface{}, regs *Regs) bool

type callbackEntry struct {
	driverHandle uintptr
	fn           Callback
	ctx          interface{}
}

// Chain is the ordered list of callbacks attached to one hardware IRQ line.
// Grounded on original_source/kernel/src/io/irq/chain.rs: dispatch iterates
// the list once, ORing each callback's claim, and always completes the PIC
// even when nothing claimed the interrupt (a spurious IRQ).
type Chain struct {
	mu        sync.Spinlock
	line      uint8
	callbacks []callbackEntry
}

// NewChain creates an (empty) callback chain for the given PIC line.
func NewChain(line uint8) *Chain {
	return &Chain{line: line}
}

// Line returns the PIC line this chain is dispatched for.
func (c *Chain) Line() uint8 {
	return c.line
}

// Append registers a callback at the end of the chain.
func (c *Chain) Append(driverHandle uintptr, fn Callback, ctx interface{}) {
	c.mu.Acquire()
	defer c.mu.Release()

	c.callbacks = append(c.callbacks, callbackEntry{driverHandle: driverHandle, fn: fn, ctx: ctx})
}

// Remove unregisters every callback owned by the given driver handle.
func (c *Chain) Remove(driverHandle uintptr) {
	c.mu.Acquire()
	defer c.mu.Release()

	kept := c.callbacks[:0]
	for _, entry := range c.callbacks {
		if entry.driverHandle != driverHandle {
			kept = append(kept, entry)
		}
	}
	c.callbacks = kept
}

// Dispatch runs every registered callback exactly once, in registration
// order, disabled-interrupts / no-nesting guaranteed by the caller (the
// naked interrupt stub never re-enables interrupts before calling this).
// If nothing claims the interrupt, the PIC is still completed and the
// dispatch is logged as spurious.
func (c *Chain) Dispatch(regs *Regs) {
	sync.EnterIRQ()
	defer sync.LeaveIRQ()

	c.mu.Acquire()
	callbacks := c.callbacks
	c.mu.Release()

	handled := false
	for _, entry := range callbacks {
		if entry.fn(handled, entry.ctx, regs) {
			handled = true
		}
	}

	if !handled {
		early.Printf("[irq] line %d not dispatched (spurious)\n", c.line)
	}
	CompletePIC(c.line)
}
