// Package kmain wires every kernel subsystem together and hosts the sole
// entry point the architecture-specific boot preamble jumps into. It is
// kept separate from package kernel (which holds only the allocation-free
// error type, the boot handshake record and the panic entrypoint) the same
// way the teacher keeps kernel/kmain apart from kernel: the root kernel
// package is a dependency-free leaf that every subsystem imports for its
// shared Error type, and something has to sit above all of them to wire
// the boot sequence without creating an import cycle back into that leaf.
package kmain

import (
	"petos/kernel"
	"petos/kernel/hal"
	"petos/kernel/irq"
	"petos/kernel/kfmt/early"
	"petos/kernel/mem"
	"petos/kernel/mem/pmm"
	"petos/kernel/mem/slab"
	"petos/kernel/object"
	"petos/kernel/sched"
	"petos/kernel/syscall"
)

// schedulerBlocker adapts *sched.Scheduler to object.Blocker so every
// blocking kernel object (event, mutex, queue) can suspend through it
// without kernel/object importing kernel/sched directly.
type schedulerBlocker struct {
	s *sched.Scheduler
}

func (b schedulerBlocker) BlockOn(handle uintptr) { b.s.BlockOn(handle) }
func (b schedulerBlocker) Notify(handle uintptr)  { b.s.Notify(handle) }

// Kmain is the sole entry point the architecture-specific boot preamble
// jumps into once the GDT, a bootstrap page directory and a minimal stack
// are in place; that preamble is out of scope per SPEC_FULL.md §1, the way
// rt0 assembly is out of scope for the teacher's own Kmain. Kmain brings up
// the kernel subsystems in dependency order (serial terminal -> boot memory
// allocator -> buddy -> slab -> IDT/PIC -> scheduler -> syscall bridge ->
// object runtime) and then runs the scheduler tick loop, never returning.
// It creates no page marker and registers no modules.
//
//go:noinline
func Kmain(boot kernel.BootInfo) {
	hal.InitTerminal()
	early.Printf("starting petos\n")

	bootAlloc := pmm.NewBootMemAllocator(boot.MemRegions)

	var totalPages uint64
	for _, r := range boot.MemRegions {
		if r.Kind == kernel.MemAvailable {
			totalPages += r.TotalPages
		}
	}

	bitmapBytes := pmm.BitmapBytes(totalPages)
	bitmapAddr, ok := bootAlloc.AllocContiguousBytes(mem.Size(bitmapBytes))
	if !ok {
		kernel.Panic("failed to reserve buddy allocator bitmaps")
	}

	buddy := pmm.NewBuddyAllocator(pmm.Frame(0), totalPages, bitmapAddr)
	early.Printf("buddy allocator ready: %d pages\n", totalPages)

	slabAlloc := slab.NewAllocator(buddy)
	object.BufSource = func(size int) uintptr {
		addr, err := slabAlloc.Alloc(uintptr(size))
		if err != nil {
			kernel.Panic(err)
		}
		return addr
	}
	early.Printf("slab allocator ready\n")

	irq.Init()
	early.Printf("idt and pic ready\n")

	idleTask := sched.NewTask(0, sched.PriorityIdle)
	scheduler := sched.NewScheduler(idleTask)
	syscall.Bind(scheduler)
	object.Runtime = schedulerBlocker{s: scheduler}
	early.Printf("scheduler ready\n")

	early.Printf("petos boot complete\n")

	for {
		scheduler.OnTick()
	}
}
