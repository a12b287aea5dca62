package module

import (
	"testing"

	"petos/kernel/object"
)

// fakeBlocker is a no-op scheduler stand-in so object.Queue's blocking
// operations (used internally by Register for a Block module's exchange
// queue) don't need a real scheduler wired in for these tests.
type fakeBlocker struct{}

func (fakeBlocker) BlockOn(uintptr) {}
func (fakeBlocker) Notify(uintptr)  {}

func withFakeRuntime(t *testing.T) {
	t.Helper()
	prev := object.Runtime
	object.Runtime = fakeBlocker{}
	t.Cleanup(func() { object.Runtime = prev })
}

func TestRegisterAndDescribe(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("console", KindChar, 8)
	if err != nil {
		t.Fatalf("unexpected error registering a module: %v", err)
	}

	info, err := Describe(m.Queue.Obj().Handle())
	if err != nil {
		t.Fatalf("unexpected error describing a registered module: %v", err)
	}
	if info.Name != "console" || info.Kind != KindChar {
		t.Fatalf("unexpected module info: %+v", info)
	}
}

func TestRegisterRejectsOverlongName(t *testing.T) {
	withFakeRuntime(t)

	if _, err := Register("a-name-longer-than-twelve-bytes", KindFs, 4); err == nil {
		t.Fatalf("expected an error registering a module with an overlong name")
	}
}

func TestRegisterBlockModuleWiresExchange(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("disk0", KindBlock, 4)
	if err != nil {
		t.Fatalf("unexpected error registering a block module: %v", err)
	}
	if m.exchange == nil {
		t.Fatalf("expected a block module to have its exchange state wired")
	}
}

func TestSetUserIrqHandlerFindsModuleByHandle(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("kbd", KindChar, 4)
	if err != nil {
		t.Fatalf("unexpected error registering a module: %v", err)
	}

	if err := SetUserIrqHandler(1, m.Queue.Obj().Handle()); err != nil {
		t.Fatalf("unexpected error wiring an irq line: %v", err)
	}
	if m.irqLine == nil || *m.irqLine != 1 {
		t.Fatalf("expected the module's irqLine to be set to 1")
	}
}

func TestDescribeUnknownHandle(t *testing.T) {
	withFakeRuntime(t)

	if _, err := Describe(0xdeadbeef); err == nil {
		t.Fatalf("expected an error describing an unregistered handle")
	}
}
