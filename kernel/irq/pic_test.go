package irq

import "testing"

type portWrite struct {
	port  uint16
	value uint8
}

func withMockedPorts(t *testing.T) *[]portWrite {
	t.Helper()

	prevInb, prevOutb, prevWait := inbFn, outbFn, waitFn
	var w []portWrite
	r := map[uint16]uint8{pic1Data: 0xAA, pic2Data: 0x55}

	inbFn = func(port uint16) uint8 { return r[port] }
	outbFn = func(port uint16, value uint8) {
		w = append(w, portWrite{port, value})
	}
	waitFn = func() {}

	t.Cleanup(func() {
		inbFn, outbFn, waitFn = prevInb, prevOutb, prevWait
	})
	return &w
}

func TestRemapPICPreservesMasksAndProgramsOffsets(t *testing.T) {
	writes := withMockedPorts(t)

	RemapPIC(32, 40)

	w := *writes
	if len(w) == 0 {
		t.Fatalf("expected RemapPIC to issue at least one outb")
	}

	var sawMasterOffset, sawSlaveOffset, sawRestoredMask1, sawRestoredMask2 bool
	for _, entry := range w {
		switch {
		case entry.port == pic1Data && entry.value == 32:
			sawMasterOffset = true
		case entry.port == pic2Data && entry.value == 40:
			sawSlaveOffset = true
		case entry.port == pic1Data && entry.value == 0xAA:
			sawRestoredMask1 = true
		case entry.port == pic2Data && entry.value == 0x55:
			sawRestoredMask2 = true
		}
	}
	if !sawMasterOffset || !sawSlaveOffset {
		t.Fatalf("expected the master/slave vector offsets to be programmed, got %+v", w)
	}
	if !sawRestoredMask1 || !sawRestoredMask2 {
		t.Fatalf("expected the saved interrupt masks to be restored last, got %+v", w)
	}

	last := w[len(w)-1]
	if last.port != pic2Data || last.value != 0x55 {
		t.Fatalf("expected the slave mask restore to be the final write, got %+v", last)
	}
}

func TestCompletePICNotifiesSlaveThenMaster(t *testing.T) {
	writes := withMockedPorts(t)

	CompletePIC(10)

	w := *writes
	if len(w) != 2 {
		t.Fatalf("expected a slave-owned line to EOI both PICs, got %+v", w)
	}
	if w[0].port != pic2Command || w[1].port != pic1Command {
		t.Fatalf("expected the slave to be notified before the master, got %+v", w)
	}
}

func TestCompletePICMasterOnlyLineSkipsSlave(t *testing.T) {
	writes := withMockedPorts(t)

	CompletePIC(3)

	w := *writes
	if len(w) != 1 || w[0].port != pic1Command {
		t.Fatalf("expected a master-owned line to EOI only the master, got %+v", w)
	}
}
