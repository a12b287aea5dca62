package irq

import "petos/kernel/cpu"

const (
	pic1Command = uint16(0x20)
	pic1Data    = uint16(0x21)
	pic2Command = uint16(0xA0)
	pic2Data    = uint16(0xA1)

	picEOI = uint8(0x20)

	icw1Init = uint8(0x10)
	icw1ICW4 = uint8(0x01)
	icw4_8086 = uint8(0x01)

	// LastMasterLine is the last IRQ line dispatched by the master PIC;
	// lines beyond it belong to the slave, cascaded on line 2.
	LastMasterLine = 7

	// LineCount is the number of PIC lines (master + slave).
	LineCount = 16
)

var (
	inbFn  = cpu.InB
	outbFn = cpu.OutB
	waitFn = cpu.IOWait
)

// RemapPIC reprograms the master/slave 8259 PICs so that IRQ0..15 map to
// interrupt vectors masterOffset..masterOffset+7 and
// slaveOffset..slaveOffset+7, preserving the existing interrupt masks.
// Grounded on original_source/kernel/src/interrupts/pic.rs's `remap`.
func RemapPIC(masterOffset, slaveOffset uint8) {
	savedMask1 := inbFn(pic1Data)
	savedMask2 := inbFn(pic2Data)

	outbFn(pic1Command, icw1Init|icw1ICW4)
	waitFn()
	outbFn(pic2Command, icw1Init|icw1ICW4)
	waitFn()

	outbFn(pic1Data, masterOffset)
	waitFn()
	outbFn(pic2Data, slaveOffset)
	waitFn()

	outbFn(pic1Data, 4) // tell master PIC there is a slave on IRQ2
	waitFn()
	outbFn(pic2Data, 2) // tell slave PIC its cascade identity
	waitFn()

	outbFn(pic1Data, icw4_8086)
	waitFn()
	outbFn(pic2Data, icw4_8086)
	waitFn()

	outbFn(pic1Data, savedMask1)
	outbFn(pic2Data, savedMask2)
}

// CompletePIC issues the end-of-interrupt command for the given PIC line.
// Lines >= 8 belong to the slave PIC and must be EOI'd there first, then the
// master is always notified too since the slave is cascaded through it.
func CompletePIC(line uint8) {
	if line >= 8 {
		outbFn(pic2Command, picEOI)
	}
	outbFn(pic1Command, picEOI)
}
