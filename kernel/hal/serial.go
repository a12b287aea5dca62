package hal

import "petos/kernel/cpu"

// serialPort is a minimal 16550 UART writer used as the kernel's earliest
// output sink: no framebuffer or VGA text-mode console is reconstructed
// here (that driver surface is out of scope per SPEC_FULL.md §1), but
// kfmt/early.Printf still needs somewhere to write bytes to during boot and
// panics, and a serial line is what every headless x86 target (QEMU's
// -serial stdio included) actually has available. Concrete type rather
// than an interface, following the teacher's driver/tty.Vt: Go interfaces
// do not work reliably before the runtime is initialized.
type serialPort struct {
	port uint16
}

const (
	comPortBase   = 0x3F8 // COM1
	uartLineIdle  = 0x20
	uartLineAvail = 1 << 5
)

// Init programs the UART for 38400 8N1, matching the divisor/line-control
// sequence every minimal serial driver uses.
func (s *serialPort) Init(port uint16) {
	s.port = port
	cpu.OutB(port+1, 0x00) // disable interrupts
	cpu.OutB(port+3, 0x80) // enable DLAB
	cpu.OutB(port+0, 0x03) // divisor low byte: 38400 baud
	cpu.OutB(port+1, 0x00) // divisor high byte
	cpu.OutB(port+3, 0x03) // 8 bits, no parity, one stop bit
	cpu.OutB(port+2, 0xC7) // enable FIFO, clear, 14-byte threshold
	cpu.OutB(port+4, 0x0B) // IRQs enabled (OUT2), RTS/DTR set
}

func (s *serialPort) isTransmitEmpty() bool {
	return cpu.InB(s.port+5)&uartLineAvail != 0
}

// WriteByte writes a single byte, busy-waiting until the transmit holding
// register is empty.
func (s *serialPort) WriteByte(b byte) {
	for !s.isTransmitEmpty() {
		cpu.IOWait()
	}
	cpu.OutB(s.port, b)
}

// Write writes every byte in buf in order.
func (s *serialPort) Write(buf []byte) {
	for _, b := range buf {
		s.WriteByte(b)
	}
}
