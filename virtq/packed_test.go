package virtq

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/tinyrange/virtio"
	"github.com/tinyrange/virtio/endian"
)

func TestPackedDescLayout(t *testing.T) {
	var d PackedDesc
	if got := unsafe.Sizeof(d); got != PackedDescSize {
		t.Fatalf("sizeof(PackedDesc) = %d, want %d", got, PackedDescSize)
	}
	if got := unsafe.Offsetof(d.ID); got != 12 {
		t.Errorf("offsetof(ID) = %d, want 12", got)
	}
	if got := unsafe.Offsetof(d.Flags); got != 14 {
		t.Errorf("offsetof(Flags) = %d, want 14", got)
	}
}

func TestPackedDescRoundTrip(t *testing.T) {
	d := PackedDesc{
		Addr:  endian.NewLe64(0x2000),
		Len:   endian.NewLe32(512),
		ID:    endian.NewLe16(7),
		Flags: endian.NewLe16(uint16(PackedDescFAvail | PackedDescFWrite)),
	}
	got := PackedDescFromBytes(d.Bytes())
	if got != d {
		t.Errorf("round trip changed the descriptor")
	}
	f := got.DescFlags()
	if !f.Contains(PackedDescFAvail) || !f.Contains(PackedDescFWrite) {
		t.Errorf("flags = %s", f)
	}
	if f.Contains(PackedDescFUsed) {
		t.Error("USED flag invented")
	}
}

func TestPackedDescFlagBits(t *testing.T) {
	if PackedDescFAvail.Bits() != 1<<7 {
		t.Errorf("AVAIL = %#x, want 1<<7", PackedDescFAvail.Bits())
	}
	if PackedDescFUsed.Bits() != 1<<15 {
		t.Errorf("USED = %#x, want 1<<15", PackedDescFUsed.Bits())
	}
}

func TestEventSuppressLayout(t *testing.T) {
	var e EventSuppress
	if got := unsafe.Sizeof(e); got != EventSuppressSize {
		t.Fatalf("sizeof(EventSuppress) = %d, want %d", got, EventSuppressSize)
	}
	if got := unsafe.Offsetof(e.Flags); got != 2 {
		t.Errorf("offsetof(Flags) = %d, want 2", got)
	}
}

func TestEventSuppressDescFields(t *testing.T) {
	var d EventSuppressDesc
	for _, off := range []uint16{0, 1, 0x7fff} {
		d.SetOff(off)
		if got := d.Off(); got != off {
			t.Errorf("Off after SetOff(%#x) = %#x", off, got)
		}
		if d.Wrap() {
			t.Errorf("SetOff(%#x) disturbed the wrap bit", off)
		}
	}
	d.SetWrap(true)
	if !d.Wrap() {
		t.Fatal("SetWrap(true) did not take")
	}
	if got := d.Off(); got != 0x7fff {
		t.Errorf("SetWrap disturbed the offset: %#x", got)
	}
	// Setter input wider than the field truncates to the low 15 bits.
	d.SetOff(0xFFFF)
	if got := d.Off(); got != 0x7fff {
		t.Errorf("SetOff(0xFFFF) = %#x, want 0x7fff", got)
	}
	if !d.Wrap() {
		t.Error("truncating SetOff disturbed the wrap bit")
	}
}

func TestEventSuppressFlagsMode(t *testing.T) {
	var f EventSuppressFlags
	for _, m := range []RingEventFlags{RingEventEnable, RingEventDisable, RingEventDesc} {
		f.SetMode(m)
		got, err := f.Mode()
		if err != nil {
			t.Fatalf("Mode after SetMode(%v): %v", m, err)
		}
		if got != m {
			t.Errorf("Mode = %v, want %v", got, m)
		}
	}
}

func TestEventSuppressFlagsReservedBitsPreserved(t *testing.T) {
	// Bits [2,16) are reserved; a mode change must not clear them.
	raw := endian.NewLe16(0xABC0 | uint16(RingEventDisable))
	f := EventSuppressFlags(raw)
	f.SetMode(RingEventDesc)
	if got := endian.Le16(f).Native(); got != 0xABC0|uint16(RingEventDesc) {
		t.Errorf("reserved bits not preserved: %#x", got)
	}
}

func TestRingEventFlagsFromRaw(t *testing.T) {
	for raw := uint16(0); raw <= 2; raw++ {
		m, err := RingEventFlagsFromRaw(raw)
		if err != nil || m.Raw() != raw {
			t.Errorf("RingEventFlagsFromRaw(%d) = %v, %v", raw, m, err)
		}
	}
	_, err := RingEventFlagsFromRaw(3)
	var unrec *virtio.UnrecognizedValueError
	if !errors.As(err, &unrec) {
		t.Fatalf("RingEventFlagsFromRaw(3) error = %v", err)
	}
	if unrec.Value != 3 {
		t.Errorf("error value = %d, want 3", unrec.Value)
	}
}

func TestEventSuppressRoundTrip(t *testing.T) {
	b := [EventSuppressSize]byte{0x12, 0x81, 0x02, 0xFF}
	e := EventSuppressFromBytes(b)
	if got := e.Bytes(); got != b {
		t.Errorf("round trip changed the image: %x", got)
	}
	if got := e.Desc.Off(); got != 0x0112 {
		t.Errorf("desc off = %#x, want 0x0112", got)
	}
	if !e.Desc.Wrap() {
		t.Error("desc wrap bit not read")
	}
}

func TestNotificationData(t *testing.T) {
	var n NotificationData
	n.SetVQN(0x1234)
	n.SetNextOff(0x5678)
	n.SetNextWrap(true)
	if got := n.VQN(); got != 0x1234 {
		t.Errorf("VQN = %#x", got)
	}
	if got := n.NextOff(); got != 0x5678 {
		t.Errorf("NextOff = %#x", got)
	}
	if !n.NextWrap() {
		t.Error("NextWrap lost")
	}
	// Field updates are independent.
	n.SetVQN(1)
	if got := n.NextOff(); got != 0x5678 {
		t.Errorf("SetVQN disturbed NextOff: %#x", got)
	}
	if !n.NextWrap() {
		t.Error("SetVQN disturbed NextWrap")
	}
	// NextOff is a 15-bit field; a wider input truncates.
	n.SetNextWrap(false)
	n.SetNextOff(0xFFFF)
	if got := n.NextOff(); got != 0x7fff {
		t.Errorf("SetNextOff(0xFFFF) = %#x, want 0x7fff", got)
	}
	if n.NextWrap() {
		t.Error("truncating SetNextOff disturbed NextWrap")
	}
}
