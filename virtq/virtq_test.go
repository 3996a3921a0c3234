package virtq

import (
	"testing"
	"unsafe"

	"github.com/tinyrange/virtio/endian"
)

func TestDescLayout(t *testing.T) {
	var d Desc
	if got := unsafe.Sizeof(d); got != DescSize {
		t.Fatalf("sizeof(Desc) = %d, want %d", got, DescSize)
	}
	if got := unsafe.Offsetof(d.Len); got != 8 {
		t.Errorf("offsetof(Len) = %d, want 8", got)
	}
	if got := unsafe.Offsetof(d.Flags); got != 12 {
		t.Errorf("offsetof(Flags) = %d, want 12", got)
	}
	if got := unsafe.Offsetof(d.Next); got != 14 {
		t.Errorf("offsetof(Next) = %d, want 14", got)
	}
}

func TestDescRoundTrip(t *testing.T) {
	d := Desc{
		Addr:  endian.NewLe64(0x1000_0000),
		Len:   endian.NewLe32(4096),
		Flags: endian.NewLe16(uint16(DescFNext | DescFWrite)),
		Next:  endian.NewLe16(3),
	}
	got := DescFromBytes(d.Bytes())
	if got != d {
		t.Errorf("round trip changed the descriptor: %+v != %+v", got, d)
	}
	if !got.DescFlags().Contains(DescFWrite) {
		t.Error("WRITE flag lost")
	}
	if got.DescFlags().Contains(DescFIndirect) {
		t.Error("INDIRECT flag invented")
	}
}

func TestDescWireImage(t *testing.T) {
	d := Desc{
		Addr:  endian.NewLe64(0x0102030405060708),
		Len:   endian.NewLe32(0x11223344),
		Flags: endian.NewLe16(1),
		Next:  endian.NewLe16(0x00ff),
	}
	want := [DescSize]byte{
		8, 7, 6, 5, 4, 3, 2, 1, // addr, little-endian
		0x44, 0x33, 0x22, 0x11, // len
		1, 0, // flags
		0xff, 0, // next
	}
	if got := d.Bytes(); got != want {
		t.Errorf("wire image = %x, want %x", got, want)
	}
}

func TestUsedElemLayout(t *testing.T) {
	var e UsedElem
	if got := unsafe.Sizeof(e); got != UsedElemSize {
		t.Fatalf("sizeof(UsedElem) = %d, want %d", got, UsedElemSize)
	}
	e = UsedElem{ID: endian.NewLe32(5), Len: endian.NewLe32(100)}
	if got := UsedElemFromBytes(e.Bytes()); got != e {
		t.Errorf("round trip changed the element")
	}
}

func TestDescFlagsRoundTrip(t *testing.T) {
	for _, raw := range []uint16{0, 1, 7, 0x8000, 0xffff} {
		if got := DescFlagsFromBits(raw).Bits(); got != raw {
			t.Errorf("DescFlagsFromBits(%#x).Bits() = %#x", raw, got)
		}
	}
	if got := DescFlagsTruncate(0xffff); got != DescFNext|DescFWrite|DescFIndirect {
		t.Errorf("truncate(0xffff) = %#x", got.Bits())
	}
}

func TestRingSizes(t *testing.T) {
	cases := []struct {
		qsz       uint16
		eventIdx  bool
		desc      int
		avail     int
		used      int
	}{
		{1, false, 16, 6, 12},
		{256, false, 4096, 516, 2052},
		{256, true, 4096, 518, 2054},
		{32768, true, 524288, 65542, 262150},
	}
	for _, c := range cases {
		if got := DescTableSize(c.qsz); got != c.desc {
			t.Errorf("DescTableSize(%d) = %d, want %d", c.qsz, got, c.desc)
		}
		if got := AvailRingSize(c.qsz, c.eventIdx); got != c.avail {
			t.Errorf("AvailRingSize(%d, %v) = %d, want %d", c.qsz, c.eventIdx, got, c.avail)
		}
		if got := UsedRingSize(c.qsz, c.eventIdx); got != c.used {
			t.Errorf("UsedRingSize(%d, %v) = %d, want %d", c.qsz, c.eventIdx, got, c.used)
		}
	}
}

func TestRingEntryOffsets(t *testing.T) {
	if got := AvailEntryOffset(0); got != 4 {
		t.Errorf("AvailEntryOffset(0) = %d, want 4", got)
	}
	if got := AvailEntryOffset(10); got != 24 {
		t.Errorf("AvailEntryOffset(10) = %d, want 24", got)
	}
	if got := UsedElemOffset(0); got != 4 {
		t.Errorf("UsedElemOffset(0) = %d, want 4", got)
	}
	if got := UsedElemOffset(3); got != 28 {
		t.Errorf("UsedElemOffset(3) = %d, want 28", got)
	}
}

func TestValidQueueSize(t *testing.T) {
	for _, qsz := range []uint16{1, 2, 128, 256, 32768} {
		if !ValidQueueSize(qsz) {
			t.Errorf("ValidQueueSize(%d) = false", qsz)
		}
	}
	for _, qsz := range []uint16{0, 3, 100, 33000} {
		if ValidQueueSize(qsz) {
			t.Errorf("ValidQueueSize(%d) = true", qsz)
		}
	}
}
