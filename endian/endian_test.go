package endian

import (
	"encoding/binary"
	"testing"
)

func TestRoundTrip16(t *testing.T) {
	for _, v := range []uint16{0, 1, 0x1234, 0x8000, 0xffff} {
		if got := PutU16[Little](v).Native(); got != v {
			t.Errorf("little: round trip of %#x gave %#x", v, got)
		}
		if got := PutU16[Big](v).Native(); got != v {
			t.Errorf("big: round trip of %#x gave %#x", v, got)
		}
		if got := PutU16[Native](v).Native(); got != v {
			t.Errorf("native: round trip of %#x gave %#x", v, got)
		}
	}
}

func TestRoundTrip32(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xdeadbeef, 0x80000000, 0xffffffff} {
		if got := PutU32[Little](v).Native(); got != v {
			t.Errorf("little: round trip of %#x gave %#x", v, got)
		}
		if got := PutU32[Big](v).Native(); got != v {
			t.Errorf("big: round trip of %#x gave %#x", v, got)
		}
		if got := PutU32[Native](v).Native(); got != v {
			t.Errorf("native: round trip of %#x gave %#x", v, got)
		}
	}
}

func TestRoundTrip64(t *testing.T) {
	for _, v := range []uint64{0, 1, 0x0123456789abcdef, 1 << 63, ^uint64(0)} {
		if got := PutU64[Little](v).Native(); got != v {
			t.Errorf("little: round trip of %#x gave %#x", v, got)
		}
		if got := PutU64[Big](v).Native(); got != v {
			t.Errorf("big: round trip of %#x gave %#x", v, got)
		}
		if got := PutU64[Native](v).Native(); got != v {
			t.Errorf("native: round trip of %#x gave %#x", v, got)
		}
	}
}

func TestWireLayout(t *testing.T) {
	if got, want := NewLe16(0x1234).Bytes(), [2]byte{0x34, 0x12}; got != want {
		t.Errorf("le16 wire bytes = %v, want %v", got, want)
	}
	if got, want := NewBe16(0x1234).Bytes(), [2]byte{0x12, 0x34}; got != want {
		t.Errorf("be16 wire bytes = %v, want %v", got, want)
	}
	if got, want := NewLe32(0xdeadbeef).Bytes(), [4]byte{0xef, 0xbe, 0xad, 0xde}; got != want {
		t.Errorf("le32 wire bytes = %v, want %v", got, want)
	}
	if got, want := NewBe32(0xdeadbeef).Bytes(), [4]byte{0xde, 0xad, 0xbe, 0xef}; got != want {
		t.Errorf("be32 wire bytes = %v, want %v", got, want)
	}
	if got, want := NewLe64(0x0102030405060708).Bytes(), [8]byte{8, 7, 6, 5, 4, 3, 2, 1}; got != want {
		t.Errorf("le64 wire bytes = %v, want %v", got, want)
	}
	if got, want := NewBe64(0x0102030405060708).Bytes(), [8]byte{1, 2, 3, 4, 5, 6, 7, 8}; got != want {
		t.Errorf("be64 wire bytes = %v, want %v", got, want)
	}
}

func TestFromBytes(t *testing.T) {
	if got := U16FromBytes[Little]([2]byte{0x34, 0x12}).Native(); got != 0x1234 {
		t.Errorf("le16 from bytes = %#x, want 0x1234", got)
	}
	if got := U32FromBytes[Big]([4]byte{0xde, 0xad, 0xbe, 0xef}).Native(); got != 0xdeadbeef {
		t.Errorf("be32 from bytes = %#x, want 0xdeadbeef", got)
	}
	if got := U64FromBytes[Little]([8]byte{8, 7, 6, 5, 4, 3, 2, 1}).Native(); got != 0x0102030405060708 {
		t.Errorf("le64 from bytes = %#x", got)
	}
}

func TestNativeMatchesHost(t *testing.T) {
	// A native-order wrapper must lay its bytes out exactly as the host does.
	var host [4]byte
	binary.NativeEndian.PutUint32(host[:], 0xcafef00d)
	if got := PutU32[Native](0xcafef00d).Bytes(); got != host {
		t.Errorf("native wire bytes = %v, want host layout %v", got, host)
	}
}

func TestEquality(t *testing.T) {
	// Same declared order: raw-byte equality is semantic equality.
	if NewLe32(7) != NewLe32(7) {
		t.Error("equal le32 values compare unequal")
	}
	// Different declared orders are different types; comparison is explicit
	// through Native.
	if NewLe32(7).Native() != NewBe32(7).Native() {
		t.Error("le32 and be32 of the same value disagree after conversion")
	}
}
