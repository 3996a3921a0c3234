package pci

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/tinyrange/virtio"
	"github.com/tinyrange/virtio/endian"
)

func TestCapLayout(t *testing.T) {
	var c Cap
	if got := unsafe.Sizeof(c); got != CapSize {
		t.Fatalf("sizeof(Cap) = %d, want %d", got, CapSize)
	}
	if got := unsafe.Offsetof(c.Bar); got != 4 {
		t.Errorf("offsetof(Bar) = %d, want 4", got)
	}
	if got := unsafe.Offsetof(c.Offset); got != 8 {
		t.Errorf("offsetof(Offset) = %d, want 8", got)
	}
	if got := unsafe.Offsetof(c.Length); got != 12 {
		t.Errorf("offsetof(Length) = %d, want 12", got)
	}

	var n NotifyCap
	if got := unsafe.Sizeof(n); got != NotifyCapSize {
		t.Fatalf("sizeof(NotifyCap) = %d, want %d", got, NotifyCapSize)
	}
	var g CfgCap
	if got := unsafe.Sizeof(g); got != CfgCapSize {
		t.Fatalf("sizeof(CfgCap) = %d, want %d", got, CfgCapSize)
	}
}

func TestCapRoundTrip(t *testing.T) {
	var b [CapSize]byte
	for i := range b {
		b[i] = byte(i ^ 0x5A)
	}
	if got := CapFromBytes(b).Bytes(); got != b {
		t.Errorf("round trip changed the image: %x", got)
	}
	// Reserved padding bytes survive verbatim.
	b[6], b[7] = 0xDE, 0xAD
	c := CapFromBytes(b)
	c.Bar = 2
	got := c.Bytes()
	if got[6] != 0xDE || got[7] != 0xAD {
		t.Errorf("padding not preserved: %x", got[6:8])
	}
}

func TestCapDecode(t *testing.T) {
	b := [CapSize]byte{
		VENDOR_CAP_ID, // cap_vndr
		0x70,          // cap_next
		16,            // cap_len
		uint8(CapCommonCfg),
		4,          // bar
		0,          // id
		0, 0,       // padding
		0x00, 0x10, 0x00, 0x00, // offset 0x1000
		0x38, 0x00, 0x00, 0x00, // length 0x38
	}
	c := CapFromBytes(b)
	typ, err := c.ConfigType()
	if err != nil {
		t.Fatalf("ConfigType: %v", err)
	}
	if typ != CapCommonCfg {
		t.Errorf("type = %v, want common-cfg", typ)
	}
	if got := c.Offset.Native(); got != 0x1000 {
		t.Errorf("offset = %#x, want 0x1000", got)
	}
	if got := c.Length.Native(); got != 0x38 {
		t.Errorf("length = %#x, want 0x38", got)
	}
}

func TestCapCfgTypeFromRaw(t *testing.T) {
	known := []CapCfgType{
		CapCommonCfg, CapNotifyCfg, CapISRCfg, CapDeviceCfg, CapPCICfg,
		CapSharedMemoryCfg, CapVendorCfg,
	}
	for _, typ := range known {
		got, err := CapCfgTypeFromRaw(typ.Raw())
		if err != nil || got != typ {
			t.Errorf("CapCfgTypeFromRaw(%d) = %v, %v", typ.Raw(), got, err)
		}
	}
	for _, raw := range []uint8{0, 6, 7, 10, 0xFF} {
		_, err := CapCfgTypeFromRaw(raw)
		var unrec *virtio.UnrecognizedValueError
		if !errors.As(err, &unrec) {
			t.Errorf("CapCfgTypeFromRaw(%d) error = %v", raw, err)
			continue
		}
		if unrec.Value != uint64(raw) {
			t.Errorf("error value = %#x, want %#x", unrec.Value, raw)
		}
	}
}

func TestNotifyCapQueueNotifyAddress(t *testing.T) {
	n := NotifyCap{
		Cap:                 Cap{Offset: endian.NewLe32(0x3000)},
		NotifyOffMultiplier: endian.NewLe32(4),
	}
	if got := n.QueueNotifyAddress(0); got != 0x3000 {
		t.Errorf("queue 0 notify address = %#x, want 0x3000", got)
	}
	if got := n.QueueNotifyAddress(5); got != 0x3014 {
		t.Errorf("queue 5 notify address = %#x, want 0x3014", got)
	}
}

func TestNotifyCapRoundTrip(t *testing.T) {
	var b [NotifyCapSize]byte
	for i := range b {
		b[i] = byte(i + 100)
	}
	if got := NotifyCapFromBytes(b).Bytes(); got != b {
		t.Errorf("round trip changed the image: %x", got)
	}
}

func TestCfgCapRoundTrip(t *testing.T) {
	var b [CfgCapSize]byte
	for i := range b {
		b[i] = byte(200 - i)
	}
	if got := CfgCapFromBytes(b).Bytes(); got != b {
		t.Errorf("round trip changed the image: %x", got)
	}
}

func TestModernDeviceID(t *testing.T) {
	if got := ModernDeviceID(virtio.DeviceIDNet); got != 0x1041 {
		t.Errorf("net device ID = %#x, want 0x1041", got)
	}
	if got := ModernDeviceID(virtio.DeviceIDBlock); got != 0x1042 {
		t.Errorf("block device ID = %#x, want 0x1042", got)
	}
}

func TestISRStatus(t *testing.T) {
	s := ISRStatusFromBits(0x03)
	if !s.Contains(ISRQueue) || !s.Contains(ISRConfig) {
		t.Errorf("ISR %s missing bits", s)
	}
	if got := ISRStatusFromBits(0xFF).Bits(); got != 0xFF {
		t.Errorf("unknown ISR bits lost: %#x", got)
	}
	if got := ISRStatusTruncate(0xFF); got != ISRQueue|ISRConfig {
		t.Errorf("truncate(0xFF) = %#x", got.Bits())
	}
}
