package virtio

import (
	"errors"
	"testing"
)

func TestDeviceIDFromRaw(t *testing.T) {
	known := []DeviceID{
		DeviceIDNet, DeviceIDBlock, DeviceIDConsole, DeviceIDEntropy,
		DeviceIDBalloon, DeviceIDSCSI, DeviceIDNinePTransport, DeviceIDGPU,
		DeviceIDInput, DeviceIDSocket, DeviceIDCrypto, DeviceIDMem,
		DeviceIDSound, DeviceIDFS,
	}
	for _, id := range known {
		got, err := DeviceIDFromRaw(id.Raw())
		if err != nil {
			t.Errorf("DeviceIDFromRaw(%d) failed: %v", id.Raw(), err)
			continue
		}
		if got != id {
			t.Errorf("DeviceIDFromRaw(%d) = %v, want %v", id.Raw(), got, id)
		}
		if got.Raw() != id.Raw() {
			t.Errorf("Raw round trip of %v gave %d", id, got.Raw())
		}
	}
}

func TestDeviceIDFromRawUnrecognized(t *testing.T) {
	for _, raw := range []uint32{0, 6, 0xFF, 0xFFFFFFFF} {
		_, err := DeviceIDFromRaw(raw)
		if err == nil {
			t.Errorf("DeviceIDFromRaw(%#x) unexpectedly succeeded", raw)
			continue
		}
		var unrec *UnrecognizedValueError
		if !errors.As(err, &unrec) {
			t.Errorf("DeviceIDFromRaw(%#x) error is %T, want *UnrecognizedValueError", raw, err)
			continue
		}
		if unrec.Value != uint64(raw) {
			t.Errorf("error carries value %#x, want %#x", unrec.Value, raw)
		}
	}
}

func TestDeviceIDNetworkScenario(t *testing.T) {
	// Raw 1 is the network device; raw 0xFF is unassigned and must be
	// reported, not panicked on.
	id, err := DeviceIDFromRaw(1)
	if err != nil {
		t.Fatalf("DeviceIDFromRaw(1): %v", err)
	}
	if id != DeviceIDNet {
		t.Fatalf("DeviceIDFromRaw(1) = %v, want net", id)
	}
	if id.String() != "net" {
		t.Errorf("String() = %q, want \"net\"", id.String())
	}
}

func TestUnrecognizedValueErrorMessage(t *testing.T) {
	err := &UnrecognizedValueError{Type: "device ID", Value: 0xFF}
	want := "virtio: unrecognized device ID value 0xff"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
