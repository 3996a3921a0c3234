// Package virtio defines the wire-format vocabulary of the VIRTIO 1.1
// specification: register layouts, feature bits, descriptor and status flags,
// and the enumerated constants shared by the MMIO and PCI transports.
//
// Everything in this package and its subpackages is a plain value type. A
// layout struct is either a value copied out of device memory or a value
// built up to be written to it; the volatile access that moves bytes to and
// from a live register belongs to the caller. All conversions are pure and
// total except the *FromRaw enumeration constructors, which return
// UnrecognizedValueError for reserved or future wire values so a driver can
// tolerate them instead of crashing.
package virtio

import "fmt"

// UnrecognizedValueError reports a wire value outside the set of
// discriminants this module knows about. Hardware may legitimately report
// reserved or future values; the caller decides whether that is fatal to its
// protocol state machine.
type UnrecognizedValueError struct {
	Type  string
	Value uint64
}

func (e *UnrecognizedValueError) Error() string {
	return fmt.Sprintf("virtio: unrecognized %s value %#x", e.Type, e.Value)
}

// DeviceID identifies the type of a virtio device. The numeric values are
// assigned by the virtio specification and are part of the wire format.
type DeviceID uint32

const (
	DeviceIDNet            DeviceID = 1  // network card
	DeviceIDBlock          DeviceID = 2  // block device
	DeviceIDConsole        DeviceID = 3  // console
	DeviceIDEntropy        DeviceID = 4  // entropy source
	DeviceIDBalloon        DeviceID = 5  // memory ballooning (traditional)
	DeviceIDSCSI           DeviceID = 8  // SCSI host
	DeviceIDNinePTransport DeviceID = 9  // 9P transport
	DeviceIDGPU            DeviceID = 16 // GPU device
	DeviceIDInput          DeviceID = 18 // input device
	DeviceIDSocket         DeviceID = 19 // socket device
	DeviceIDCrypto         DeviceID = 20 // crypto device
	DeviceIDMem            DeviceID = 24 // memory device
	DeviceIDSound          DeviceID = 25 // sound device
	DeviceIDFS             DeviceID = 26 // file system device
)

// DeviceIDFromRaw validates a device type read from the wire. It is the only
// way a DeviceID is constructed from an untyped integer; a value that exists
// as a DeviceID is known-valid. Zero is reserved and rejected.
func DeviceIDFromRaw(raw uint32) (DeviceID, error) {
	switch id := DeviceID(raw); id {
	case DeviceIDNet, DeviceIDBlock, DeviceIDConsole, DeviceIDEntropy,
		DeviceIDBalloon, DeviceIDSCSI, DeviceIDNinePTransport, DeviceIDGPU,
		DeviceIDInput, DeviceIDSocket, DeviceIDCrypto, DeviceIDMem,
		DeviceIDSound, DeviceIDFS:
		return id, nil
	}
	return 0, &UnrecognizedValueError{Type: "device ID", Value: uint64(raw)}
}

// Raw returns the wire discriminant.
func (id DeviceID) Raw() uint32 { return uint32(id) }

func (id DeviceID) String() string {
	switch id {
	case DeviceIDNet:
		return "net"
	case DeviceIDBlock:
		return "block"
	case DeviceIDConsole:
		return "console"
	case DeviceIDEntropy:
		return "entropy"
	case DeviceIDBalloon:
		return "balloon"
	case DeviceIDSCSI:
		return "scsi"
	case DeviceIDNinePTransport:
		return "9p"
	case DeviceIDGPU:
		return "gpu"
	case DeviceIDInput:
		return "input"
	case DeviceIDSocket:
		return "socket"
	case DeviceIDCrypto:
		return "crypto"
	case DeviceIDMem:
		return "mem"
	case DeviceIDSound:
		return "sound"
	case DeviceIDFS:
		return "fs"
	}
	return fmt.Sprintf("device(%d)", uint32(id))
}
