// Package pci defines the virtio PCI transport's wire structures: the vendor
// capability list entries a driver walks to locate the common, notify, ISR
// and device configuration windows, and the common configuration structure
// itself (virtio 1.1 section 4.1).
//
// The package only describes layouts. Enumerating the capability list and
// mapping BARs is the job of the caller's PCI access layer; values here are
// decoded from byte images that layer has already read.
package pci

import (
	"fmt"

	"github.com/tinyrange/virtio"
	"github.com/tinyrange/virtio/endian"
	"github.com/tinyrange/virtio/internal/flagname"
)

const (
	// VIRTIO_PCI_VENDOR_ID is the PCI vendor ID of every virtio device.
	VIRTIO_PCI_VENDOR_ID = 0x1AF4
	// VIRTIO_PCI_DEVICE_ID_BASE is added to the virtio device type to form
	// the PCI device ID of a modern (non-transitional) device.
	VIRTIO_PCI_DEVICE_ID_BASE = 0x1040
	// VIRTIO_PCI_DEVICE_ID_LEGACY_MIN/MAX bound the transitional device ID
	// range.
	VIRTIO_PCI_DEVICE_ID_LEGACY_MIN = 0x1000
	VIRTIO_PCI_DEVICE_ID_LEGACY_MAX = 0x103F

	// VENDOR_CAP_ID is the PCI capability ID (vendor-specific, 0x09) under
	// which all virtio capabilities are filed.
	VENDOR_CAP_ID = 0x09

	// VIRTIO_MSI_NO_VECTOR disables MSI-X for a queue or for config changes.
	VIRTIO_MSI_NO_VECTOR = 0xFFFF
)

// ModernDeviceID returns the PCI device ID of a modern device of the given
// virtio type.
func ModernDeviceID(id virtio.DeviceID) uint16 {
	return uint16(VIRTIO_PCI_DEVICE_ID_BASE + id.Raw())
}

// CapCfgType identifies which configuration window a virtio PCI capability
// describes.
type CapCfgType uint8

const (
	CapCommonCfg       CapCfgType = 1 // common configuration
	CapNotifyCfg       CapCfgType = 2 // notification area
	CapISRCfg          CapCfgType = 3 // ISR status byte
	CapDeviceCfg       CapCfgType = 4 // device-specific configuration
	CapPCICfg          CapCfgType = 5 // configuration access window
	CapSharedMemoryCfg CapCfgType = 8 // shared memory region
	CapVendorCfg       CapCfgType = 9 // vendor-specific data
)

// CapCfgTypeFromRaw validates a capability config type read from the
// capability list.
func CapCfgTypeFromRaw(raw uint8) (CapCfgType, error) {
	switch t := CapCfgType(raw); t {
	case CapCommonCfg, CapNotifyCfg, CapISRCfg, CapDeviceCfg, CapPCICfg,
		CapSharedMemoryCfg, CapVendorCfg:
		return t, nil
	}
	return 0, &virtio.UnrecognizedValueError{Type: "capability config type", Value: uint64(raw)}
}

// Raw returns the wire discriminant.
func (t CapCfgType) Raw() uint8 { return uint8(t) }

func (t CapCfgType) String() string {
	switch t {
	case CapCommonCfg:
		return "common-cfg"
	case CapNotifyCfg:
		return "notify-cfg"
	case CapISRCfg:
		return "isr-cfg"
	case CapDeviceCfg:
		return "device-cfg"
	case CapPCICfg:
		return "pci-cfg"
	case CapSharedMemoryCfg:
		return "shared-memory-cfg"
	case CapVendorCfg:
		return "vendor-cfg"
	}
	return fmt.Sprintf("cap-cfg(%d)", uint8(t))
}

// CapSize is the size of the base virtio PCI capability.
const CapSize = 16

// Cap is the virtio vendor capability (struct virtio_pci_cap). CapVndr and
// CapNext belong to the generic PCI capability list; Bar, Offset and Length
// place the described window inside one of the device's BARs. Padding is
// reserved and round-trips verbatim.
type Cap struct {
	CapVndr uint8 // always VENDOR_CAP_ID
	CapNext uint8
	CapLen  uint8
	CfgType uint8
	Bar     uint8
	ID      uint8 // distinguishes multiple caps of one type
	Padding [2]uint8
	Offset  endian.Le32
	Length  endian.Le32
}

// CapFromBytes interprets a raw capability image.
func CapFromBytes(b [CapSize]byte) (c Cap) {
	c.CapVndr = b[0]
	c.CapNext = b[1]
	c.CapLen = b[2]
	c.CfgType = b[3]
	c.Bar = b[4]
	c.ID = b[5]
	copy(c.Padding[:], b[6:8])
	c.Offset = endian.Le32([4]byte(b[8:12]))
	c.Length = endian.Le32([4]byte(b[12:16]))
	return c
}

// Bytes returns the wire image of the capability.
func (c Cap) Bytes() (b [CapSize]byte) {
	b[0] = c.CapVndr
	b[1] = c.CapNext
	b[2] = c.CapLen
	b[3] = c.CfgType
	b[4] = c.Bar
	b[5] = c.ID
	copy(b[6:8], c.Padding[:])
	copy(b[8:12], c.Offset[:])
	copy(b[12:16], c.Length[:])
	return b
}

// ConfigType returns the validated config type of the capability.
func (c Cap) ConfigType() (CapCfgType, error) { return CapCfgTypeFromRaw(c.CfgType) }

// NotifyCapSize is the size of the notification capability.
const NotifyCapSize = 20

// NotifyCap is the notification capability (struct virtio_pci_notify_cap).
// A queue's notification address is the capability window offset plus
// QueueNotifyOff times the multiplier.
type NotifyCap struct {
	Cap                 Cap
	NotifyOffMultiplier endian.Le32
}

// NotifyCapFromBytes interprets a raw capability image.
func NotifyCapFromBytes(b [NotifyCapSize]byte) (c NotifyCap) {
	c.Cap = CapFromBytes([CapSize]byte(b[0:16]))
	c.NotifyOffMultiplier = endian.Le32([4]byte(b[16:20]))
	return c
}

// Bytes returns the wire image of the capability.
func (c NotifyCap) Bytes() (b [NotifyCapSize]byte) {
	base := c.Cap.Bytes()
	copy(b[0:16], base[:])
	copy(b[16:20], c.NotifyOffMultiplier[:])
	return b
}

// QueueNotifyAddress returns the offset of a queue's notification register
// within the capability's BAR.
func (c NotifyCap) QueueNotifyAddress(queueNotifyOff uint16) uint64 {
	return uint64(c.Cap.Offset.Native()) +
		uint64(queueNotifyOff)*uint64(c.NotifyOffMultiplier.Native())
}

// CfgCapSize is the size of the configuration access capability.
const CfgCapSize = 20

// CfgCap is the configuration access capability (struct virtio_pci_cfg_cap):
// a 4-byte data window through which any BAR region can be accessed via
// ordinary PCI configuration reads and writes.
type CfgCap struct {
	Cap  Cap
	Data [4]uint8
}

// CfgCapFromBytes interprets a raw capability image.
func CfgCapFromBytes(b [CfgCapSize]byte) (c CfgCap) {
	c.Cap = CapFromBytes([CapSize]byte(b[0:16]))
	copy(c.Data[:], b[16:20])
	return c
}

// Bytes returns the wire image of the capability.
func (c CfgCap) Bytes() (b [CfgCapSize]byte) {
	base := c.Cap.Bytes()
	copy(b[0:16], base[:])
	copy(b[16:20], c.Data[:])
	return b
}

// ISRStatus is the ISR status byte. Reading it on a live device clears it
// and deasserts the interrupt, so the read must happen exactly once; this
// type only interprets a value already read.
type ISRStatus uint8

const (
	// ISRQueue indicates a used-buffer notification.
	ISRQueue ISRStatus = 1
	// ISRConfig indicates a device configuration change.
	ISRConfig ISRStatus = 2
)

const isrKnown = ISRQueue | ISRConfig

// ISRStatusFromBits interprets a raw ISR byte, keeping unknown bits.
func ISRStatusFromBits(raw uint8) ISRStatus { return ISRStatus(raw) }

// ISRStatusTruncate drops bits this module has no name for.
func ISRStatusTruncate(raw uint8) ISRStatus { return ISRStatus(raw) & isrKnown }

// Bits returns the raw ISR byte, unknown bits included.
func (s ISRStatus) Bits() uint8 { return uint8(s) }

// Contains reports whether every bit in other is set in s.
func (s ISRStatus) Contains(other ISRStatus) bool { return s&other == other }

// Union returns the bits set in s or other.
func (s ISRStatus) Union(other ISRStatus) ISRStatus { return s | other }

// Intersect returns the bits set in both s and other.
func (s ISRStatus) Intersect(other ISRStatus) ISRStatus { return s & other }

// Difference returns the bits set in s and not in other.
func (s ISRStatus) Difference(other ISRStatus) ISRStatus { return s &^ other }

// Insert sets the bits of other in s.
func (s *ISRStatus) Insert(other ISRStatus) { *s |= other }

// Remove clears the bits of other in s.
func (s *ISRStatus) Remove(other ISRStatus) { *s &^= other }

var isrNames = []flagname.Bit{
	{Mask: uint64(ISRQueue), Name: "QUEUE"},
	{Mask: uint64(ISRConfig), Name: "CONFIG"},
}

func (s ISRStatus) String() string { return flagname.Format(uint64(s), isrNames) }
