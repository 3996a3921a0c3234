package virtio

import (
	"log/slog"

	"github.com/tinyrange/virtio/internal/flagname"
)

// DeviceStatus is the device status register written by the driver during
// initialization and read back to observe device state. It is a single byte
// in both transports (offset 0x14 of the PCI common configuration structure,
// register 0x70 of the MMIO block).
type DeviceStatus uint8

const (
	// StatusAcknowledge indicates the guest has noticed the device.
	StatusAcknowledge DeviceStatus = 1
	// StatusDriver indicates the guest knows how to drive the device.
	StatusDriver DeviceStatus = 2
	// StatusDriverOK indicates the driver is set up and ready.
	StatusDriverOK DeviceStatus = 4
	// StatusFeaturesOK indicates feature negotiation is complete.
	StatusFeaturesOK DeviceStatus = 8
	// StatusDeviceNeedsReset indicates the device has experienced an error it
	// cannot recover from.
	StatusDeviceNeedsReset DeviceStatus = 64
	// StatusFailed indicates the guest has given up on the device.
	StatusFailed DeviceStatus = 128
)

const statusKnown = StatusAcknowledge | StatusDriver | StatusDriverOK |
	StatusFeaturesOK | StatusDeviceNeedsReset | StatusFailed

// DeviceStatusFromBits interprets a raw status byte, keeping unknown bits.
func DeviceStatusFromBits(raw uint8) DeviceStatus { return DeviceStatus(raw) }

// DeviceStatusTruncate drops bits this module has no name for.
func DeviceStatusTruncate(raw uint8) DeviceStatus { return DeviceStatus(raw) & statusKnown }

// Bits returns the raw status byte, unknown bits included.
func (s DeviceStatus) Bits() uint8 { return uint8(s) }

// Contains reports whether every bit in other is set in s.
func (s DeviceStatus) Contains(other DeviceStatus) bool { return s&other == other }

// Union returns the bits set in s or other.
func (s DeviceStatus) Union(other DeviceStatus) DeviceStatus { return s | other }

// Intersect returns the bits set in both s and other.
func (s DeviceStatus) Intersect(other DeviceStatus) DeviceStatus { return s & other }

// Difference returns the bits set in s and not in other.
func (s DeviceStatus) Difference(other DeviceStatus) DeviceStatus { return s &^ other }

// Insert sets the bits of other in s.
func (s *DeviceStatus) Insert(other DeviceStatus) { *s |= other }

// Remove clears the bits of other in s.
func (s *DeviceStatus) Remove(other DeviceStatus) { *s &^= other }

var statusNames = []flagname.Bit{
	{Mask: uint64(StatusAcknowledge), Name: "ACKNOWLEDGE"},
	{Mask: uint64(StatusDriver), Name: "DRIVER"},
	{Mask: uint64(StatusDriverOK), Name: "DRIVER_OK"},
	{Mask: uint64(StatusFeaturesOK), Name: "FEATURES_OK"},
	{Mask: uint64(StatusDeviceNeedsReset), Name: "DEVICE_NEEDS_RESET"},
	{Mask: uint64(StatusFailed), Name: "FAILED"},
}

func (s DeviceStatus) String() string { return flagname.Format(uint64(s), statusNames) }

// LogValue renders the status register for structured logs.
func (s DeviceStatus) LogValue() slog.Value { return slog.StringValue(s.String()) }
