package virtio

import (
	"log/slog"

	"github.com/tinyrange/virtio/internal/flagname"
)

// Feature is the device-independent feature bitset negotiated between device
// and driver. Bits below 24 are reserved for device-specific features (see
// NetFeature, BlkFeature, ConsoleFeature); the names here cover the reserved
// feature bits of virtio 1.1 section 6.
type Feature uint64

const (
	// FeatureIndirectDesc indicates the driver can use descriptors with the
	// indirect flag set.
	FeatureIndirectDesc Feature = 1 << 28
	// FeatureEventIdx enables the used_event and avail_event ring fields.
	FeatureEventIdx Feature = 1 << 29
	// FeatureVersion1 indicates compliance with the virtio 1.0+ specification
	// as opposed to a legacy device.
	FeatureVersion1 Feature = 1 << 32
	// FeatureAccessPlatform indicates device memory access may be limited or
	// translated, e.g. behind an IOMMU.
	FeatureAccessPlatform Feature = 1 << 33
	// FeatureRingPacked indicates support for the packed virtqueue layout.
	FeatureRingPacked Feature = 1 << 34
	// FeatureInOrder indicates buffers are used in the order they were made
	// available.
	FeatureInOrder Feature = 1 << 35
	// FeatureOrderPlatform indicates platform-specified memory ordering
	// applies between driver and device.
	FeatureOrderPlatform Feature = 1 << 36
	// FeatureSRIOV indicates Single Root I/O Virtualization support.
	FeatureSRIOV Feature = 1 << 37
	// FeatureNotificationData indicates the driver passes extra data in its
	// device notifications.
	FeatureNotificationData Feature = 1 << 38
	// FeatureNotifConfigData indicates the driver uses device-supplied data
	// as the virtqueue identifier in notifications.
	FeatureNotifConfigData Feature = 1 << 39
	// FeatureRingReset indicates queues can be reset individually.
	FeatureRingReset Feature = 1 << 40
)

const featureKnown = FeatureIndirectDesc | FeatureEventIdx | FeatureVersion1 |
	FeatureAccessPlatform | FeatureRingPacked | FeatureInOrder |
	FeatureOrderPlatform | FeatureSRIOV | FeatureNotificationData |
	FeatureNotifConfigData | FeatureRingReset

// FeatureFromBits interprets a raw feature register, keeping unknown bits.
// Use it for values read from a device: FeatureFromBits(x).Bits() == x.
func FeatureFromBits(raw uint64) Feature { return Feature(raw) }

// FeatureTruncate drops bits this module has no name for. Use it when
// constructing a value the caller intends to offer or acknowledge.
func FeatureTruncate(raw uint64) Feature { return Feature(raw) & featureKnown }

// Bits returns the raw feature register value, unknown bits included.
func (f Feature) Bits() uint64 { return uint64(f) }

// Contains reports whether every bit in other is set in f.
func (f Feature) Contains(other Feature) bool { return f&other == other }

// Union returns the features set in f or other.
func (f Feature) Union(other Feature) Feature { return f | other }

// Intersect returns the features set in both f and other.
func (f Feature) Intersect(other Feature) Feature { return f & other }

// Difference returns the features set in f and not in other.
func (f Feature) Difference(other Feature) Feature { return f &^ other }

// Insert sets the bits of other in f.
func (f *Feature) Insert(other Feature) { *f |= other }

// Remove clears the bits of other in f.
func (f *Feature) Remove(other Feature) { *f &^= other }

var featureNames = []flagname.Bit{
	{Mask: uint64(FeatureIndirectDesc), Name: "INDIRECT_DESC"},
	{Mask: uint64(FeatureEventIdx), Name: "EVENT_IDX"},
	{Mask: uint64(FeatureVersion1), Name: "VERSION_1"},
	{Mask: uint64(FeatureAccessPlatform), Name: "ACCESS_PLATFORM"},
	{Mask: uint64(FeatureRingPacked), Name: "RING_PACKED"},
	{Mask: uint64(FeatureInOrder), Name: "IN_ORDER"},
	{Mask: uint64(FeatureOrderPlatform), Name: "ORDER_PLATFORM"},
	{Mask: uint64(FeatureSRIOV), Name: "SR_IOV"},
	{Mask: uint64(FeatureNotificationData), Name: "NOTIFICATION_DATA"},
	{Mask: uint64(FeatureNotifConfigData), Name: "NOTIF_CONFIG_DATA"},
	{Mask: uint64(FeatureRingReset), Name: "RING_RESET"},
}

func (f Feature) String() string { return flagname.Format(uint64(f), featureNames) }

// LogValue renders the feature set for structured logs.
func (f Feature) LogValue() slog.Value { return slog.StringValue(f.String()) }
