package virtio

import (
	"github.com/tinyrange/virtio/endian"
	"github.com/tinyrange/virtio/internal/flagname"
)

// ConsoleFeature is the feature bitset of the console device (virtio 1.1
// section 5.3.3).
type ConsoleFeature uint64

const (
	ConsoleFeatureSize       ConsoleFeature = 1 << 0 // console size fields valid
	ConsoleFeatureMultiport  ConsoleFeature = 1 << 1 // multiple ports and control queues
	ConsoleFeatureEmergWrite ConsoleFeature = 1 << 2 // emergency write register valid
)

const consoleFeatureKnown = ConsoleFeatureSize | ConsoleFeatureMultiport |
	ConsoleFeatureEmergWrite

// ConsoleFeatureFromBits interprets a raw feature register, keeping unknown bits.
func ConsoleFeatureFromBits(raw uint64) ConsoleFeature { return ConsoleFeature(raw) }

// ConsoleFeatureTruncate drops bits this module has no name for.
func ConsoleFeatureTruncate(raw uint64) ConsoleFeature {
	return ConsoleFeature(raw) & consoleFeatureKnown
}

// Bits returns the raw feature register value, unknown bits included.
func (f ConsoleFeature) Bits() uint64 { return uint64(f) }

// Contains reports whether every bit in other is set in f.
func (f ConsoleFeature) Contains(other ConsoleFeature) bool { return f&other == other }

// Union returns the features set in f or other.
func (f ConsoleFeature) Union(other ConsoleFeature) ConsoleFeature { return f | other }

// Intersect returns the features set in both f and other.
func (f ConsoleFeature) Intersect(other ConsoleFeature) ConsoleFeature { return f & other }

// Difference returns the features set in f and not in other.
func (f ConsoleFeature) Difference(other ConsoleFeature) ConsoleFeature { return f &^ other }

// Insert sets the bits of other in f.
func (f *ConsoleFeature) Insert(other ConsoleFeature) { *f |= other }

// Remove clears the bits of other in f.
func (f *ConsoleFeature) Remove(other ConsoleFeature) { *f &^= other }

var consoleFeatureNames = []flagname.Bit{
	{Mask: uint64(ConsoleFeatureSize), Name: "SIZE"},
	{Mask: uint64(ConsoleFeatureMultiport), Name: "MULTIPORT"},
	{Mask: uint64(ConsoleFeatureEmergWrite), Name: "EMERG_WRITE"},
}

func (f ConsoleFeature) String() string { return flagname.Format(uint64(f), consoleFeatureNames) }

// ConsoleConfigSize is the documented size of the console device
// configuration (virtio 1.1 section 5.3.4).
const ConsoleConfigSize = 12

// ConsoleConfig is the device configuration region of the console device.
// Cols and Rows are only valid with ConsoleFeatureSize, MaxNrPorts with
// ConsoleFeatureMultiport, EmergWr with ConsoleFeatureEmergWrite.
type ConsoleConfig struct {
	Cols       endian.Le16
	Rows       endian.Le16
	MaxNrPorts endian.Le32
	EmergWr    endian.Le32
}

// ConsoleConfigFromBytes interprets a raw configuration image.
func ConsoleConfigFromBytes(b [ConsoleConfigSize]byte) (c ConsoleConfig) {
	c.Cols = endian.Le16([2]byte(b[0:2]))
	c.Rows = endian.Le16([2]byte(b[2:4]))
	c.MaxNrPorts = endian.Le32([4]byte(b[4:8]))
	c.EmergWr = endian.Le32([4]byte(b[8:12]))
	return c
}

// Bytes returns the wire image of the configuration.
func (c ConsoleConfig) Bytes() (b [ConsoleConfigSize]byte) {
	copy(b[0:2], c.Cols[:])
	copy(b[2:4], c.Rows[:])
	copy(b[4:8], c.MaxNrPorts[:])
	copy(b[8:12], c.EmergWr[:])
	return b
}
