// Package virtq defines the in-memory layouts of virtio virtqueues: the
// split-ring descriptor table, available and used rings of virtio 1.1
// section 2.6 and the packed-ring structures of section 2.7. All multi-byte
// fields are little-endian regardless of guest byte order once
// VIRTIO_F_VERSION_1 is negotiated.
//
// The ring structures themselves are variable-length (their size depends on
// the queue size negotiated at setup), so the package provides their size and
// per-entry offset arithmetic instead of fixed structs for the rings.
package virtq

import (
	"github.com/tinyrange/virtio/endian"
	"github.com/tinyrange/virtio/internal/flagname"
)

// DescFlags is the flags field of a split-ring descriptor.
type DescFlags uint16

const (
	// DescFNext marks the descriptor as continuing via the Next field.
	DescFNext DescFlags = 1
	// DescFWrite marks the buffer as device-writable (as opposed to
	// device-readable).
	DescFWrite DescFlags = 2
	// DescFIndirect marks the buffer as a table of indirect descriptors.
	DescFIndirect DescFlags = 4
)

const descFlagsKnown = DescFNext | DescFWrite | DescFIndirect

// DescFlagsFromBits interprets a raw flags field, keeping unknown bits.
func DescFlagsFromBits(raw uint16) DescFlags { return DescFlags(raw) }

// DescFlagsTruncate drops bits this module has no name for.
func DescFlagsTruncate(raw uint16) DescFlags { return DescFlags(raw) & descFlagsKnown }

// Bits returns the raw flags field, unknown bits included.
func (f DescFlags) Bits() uint16 { return uint16(f) }

// Contains reports whether every bit in other is set in f.
func (f DescFlags) Contains(other DescFlags) bool { return f&other == other }

// Union returns the bits set in f or other.
func (f DescFlags) Union(other DescFlags) DescFlags { return f | other }

// Intersect returns the bits set in both f and other.
func (f DescFlags) Intersect(other DescFlags) DescFlags { return f & other }

// Difference returns the bits set in f and not in other.
func (f DescFlags) Difference(other DescFlags) DescFlags { return f &^ other }

// Insert sets the bits of other in f.
func (f *DescFlags) Insert(other DescFlags) { *f |= other }

// Remove clears the bits of other in f.
func (f *DescFlags) Remove(other DescFlags) { *f &^= other }

var descFlagNames = []flagname.Bit{
	{Mask: uint64(DescFNext), Name: "NEXT"},
	{Mask: uint64(DescFWrite), Name: "WRITE"},
	{Mask: uint64(DescFIndirect), Name: "INDIRECT"},
}

func (f DescFlags) String() string { return flagname.Format(uint64(f), descFlagNames) }

// DescSize is the size of one split-ring descriptor.
const DescSize = 16

// Desc is one entry of the split-ring descriptor table. Addr is a guest
// physical address.
type Desc struct {
	Addr  endian.Le64
	Len   endian.Le32
	Flags endian.Le16
	Next  endian.Le16
}

// DescFromBytes interprets a raw descriptor image.
func DescFromBytes(b [DescSize]byte) (d Desc) {
	d.Addr = endian.Le64([8]byte(b[0:8]))
	d.Len = endian.Le32([4]byte(b[8:12]))
	d.Flags = endian.Le16([2]byte(b[12:14]))
	d.Next = endian.Le16([2]byte(b[14:16]))
	return d
}

// Bytes returns the wire image of the descriptor.
func (d Desc) Bytes() (b [DescSize]byte) {
	copy(b[0:8], d.Addr[:])
	copy(b[8:12], d.Len[:])
	copy(b[12:14], d.Flags[:])
	copy(b[14:16], d.Next[:])
	return b
}

// DescFlags returns the flags field as a typed flag set.
func (d Desc) DescFlags() DescFlags { return DescFlagsFromBits(d.Flags.Native()) }

// AvailFlags is the flags field at the head of the available ring.
type AvailFlags uint16

// AvailFNoInterrupt asks the device not to interrupt when it consumes a
// buffer. Advisory only.
const AvailFNoInterrupt AvailFlags = 1

const availFlagsKnown = AvailFNoInterrupt

// AvailFlagsFromBits interprets a raw flags field, keeping unknown bits.
func AvailFlagsFromBits(raw uint16) AvailFlags { return AvailFlags(raw) }

// AvailFlagsTruncate drops bits this module has no name for.
func AvailFlagsTruncate(raw uint16) AvailFlags { return AvailFlags(raw) & availFlagsKnown }

// Bits returns the raw flags field, unknown bits included.
func (f AvailFlags) Bits() uint16 { return uint16(f) }

// Contains reports whether every bit in other is set in f.
func (f AvailFlags) Contains(other AvailFlags) bool { return f&other == other }

// Union returns the bits set in f or other.
func (f AvailFlags) Union(other AvailFlags) AvailFlags { return f | other }

// Intersect returns the bits set in both f and other.
func (f AvailFlags) Intersect(other AvailFlags) AvailFlags { return f & other }

// Difference returns the bits set in f and not in other.
func (f AvailFlags) Difference(other AvailFlags) AvailFlags { return f &^ other }

// Insert sets the bits of other in f.
func (f *AvailFlags) Insert(other AvailFlags) { *f |= other }

// Remove clears the bits of other in f.
func (f *AvailFlags) Remove(other AvailFlags) { *f &^= other }

func (f AvailFlags) String() string {
	return flagname.Format(uint64(f), []flagname.Bit{{Mask: uint64(AvailFNoInterrupt), Name: "NO_INTERRUPT"}})
}

// UsedFlags is the flags field at the head of the used ring.
type UsedFlags uint16

// UsedFNoNotify asks the driver not to notify the device after adding a
// buffer. Advisory only.
const UsedFNoNotify UsedFlags = 1

const usedFlagsKnown = UsedFNoNotify

// UsedFlagsFromBits interprets a raw flags field, keeping unknown bits.
func UsedFlagsFromBits(raw uint16) UsedFlags { return UsedFlags(raw) }

// UsedFlagsTruncate drops bits this module has no name for.
func UsedFlagsTruncate(raw uint16) UsedFlags { return UsedFlags(raw) & usedFlagsKnown }

// Bits returns the raw flags field, unknown bits included.
func (f UsedFlags) Bits() uint16 { return uint16(f) }

// Contains reports whether every bit in other is set in f.
func (f UsedFlags) Contains(other UsedFlags) bool { return f&other == other }

// Union returns the bits set in f or other.
func (f UsedFlags) Union(other UsedFlags) UsedFlags { return f | other }

// Intersect returns the bits set in both f and other.
func (f UsedFlags) Intersect(other UsedFlags) UsedFlags { return f & other }

// Difference returns the bits set in f and not in other.
func (f UsedFlags) Difference(other UsedFlags) UsedFlags { return f &^ other }

// Insert sets the bits of other in f.
func (f *UsedFlags) Insert(other UsedFlags) { *f |= other }

// Remove clears the bits of other in f.
func (f *UsedFlags) Remove(other UsedFlags) { *f &^= other }

func (f UsedFlags) String() string {
	return flagname.Format(uint64(f), []flagname.Bit{{Mask: uint64(UsedFNoNotify), Name: "NO_NOTIFY"}})
}

// UsedElemSize is the size of one used-ring element.
const UsedElemSize = 8

// UsedElem is one entry of the used ring: the head of a consumed descriptor
// chain and the number of bytes the device wrote into it. ID is 32 bits on
// the wire even though descriptor indices are 16 bits.
type UsedElem struct {
	ID  endian.Le32
	Len endian.Le32
}

// UsedElemFromBytes interprets a raw used element image.
func UsedElemFromBytes(b [UsedElemSize]byte) (e UsedElem) {
	e.ID = endian.Le32([4]byte(b[0:4]))
	e.Len = endian.Le32([4]byte(b[4:8]))
	return e
}

// Bytes returns the wire image of the element.
func (e UsedElem) Bytes() (b [UsedElemSize]byte) {
	copy(b[0:4], e.ID[:])
	copy(b[4:8], e.Len[:])
	return b
}

// Minimum alignments of the three split-ring areas (virtio 1.1 section 2.6).
const (
	DescTableAlign = 16
	AvailRingAlign = 2
	UsedRingAlign  = 4
)

// DescTableSize returns the size in bytes of the descriptor table for a
// queue of queueSize entries.
func DescTableSize(queueSize uint16) int { return DescSize * int(queueSize) }

// AvailRingSize returns the size in bytes of the available ring: flags, idx,
// one ring entry per descriptor, and the trailing used_event word when
// VIRTIO_F_EVENT_IDX was negotiated.
func AvailRingSize(queueSize uint16, eventIdx bool) int {
	n := 4 + 2*int(queueSize)
	if eventIdx {
		n += 2
	}
	return n
}

// UsedRingSize returns the size in bytes of the used ring: flags, idx, one
// used element per descriptor, and the trailing avail_event word when
// VIRTIO_F_EVENT_IDX was negotiated.
func UsedRingSize(queueSize uint16, eventIdx bool) int {
	n := 4 + UsedElemSize*int(queueSize)
	if eventIdx {
		n += 2
	}
	return n
}

// AvailEntryOffset returns the byte offset of ring entry i within the
// available ring.
func AvailEntryOffset(i uint16) int { return 4 + 2*int(i) }

// UsedElemOffset returns the byte offset of used element i within the used
// ring.
func UsedElemOffset(i uint16) int { return 4 + UsedElemSize*int(i) }

// ValidQueueSize reports whether queueSize is legal for a split ring: a
// power of two no larger than 32768.
func ValidQueueSize(queueSize uint16) bool {
	return queueSize != 0 && queueSize <= 32768 && queueSize&(queueSize-1) == 0
}
