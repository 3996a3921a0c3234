package virtq

import (
	"fmt"

	"github.com/tinyrange/virtio"
	"github.com/tinyrange/virtio/endian"
	"github.com/tinyrange/virtio/internal/flagname"
)

// PackedDescFlags is the flags field of a packed-ring descriptor. On top of
// the split-ring bits it carries the avail/used bits the driver and device
// toggle against their wrap counters.
type PackedDescFlags uint16

const (
	PackedDescFNext     PackedDescFlags = 1
	PackedDescFWrite    PackedDescFlags = 2
	PackedDescFIndirect PackedDescFlags = 4
	PackedDescFAvail    PackedDescFlags = 1 << 7
	PackedDescFUsed     PackedDescFlags = 1 << 15
)

const packedDescFlagsKnown = PackedDescFNext | PackedDescFWrite |
	PackedDescFIndirect | PackedDescFAvail | PackedDescFUsed

// PackedDescFlagsFromBits interprets a raw flags field, keeping unknown bits.
func PackedDescFlagsFromBits(raw uint16) PackedDescFlags { return PackedDescFlags(raw) }

// PackedDescFlagsTruncate drops bits this module has no name for.
func PackedDescFlagsTruncate(raw uint16) PackedDescFlags {
	return PackedDescFlags(raw) & packedDescFlagsKnown
}

// Bits returns the raw flags field, unknown bits included.
func (f PackedDescFlags) Bits() uint16 { return uint16(f) }

// Contains reports whether every bit in other is set in f.
func (f PackedDescFlags) Contains(other PackedDescFlags) bool { return f&other == other }

// Union returns the bits set in f or other.
func (f PackedDescFlags) Union(other PackedDescFlags) PackedDescFlags { return f | other }

// Intersect returns the bits set in both f and other.
func (f PackedDescFlags) Intersect(other PackedDescFlags) PackedDescFlags { return f & other }

// Difference returns the bits set in f and not in other.
func (f PackedDescFlags) Difference(other PackedDescFlags) PackedDescFlags { return f &^ other }

// Insert sets the bits of other in f.
func (f *PackedDescFlags) Insert(other PackedDescFlags) { *f |= other }

// Remove clears the bits of other in f.
func (f *PackedDescFlags) Remove(other PackedDescFlags) { *f &^= other }

var packedDescFlagNames = []flagname.Bit{
	{Mask: uint64(PackedDescFNext), Name: "NEXT"},
	{Mask: uint64(PackedDescFWrite), Name: "WRITE"},
	{Mask: uint64(PackedDescFIndirect), Name: "INDIRECT"},
	{Mask: uint64(PackedDescFAvail), Name: "AVAIL"},
	{Mask: uint64(PackedDescFUsed), Name: "USED"},
}

func (f PackedDescFlags) String() string { return flagname.Format(uint64(f), packedDescFlagNames) }

// PackedDescSize is the size of one packed-ring descriptor.
const PackedDescSize = 16

// PackedDesc is one entry of the packed descriptor ring. Unlike the split
// ring there is no Next field; chains are consecutive ring entries, and ID
// identifies the whole chain in the device's used report.
type PackedDesc struct {
	Addr  endian.Le64
	Len   endian.Le32
	ID    endian.Le16
	Flags endian.Le16
}

// PackedDescFromBytes interprets a raw descriptor image.
func PackedDescFromBytes(b [PackedDescSize]byte) (d PackedDesc) {
	d.Addr = endian.Le64([8]byte(b[0:8]))
	d.Len = endian.Le32([4]byte(b[8:12]))
	d.ID = endian.Le16([2]byte(b[12:14]))
	d.Flags = endian.Le16([2]byte(b[14:16]))
	return d
}

// Bytes returns the wire image of the descriptor.
func (d PackedDesc) Bytes() (b [PackedDescSize]byte) {
	copy(b[0:8], d.Addr[:])
	copy(b[8:12], d.Len[:])
	copy(b[12:14], d.ID[:])
	copy(b[14:16], d.Flags[:])
	return b
}

// DescFlags returns the flags field as a typed flag set.
func (d PackedDesc) DescFlags() PackedDescFlags { return PackedDescFlagsFromBits(d.Flags.Native()) }

// RingEventFlags selects the notification mode in an event suppression
// structure. It is a 2-bit field; value 3 is reserved.
type RingEventFlags uint16

const (
	// RingEventEnable requests notifications for every update.
	RingEventEnable RingEventFlags = 0
	// RingEventDisable suppresses all notifications.
	RingEventDisable RingEventFlags = 1
	// RingEventDesc requests a notification for a specific descriptor
	// position, given by the Off/Wrap fields. Only valid when
	// VIRTIO_F_EVENT_IDX was negotiated.
	RingEventDesc RingEventFlags = 2
)

// RingEventFlagsFromRaw validates the 2-bit notification mode.
func RingEventFlagsFromRaw(raw uint16) (RingEventFlags, error) {
	switch m := RingEventFlags(raw); m {
	case RingEventEnable, RingEventDisable, RingEventDesc:
		return m, nil
	}
	return 0, &virtio.UnrecognizedValueError{Type: "ring event flags", Value: uint64(raw)}
}

// Raw returns the wire discriminant.
func (m RingEventFlags) Raw() uint16 { return uint16(m) }

func (m RingEventFlags) String() string {
	switch m {
	case RingEventEnable:
		return "enable"
	case RingEventDisable:
		return "disable"
	case RingEventDesc:
		return "desc"
	}
	return fmt.Sprintf("ring-event(%d)", uint16(m))
}

// Bit layout of the event suppression words (virtio 1.1 section 2.7.14).
const (
	eventSuppressOffMask  = 0x7fff // Desc bits [0,15): descriptor offset
	eventSuppressWrapBit  = 0x8000 // Desc bit 15: wrap counter
	eventSuppressModeMask = 0x0003 // Flags bits [0,2): RingEventFlags
)

// EventSuppressDesc is the descriptor-position word of an event suppression
// structure: a 15-bit ring offset and the expected wrap counter in bit 15.
type EventSuppressDesc endian.Le16

// Off returns the descriptor ring offset, bits [0,15).
func (d EventSuppressDesc) Off() uint16 {
	return endian.Le16(d).Native() & eventSuppressOffMask
}

// Wrap returns the expected wrap counter, bit 15.
func (d EventSuppressDesc) Wrap() bool {
	return endian.Le16(d).Native()&eventSuppressWrapBit != 0
}

// SetOff stores a ring offset, truncated to 15 bits. The wrap bit is
// untouched.
func (d *EventSuppressDesc) SetOff(off uint16) {
	raw := endian.Le16(*d).Native()
	raw = raw&^uint16(eventSuppressOffMask) | off&eventSuppressOffMask
	*d = EventSuppressDesc(endian.NewLe16(raw))
}

// SetWrap stores the expected wrap counter. The offset bits are untouched.
func (d *EventSuppressDesc) SetWrap(wrap bool) {
	raw := endian.Le16(*d).Native()
	if wrap {
		raw |= eventSuppressWrapBit
	} else {
		raw &^= uint16(eventSuppressWrapBit)
	}
	*d = EventSuppressDesc(endian.NewLe16(raw))
}

// EventSuppressFlags is the flags word of an event suppression structure.
// Bits [2,16) are reserved and pass through setters unchanged.
type EventSuppressFlags endian.Le16

// Mode returns the validated notification mode from bits [0,2).
func (f EventSuppressFlags) Mode() (RingEventFlags, error) {
	return RingEventFlagsFromRaw(endian.Le16(f).Native() & eventSuppressModeMask)
}

// SetMode stores a notification mode in bits [0,2), preserving the reserved
// bits.
func (f *EventSuppressFlags) SetMode(m RingEventFlags) {
	raw := endian.Le16(*f).Native()
	raw = raw&^uint16(eventSuppressModeMask) | uint16(m)&eventSuppressModeMask
	*f = EventSuppressFlags(endian.NewLe16(raw))
}

// EventSuppressSize is the size of an event suppression structure.
const EventSuppressSize = 4

// EventSuppress is the driver or device event suppression area of a packed
// virtqueue.
type EventSuppress struct {
	Desc  EventSuppressDesc
	Flags EventSuppressFlags
}

// EventSuppressFromBytes interprets a raw event suppression image.
func EventSuppressFromBytes(b [EventSuppressSize]byte) (e EventSuppress) {
	e.Desc = EventSuppressDesc([2]byte(b[0:2]))
	e.Flags = EventSuppressFlags([2]byte(b[2:4]))
	return e
}

// Bytes returns the wire image of the structure.
func (e EventSuppress) Bytes() (b [EventSuppressSize]byte) {
	copy(b[0:2], e.Desc[:])
	copy(b[2:4], e.Flags[:])
	return b
}

// Bit layout of the notification data value passed with driver
// notifications when VIRTIO_F_NOTIFICATION_DATA was negotiated (virtio 1.1
// section 2.9).
const (
	notificationVQNMask     = 0x0000ffff // bits [0,16): virtqueue number
	notificationNextOffMask = 0x7fff0000 // bits [16,31): next descriptor offset
	notificationNextOffShift = 16
	notificationWrapBit     = 0x80000000 // bit 31: next wrap counter
)

// NotificationData is the 32-bit value a driver supplies with a queue
// notification. For split rings NextOff is the next available index and
// NextWrap is zero.
type NotificationData endian.Le32

// VQN returns the virtqueue number, bits [0,16).
func (n NotificationData) VQN() uint16 {
	return uint16(endian.Le32(n).Native() & notificationVQNMask)
}

// NextOff returns the next descriptor offset, bits [16,31).
func (n NotificationData) NextOff() uint16 {
	return uint16((endian.Le32(n).Native() & notificationNextOffMask) >> notificationNextOffShift)
}

// NextWrap returns the next wrap counter, bit 31.
func (n NotificationData) NextWrap() bool {
	return endian.Le32(n).Native()&notificationWrapBit != 0
}

// SetVQN stores the virtqueue number. Other fields are untouched.
func (n *NotificationData) SetVQN(vqn uint16) {
	raw := endian.Le32(*n).Native()
	raw = raw&^uint32(notificationVQNMask) | uint32(vqn)
	*n = NotificationData(endian.NewLe32(raw))
}

// SetNextOff stores the next descriptor offset, truncated to 15 bits. Other
// fields are untouched.
func (n *NotificationData) SetNextOff(off uint16) {
	raw := endian.Le32(*n).Native()
	raw = raw&^uint32(notificationNextOffMask) |
		uint32(off&0x7fff)<<notificationNextOffShift
	*n = NotificationData(endian.NewLe32(raw))
}

// SetNextWrap stores the next wrap counter. Other fields are untouched.
func (n *NotificationData) SetNextWrap(wrap bool) {
	raw := endian.Le32(*n).Native()
	if wrap {
		raw |= notificationWrapBit
	} else {
		raw &^= uint32(notificationWrapBit)
	}
	*n = NotificationData(endian.NewLe32(raw))
}
