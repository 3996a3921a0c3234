// Package mmio defines the register map of the virtio MMIO transport
// (virtio 1.1 section 4.2). The block is a fixed table of 32-bit
// little-endian registers; the device-specific configuration region starts
// at VIRTIO_MMIO_CONFIG.
//
// Unlike the PCI common configuration structure, the MMIO register block has
// side-effecting registers (InterruptACK, QueueNotify), so the package
// exposes offsets rather than a copy-out struct: each register access on a
// live device must map to exactly one volatile load or store performed by
// the caller.
package mmio

import (
	"github.com/tinyrange/virtio/internal/flagname"
)

// Register offsets within the MMIO block.
const (
	VIRTIO_MMIO_MAGIC_VALUE         = 0x000
	VIRTIO_MMIO_VERSION             = 0x004
	VIRTIO_MMIO_DEVICE_ID           = 0x008
	VIRTIO_MMIO_VENDOR_ID           = 0x00c
	VIRTIO_MMIO_DEVICE_FEATURES     = 0x010
	VIRTIO_MMIO_DEVICE_FEATURES_SEL = 0x014
	VIRTIO_MMIO_DRIVER_FEATURES     = 0x020
	VIRTIO_MMIO_DRIVER_FEATURES_SEL = 0x024
	VIRTIO_MMIO_QUEUE_SEL           = 0x030
	VIRTIO_MMIO_QUEUE_NUM_MAX       = 0x034
	VIRTIO_MMIO_QUEUE_NUM           = 0x038
	VIRTIO_MMIO_QUEUE_READY         = 0x044
	VIRTIO_MMIO_QUEUE_NOTIFY        = 0x050
	VIRTIO_MMIO_INTERRUPT_STATUS    = 0x060
	VIRTIO_MMIO_INTERRUPT_ACK       = 0x064
	VIRTIO_MMIO_STATUS              = 0x070
	VIRTIO_MMIO_QUEUE_DESC_LOW      = 0x080
	VIRTIO_MMIO_QUEUE_DESC_HIGH     = 0x084
	VIRTIO_MMIO_QUEUE_AVAIL_LOW     = 0x090
	VIRTIO_MMIO_QUEUE_AVAIL_HIGH    = 0x094
	VIRTIO_MMIO_QUEUE_USED_LOW      = 0x0a0
	VIRTIO_MMIO_QUEUE_USED_HIGH     = 0x0a4
	VIRTIO_MMIO_CONFIG_GENERATION   = 0x0fc
	VIRTIO_MMIO_CONFIG              = 0x100

	// Shared memory region registers (virtio-mmio v2).
	VIRTIO_MMIO_SHM_SEL       = 0x0ac
	VIRTIO_MMIO_SHM_LEN_LOW   = 0x0b0
	VIRTIO_MMIO_SHM_LEN_HIGH  = 0x0b4
	VIRTIO_MMIO_SHM_BASE_LOW  = 0x0b8
	VIRTIO_MMIO_SHM_BASE_HIGH = 0x0bc
)

// MagicValue is the content of the magic register: "virt" read as a
// little-endian 32-bit value.
const MagicValue = 0x74726976

// Version numbers reported by the version register.
const (
	Version       = 2 // virtio 1.0+ MMIO
	LegacyVersion = 1 // pre-1.0 layout, not described by this module
)

// InterruptStatus is the interrupt status register. Writing the same bits to
// VIRTIO_MMIO_INTERRUPT_ACK acknowledges them.
type InterruptStatus uint32

const (
	// IntUsedBuffer indicates the device used at least one buffer.
	IntUsedBuffer InterruptStatus = 1
	// IntConfigChange indicates the device configuration changed.
	IntConfigChange InterruptStatus = 2
)

const interruptKnown = IntUsedBuffer | IntConfigChange

// InterruptStatusFromBits interprets a raw register value, keeping unknown
// bits.
func InterruptStatusFromBits(raw uint32) InterruptStatus { return InterruptStatus(raw) }

// InterruptStatusTruncate drops bits this module has no name for.
func InterruptStatusTruncate(raw uint32) InterruptStatus {
	return InterruptStatus(raw) & interruptKnown
}

// Bits returns the raw register value, unknown bits included.
func (s InterruptStatus) Bits() uint32 { return uint32(s) }

// Contains reports whether every bit in other is set in s.
func (s InterruptStatus) Contains(other InterruptStatus) bool { return s&other == other }

// Union returns the bits set in s or other.
func (s InterruptStatus) Union(other InterruptStatus) InterruptStatus { return s | other }

// Intersect returns the bits set in both s and other.
func (s InterruptStatus) Intersect(other InterruptStatus) InterruptStatus { return s & other }

// Difference returns the bits set in s and not in other.
func (s InterruptStatus) Difference(other InterruptStatus) InterruptStatus { return s &^ other }

// Insert sets the bits of other in s.
func (s *InterruptStatus) Insert(other InterruptStatus) { *s |= other }

// Remove clears the bits of other in s.
func (s *InterruptStatus) Remove(other InterruptStatus) { *s &^= other }

var interruptNames = []flagname.Bit{
	{Mask: uint64(IntUsedBuffer), Name: "USED_BUFFER"},
	{Mask: uint64(IntConfigChange), Name: "CONFIG_CHANGE"},
}

func (s InterruptStatus) String() string { return flagname.Format(uint64(s), interruptNames) }
