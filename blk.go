package virtio

import (
	"fmt"

	"github.com/tinyrange/virtio/endian"
	"github.com/tinyrange/virtio/internal/flagname"
)

// BlkFeature is the feature bitset of the block device (virtio 1.1
// section 5.2.3).
type BlkFeature uint64

const (
	BlkFeatureSizeMax     BlkFeature = 1 << 1  // maximum segment size reported
	BlkFeatureSegMax      BlkFeature = 1 << 2  // maximum segment count reported
	BlkFeatureGeometry    BlkFeature = 1 << 4  // legacy geometry available
	BlkFeatureRO          BlkFeature = 1 << 5  // device is read-only
	BlkFeatureBlkSize     BlkFeature = 1 << 6  // block size reported
	BlkFeatureFlush       BlkFeature = 1 << 9  // flush command supported
	BlkFeatureTopology    BlkFeature = 1 << 10 // topology information available
	BlkFeatureConfigWCE   BlkFeature = 1 << 11 // writeback mode switchable
	BlkFeatureMQ          BlkFeature = 1 << 12 // multiple request queues
	BlkFeatureDiscard     BlkFeature = 1 << 13 // discard command supported
	BlkFeatureWriteZeroes BlkFeature = 1 << 14 // write zeroes command supported
)

const blkFeatureKnown = BlkFeatureSizeMax | BlkFeatureSegMax |
	BlkFeatureGeometry | BlkFeatureRO | BlkFeatureBlkSize | BlkFeatureFlush |
	BlkFeatureTopology | BlkFeatureConfigWCE | BlkFeatureMQ |
	BlkFeatureDiscard | BlkFeatureWriteZeroes

// BlkFeatureFromBits interprets a raw feature register, keeping unknown bits.
func BlkFeatureFromBits(raw uint64) BlkFeature { return BlkFeature(raw) }

// BlkFeatureTruncate drops bits this module has no name for.
func BlkFeatureTruncate(raw uint64) BlkFeature { return BlkFeature(raw) & blkFeatureKnown }

// Bits returns the raw feature register value, unknown bits included.
func (f BlkFeature) Bits() uint64 { return uint64(f) }

// Contains reports whether every bit in other is set in f.
func (f BlkFeature) Contains(other BlkFeature) bool { return f&other == other }

// Union returns the features set in f or other.
func (f BlkFeature) Union(other BlkFeature) BlkFeature { return f | other }

// Intersect returns the features set in both f and other.
func (f BlkFeature) Intersect(other BlkFeature) BlkFeature { return f & other }

// Difference returns the features set in f and not in other.
func (f BlkFeature) Difference(other BlkFeature) BlkFeature { return f &^ other }

// Insert sets the bits of other in f.
func (f *BlkFeature) Insert(other BlkFeature) { *f |= other }

// Remove clears the bits of other in f.
func (f *BlkFeature) Remove(other BlkFeature) { *f &^= other }

var blkFeatureNames = []flagname.Bit{
	{Mask: uint64(BlkFeatureSizeMax), Name: "SIZE_MAX"},
	{Mask: uint64(BlkFeatureSegMax), Name: "SEG_MAX"},
	{Mask: uint64(BlkFeatureGeometry), Name: "GEOMETRY"},
	{Mask: uint64(BlkFeatureRO), Name: "RO"},
	{Mask: uint64(BlkFeatureBlkSize), Name: "BLK_SIZE"},
	{Mask: uint64(BlkFeatureFlush), Name: "FLUSH"},
	{Mask: uint64(BlkFeatureTopology), Name: "TOPOLOGY"},
	{Mask: uint64(BlkFeatureConfigWCE), Name: "CONFIG_WCE"},
	{Mask: uint64(BlkFeatureMQ), Name: "MQ"},
	{Mask: uint64(BlkFeatureDiscard), Name: "DISCARD"},
	{Mask: uint64(BlkFeatureWriteZeroes), Name: "WRITE_ZEROES"},
}

func (f BlkFeature) String() string { return flagname.Format(uint64(f), blkFeatureNames) }

// BlkGeometry is the legacy geometry block of the device configuration.
type BlkGeometry struct {
	Cylinders endian.Le16
	Heads     uint8
	Sectors   uint8
}

// BlkTopology describes the device's I/O topology in logical blocks.
type BlkTopology struct {
	PhysicalBlockExp uint8
	AlignmentOffset  uint8
	MinIOSize        endian.Le16
	OptIOSize        endian.Le32
}

// BlkConfigSize is the documented size of the block device configuration
// through the write-zeroes fields (virtio 1.1 section 5.2.4).
const BlkConfigSize = 60

// BlkConfig is the device configuration region of the block device. Capacity
// is always valid; every other field is gated on its feature bit.
type BlkConfig struct {
	Capacity               endian.Le64
	SizeMax                endian.Le32
	SegMax                 endian.Le32
	Geometry               BlkGeometry
	BlkSize                endian.Le32
	Topology               BlkTopology
	Writeback              uint8
	Unused0                uint8
	NumQueues              endian.Le16
	MaxDiscardSectors      endian.Le32
	MaxDiscardSeg          endian.Le32
	DiscardSectorAlignment endian.Le32
	MaxWriteZeroesSectors  endian.Le32
	MaxWriteZeroesSeg      endian.Le32
	WriteZeroesMayUnmap    uint8
	Unused1                [3]uint8
}

// BlkConfigFromBytes interprets a raw configuration image. Unused bytes are
// kept so a read-modify-write cycle reproduces them verbatim.
func BlkConfigFromBytes(b [BlkConfigSize]byte) (c BlkConfig) {
	c.Capacity = endian.Le64([8]byte(b[0:8]))
	c.SizeMax = endian.Le32([4]byte(b[8:12]))
	c.SegMax = endian.Le32([4]byte(b[12:16]))
	c.Geometry.Cylinders = endian.Le16([2]byte(b[16:18]))
	c.Geometry.Heads = b[18]
	c.Geometry.Sectors = b[19]
	c.BlkSize = endian.Le32([4]byte(b[20:24]))
	c.Topology.PhysicalBlockExp = b[24]
	c.Topology.AlignmentOffset = b[25]
	c.Topology.MinIOSize = endian.Le16([2]byte(b[26:28]))
	c.Topology.OptIOSize = endian.Le32([4]byte(b[28:32]))
	c.Writeback = b[32]
	c.Unused0 = b[33]
	c.NumQueues = endian.Le16([2]byte(b[34:36]))
	c.MaxDiscardSectors = endian.Le32([4]byte(b[36:40]))
	c.MaxDiscardSeg = endian.Le32([4]byte(b[40:44]))
	c.DiscardSectorAlignment = endian.Le32([4]byte(b[44:48]))
	c.MaxWriteZeroesSectors = endian.Le32([4]byte(b[48:52]))
	c.MaxWriteZeroesSeg = endian.Le32([4]byte(b[52:56]))
	c.WriteZeroesMayUnmap = b[56]
	copy(c.Unused1[:], b[57:60])
	return c
}

// Bytes returns the wire image of the configuration.
func (c BlkConfig) Bytes() (b [BlkConfigSize]byte) {
	copy(b[0:8], c.Capacity[:])
	copy(b[8:12], c.SizeMax[:])
	copy(b[12:16], c.SegMax[:])
	copy(b[16:18], c.Geometry.Cylinders[:])
	b[18] = c.Geometry.Heads
	b[19] = c.Geometry.Sectors
	copy(b[20:24], c.BlkSize[:])
	b[24] = c.Topology.PhysicalBlockExp
	b[25] = c.Topology.AlignmentOffset
	copy(b[26:28], c.Topology.MinIOSize[:])
	copy(b[28:32], c.Topology.OptIOSize[:])
	b[32] = c.Writeback
	b[33] = c.Unused0
	copy(b[34:36], c.NumQueues[:])
	copy(b[36:40], c.MaxDiscardSectors[:])
	copy(b[40:44], c.MaxDiscardSeg[:])
	copy(b[44:48], c.DiscardSectorAlignment[:])
	copy(b[48:52], c.MaxWriteZeroesSectors[:])
	copy(b[52:56], c.MaxWriteZeroesSeg[:])
	b[56] = c.WriteZeroesMayUnmap
	copy(b[57:60], c.Unused1[:])
	return b
}

// BlkReqType identifies a block request. The numeric values are assigned by
// the specification; unassigned values come from future devices and are
// reported, not crashed on.
type BlkReqType uint32

const (
	BlkReqIn          BlkReqType = 0  // read
	BlkReqOut         BlkReqType = 1  // write
	BlkReqFlush       BlkReqType = 4  // flush
	BlkReqGetID       BlkReqType = 8  // device ID string
	BlkReqDiscard     BlkReqType = 11 // discard
	BlkReqWriteZeroes BlkReqType = 13 // write zeroes
)

// BlkReqTypeFromRaw validates a request type read from a request header.
func BlkReqTypeFromRaw(raw uint32) (BlkReqType, error) {
	switch t := BlkReqType(raw); t {
	case BlkReqIn, BlkReqOut, BlkReqFlush, BlkReqGetID, BlkReqDiscard, BlkReqWriteZeroes:
		return t, nil
	}
	return 0, &UnrecognizedValueError{Type: "block request type", Value: uint64(raw)}
}

// Raw returns the wire discriminant.
func (t BlkReqType) Raw() uint32 { return uint32(t) }

func (t BlkReqType) String() string {
	switch t {
	case BlkReqIn:
		return "in"
	case BlkReqOut:
		return "out"
	case BlkReqFlush:
		return "flush"
	case BlkReqGetID:
		return "get-id"
	case BlkReqDiscard:
		return "discard"
	case BlkReqWriteZeroes:
		return "write-zeroes"
	}
	return fmt.Sprintf("blk-req(%d)", uint32(t))
}

// BlkStatus is the one-byte status the device writes at the end of a request
// buffer.
type BlkStatus uint8

const (
	BlkStatusOK          BlkStatus = 0
	BlkStatusIOErr       BlkStatus = 1
	BlkStatusUnsupported BlkStatus = 2
)

// BlkStatusFromRaw validates a status byte written by the device.
func BlkStatusFromRaw(raw uint8) (BlkStatus, error) {
	switch s := BlkStatus(raw); s {
	case BlkStatusOK, BlkStatusIOErr, BlkStatusUnsupported:
		return s, nil
	}
	return 0, &UnrecognizedValueError{Type: "block status", Value: uint64(raw)}
}

// Raw returns the wire discriminant.
func (s BlkStatus) Raw() uint8 { return uint8(s) }

func (s BlkStatus) String() string {
	switch s {
	case BlkStatusOK:
		return "ok"
	case BlkStatusIOErr:
		return "io-error"
	case BlkStatusUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("blk-status(%d)", uint8(s))
}

// BlkReqHdrSize is the size of the header that starts every block request.
const BlkReqHdrSize = 16

// BlkReqHdr is the fixed header of a block request. Sector is in 512-byte
// units regardless of the device block size.
type BlkReqHdr struct {
	Type     endian.Le32
	Reserved endian.Le32
	Sector   endian.Le64
}

// BlkReqHdrFromBytes interprets a raw request header.
func BlkReqHdrFromBytes(b [BlkReqHdrSize]byte) (h BlkReqHdr) {
	h.Type = endian.Le32([4]byte(b[0:4]))
	h.Reserved = endian.Le32([4]byte(b[4:8]))
	h.Sector = endian.Le64([8]byte(b[8:16]))
	return h
}

// Bytes returns the wire image of the header.
func (h BlkReqHdr) Bytes() (b [BlkReqHdrSize]byte) {
	copy(b[0:4], h.Type[:])
	copy(b[4:8], h.Reserved[:])
	copy(b[8:16], h.Sector[:])
	return b
}

// ReqType returns the validated request type.
func (h BlkReqHdr) ReqType() (BlkReqType, error) {
	return BlkReqTypeFromRaw(h.Type.Native())
}
