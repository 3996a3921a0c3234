package virtio

import (
	"fmt"

	"github.com/tinyrange/virtio/endian"
	"github.com/tinyrange/virtio/internal/flagname"
)

// NetFeature is the feature bitset of the network device (virtio 1.1
// section 5.1.3). Bits 24 and up are device-independent, see Feature.
type NetFeature uint64

const (
	NetFeatureCSum              NetFeature = 1 << 0  // device handles packets with partial checksum
	NetFeatureGuestCSum         NetFeature = 1 << 1  // driver handles packets with partial checksum
	NetFeatureCtrlGuestOffloads NetFeature = 1 << 2  // control channel offload reconfiguration
	NetFeatureMTU               NetFeature = 1 << 3  // device reports maximum MTU
	NetFeatureMac               NetFeature = 1 << 5  // device has given MAC address
	NetFeatureGuestTSO4         NetFeature = 1 << 7  // driver can receive TSOv4
	NetFeatureGuestTSO6         NetFeature = 1 << 8  // driver can receive TSOv6
	NetFeatureGuestECN          NetFeature = 1 << 9  // driver can receive TSO with ECN
	NetFeatureGuestUFO          NetFeature = 1 << 10 // driver can receive UFO
	NetFeatureHostTSO4          NetFeature = 1 << 11 // device can receive TSOv4
	NetFeatureHostTSO6          NetFeature = 1 << 12 // device can receive TSOv6
	NetFeatureHostECN           NetFeature = 1 << 13 // device can receive TSO with ECN
	NetFeatureHostUFO           NetFeature = 1 << 14 // device can receive UFO
	NetFeatureMrgRxBuf          NetFeature = 1 << 15 // driver can merge receive buffers
	NetFeatureStatus            NetFeature = 1 << 16 // configuration status field available
	NetFeatureCtrlVQ            NetFeature = 1 << 17 // control channel available
	NetFeatureCtrlRx            NetFeature = 1 << 18 // control channel RX mode support
	NetFeatureCtrlVLAN          NetFeature = 1 << 19 // control channel VLAN filtering
	NetFeatureGuestAnnounce     NetFeature = 1 << 21 // driver can send gratuitous packets
	NetFeatureMQ                NetFeature = 1 << 22 // device supports multiqueue
	NetFeatureCtrlMacAddr       NetFeature = 1 << 23 // MAC settable through control channel
)

const netFeatureKnown = NetFeatureCSum | NetFeatureGuestCSum |
	NetFeatureCtrlGuestOffloads | NetFeatureMTU | NetFeatureMac |
	NetFeatureGuestTSO4 | NetFeatureGuestTSO6 | NetFeatureGuestECN |
	NetFeatureGuestUFO | NetFeatureHostTSO4 | NetFeatureHostTSO6 |
	NetFeatureHostECN | NetFeatureHostUFO | NetFeatureMrgRxBuf |
	NetFeatureStatus | NetFeatureCtrlVQ | NetFeatureCtrlRx |
	NetFeatureCtrlVLAN | NetFeatureGuestAnnounce | NetFeatureMQ |
	NetFeatureCtrlMacAddr

// NetFeatureFromBits interprets a raw feature register, keeping unknown bits.
func NetFeatureFromBits(raw uint64) NetFeature { return NetFeature(raw) }

// NetFeatureTruncate drops bits this module has no name for.
func NetFeatureTruncate(raw uint64) NetFeature { return NetFeature(raw) & netFeatureKnown }

// Bits returns the raw feature register value, unknown bits included.
func (f NetFeature) Bits() uint64 { return uint64(f) }

// Contains reports whether every bit in other is set in f.
func (f NetFeature) Contains(other NetFeature) bool { return f&other == other }

// Union returns the features set in f or other.
func (f NetFeature) Union(other NetFeature) NetFeature { return f | other }

// Intersect returns the features set in both f and other.
func (f NetFeature) Intersect(other NetFeature) NetFeature { return f & other }

// Difference returns the features set in f and not in other.
func (f NetFeature) Difference(other NetFeature) NetFeature { return f &^ other }

// Insert sets the bits of other in f.
func (f *NetFeature) Insert(other NetFeature) { *f |= other }

// Remove clears the bits of other in f.
func (f *NetFeature) Remove(other NetFeature) { *f &^= other }

var netFeatureNames = []flagname.Bit{
	{Mask: uint64(NetFeatureCSum), Name: "CSUM"},
	{Mask: uint64(NetFeatureGuestCSum), Name: "GUEST_CSUM"},
	{Mask: uint64(NetFeatureCtrlGuestOffloads), Name: "CTRL_GUEST_OFFLOADS"},
	{Mask: uint64(NetFeatureMTU), Name: "MTU"},
	{Mask: uint64(NetFeatureMac), Name: "MAC"},
	{Mask: uint64(NetFeatureGuestTSO4), Name: "GUEST_TSO4"},
	{Mask: uint64(NetFeatureGuestTSO6), Name: "GUEST_TSO6"},
	{Mask: uint64(NetFeatureGuestECN), Name: "GUEST_ECN"},
	{Mask: uint64(NetFeatureGuestUFO), Name: "GUEST_UFO"},
	{Mask: uint64(NetFeatureHostTSO4), Name: "HOST_TSO4"},
	{Mask: uint64(NetFeatureHostTSO6), Name: "HOST_TSO6"},
	{Mask: uint64(NetFeatureHostECN), Name: "HOST_ECN"},
	{Mask: uint64(NetFeatureHostUFO), Name: "HOST_UFO"},
	{Mask: uint64(NetFeatureMrgRxBuf), Name: "MRG_RXBUF"},
	{Mask: uint64(NetFeatureStatus), Name: "STATUS"},
	{Mask: uint64(NetFeatureCtrlVQ), Name: "CTRL_VQ"},
	{Mask: uint64(NetFeatureCtrlRx), Name: "CTRL_RX"},
	{Mask: uint64(NetFeatureCtrlVLAN), Name: "CTRL_VLAN"},
	{Mask: uint64(NetFeatureGuestAnnounce), Name: "GUEST_ANNOUNCE"},
	{Mask: uint64(NetFeatureMQ), Name: "MQ"},
	{Mask: uint64(NetFeatureCtrlMacAddr), Name: "CTRL_MAC_ADDR"},
}

func (f NetFeature) String() string { return flagname.Format(uint64(f), netFeatureNames) }

// NetStatus is the status field of the network device configuration. Only
// meaningful when NetFeatureStatus was negotiated.
type NetStatus uint16

const (
	NetStatusLinkUp   NetStatus = 1
	NetStatusAnnounce NetStatus = 2
)

const netStatusKnown = NetStatusLinkUp | NetStatusAnnounce

// NetStatusFromBits interprets a raw status field, keeping unknown bits.
func NetStatusFromBits(raw uint16) NetStatus { return NetStatus(raw) }

// NetStatusTruncate drops bits this module has no name for.
func NetStatusTruncate(raw uint16) NetStatus { return NetStatus(raw) & netStatusKnown }

// Bits returns the raw status field, unknown bits included.
func (s NetStatus) Bits() uint16 { return uint16(s) }

// Contains reports whether every bit in other is set in s.
func (s NetStatus) Contains(other NetStatus) bool { return s&other == other }

// Union returns the bits set in s or other.
func (s NetStatus) Union(other NetStatus) NetStatus { return s | other }

// Intersect returns the bits set in both s and other.
func (s NetStatus) Intersect(other NetStatus) NetStatus { return s & other }

// Difference returns the bits set in s and not in other.
func (s NetStatus) Difference(other NetStatus) NetStatus { return s &^ other }

// Insert sets the bits of other in s.
func (s *NetStatus) Insert(other NetStatus) { *s |= other }

// Remove clears the bits of other in s.
func (s *NetStatus) Remove(other NetStatus) { *s &^= other }

var netStatusNames = []flagname.Bit{
	{Mask: uint64(NetStatusLinkUp), Name: "LINK_UP"},
	{Mask: uint64(NetStatusAnnounce), Name: "ANNOUNCE"},
}

func (s NetStatus) String() string { return flagname.Format(uint64(s), netStatusNames) }

// NetConfigSize is the documented size of the network device configuration
// (virtio 1.1 section 5.1.4 plus the RSS/hash fields of 1.2).
const NetConfigSize = 24

// NetConfig is the device configuration region of the network device. Fields
// past Status are only valid when the corresponding feature was negotiated.
type NetConfig struct {
	Mac                          [6]uint8
	Status                       endian.Le16
	MaxVirtqueuePairs            endian.Le16
	MTU                          endian.Le16
	Speed                        endian.Le32
	Duplex                       uint8
	RSSMaxKeySize                uint8
	RSSMaxIndirectionTableLength endian.Le16
	SupportedHashTypes           endian.Le32
}

// NetConfigFromBytes interprets a raw configuration image.
func NetConfigFromBytes(b [NetConfigSize]byte) (c NetConfig) {
	copy(c.Mac[:], b[0:6])
	c.Status = endian.Le16([2]byte(b[6:8]))
	c.MaxVirtqueuePairs = endian.Le16([2]byte(b[8:10]))
	c.MTU = endian.Le16([2]byte(b[10:12]))
	c.Speed = endian.Le32([4]byte(b[12:16]))
	c.Duplex = b[16]
	c.RSSMaxKeySize = b[17]
	c.RSSMaxIndirectionTableLength = endian.Le16([2]byte(b[18:20]))
	c.SupportedHashTypes = endian.Le32([4]byte(b[20:24]))
	return c
}

// Bytes returns the wire image of the configuration.
func (c NetConfig) Bytes() (b [NetConfigSize]byte) {
	copy(b[0:6], c.Mac[:])
	copy(b[6:8], c.Status[:])
	copy(b[8:10], c.MaxVirtqueuePairs[:])
	copy(b[10:12], c.MTU[:])
	copy(b[12:16], c.Speed[:])
	b[16] = c.Duplex
	b[17] = c.RSSMaxKeySize
	copy(b[18:20], c.RSSMaxIndirectionTableLength[:])
	copy(b[20:24], c.SupportedHashTypes[:])
	return b
}

// LinkStatus returns the Status field as a typed flag set.
func (c NetConfig) LinkStatus() NetStatus { return NetStatusFromBits(c.Status.Native()) }

// NetHdrFlags is the flags byte of the per-packet network header.
type NetHdrFlags uint8

const (
	NetHdrFNeedsCSum NetHdrFlags = 1 // checksum from CsumStart/CsumOffset still required
	NetHdrFDataValid NetHdrFlags = 2 // checksum already validated by the device
	NetHdrFRSCInfo   NetHdrFlags = 4 // device reports coalesced segment info
)

const netHdrFlagsKnown = NetHdrFNeedsCSum | NetHdrFDataValid | NetHdrFRSCInfo

// NetHdrFlagsFromBits interprets a raw flags byte, keeping unknown bits.
func NetHdrFlagsFromBits(raw uint8) NetHdrFlags { return NetHdrFlags(raw) }

// NetHdrFlagsTruncate drops bits this module has no name for.
func NetHdrFlagsTruncate(raw uint8) NetHdrFlags { return NetHdrFlags(raw) & netHdrFlagsKnown }

// Bits returns the raw flags byte, unknown bits included.
func (f NetHdrFlags) Bits() uint8 { return uint8(f) }

// Contains reports whether every bit in other is set in f.
func (f NetHdrFlags) Contains(other NetHdrFlags) bool { return f&other == other }

// Union returns the bits set in f or other.
func (f NetHdrFlags) Union(other NetHdrFlags) NetHdrFlags { return f | other }

// Intersect returns the bits set in both f and other.
func (f NetHdrFlags) Intersect(other NetHdrFlags) NetHdrFlags { return f & other }

// Difference returns the bits set in f and not in other.
func (f NetHdrFlags) Difference(other NetHdrFlags) NetHdrFlags { return f &^ other }

// Insert sets the bits of other in f.
func (f *NetHdrFlags) Insert(other NetHdrFlags) { *f |= other }

// Remove clears the bits of other in f.
func (f *NetHdrFlags) Remove(other NetHdrFlags) { *f &^= other }

var netHdrFlagNames = []flagname.Bit{
	{Mask: uint64(NetHdrFNeedsCSum), Name: "NEEDS_CSUM"},
	{Mask: uint64(NetHdrFDataValid), Name: "DATA_VALID"},
	{Mask: uint64(NetHdrFRSCInfo), Name: "RSC_INFO"},
}

func (f NetHdrFlags) String() string { return flagname.Format(uint64(f), netHdrFlagNames) }

// GSOType identifies the segmentation offload type of a packet. The ECN bit
// (NetHdrGSOECN) is carried alongside the type and must be masked off before
// conversion; NetHdr.GSO does this for callers.
type GSOType uint8

const (
	GSOTypeNone  GSOType = 0
	GSOTypeTCPv4 GSOType = 1
	GSOTypeUDP   GSOType = 3
	GSOTypeTCPv6 GSOType = 4
	GSOTypeUDPL4 GSOType = 5
)

// NetHdrGSOECN is the ECN bit ORed into the GSO type byte.
const NetHdrGSOECN uint8 = 0x80

// GSOTypeFromRaw validates a GSO type byte with the ECN bit already removed.
func GSOTypeFromRaw(raw uint8) (GSOType, error) {
	switch t := GSOType(raw); t {
	case GSOTypeNone, GSOTypeTCPv4, GSOTypeUDP, GSOTypeTCPv6, GSOTypeUDPL4:
		return t, nil
	}
	return 0, &UnrecognizedValueError{Type: "GSO type", Value: uint64(raw)}
}

// Raw returns the wire discriminant.
func (t GSOType) Raw() uint8 { return uint8(t) }

func (t GSOType) String() string {
	switch t {
	case GSOTypeNone:
		return "none"
	case GSOTypeTCPv4:
		return "tcpv4"
	case GSOTypeUDP:
		return "udp"
	case GSOTypeTCPv6:
		return "tcpv6"
	case GSOTypeUDPL4:
		return "udp-l4"
	}
	return fmt.Sprintf("gso(%d)", uint8(t))
}

// NetHdrSize is the size of the per-packet header with the mergeable-buffers
// NumBuffers field included (always present for modern devices).
const NetHdrSize = 12

// NetHdr prefixes every packet on the network device's queues.
type NetHdr struct {
	Flags      NetHdrFlags
	GSOTypeRaw uint8
	HdrLen     endian.Le16
	GSOSize    endian.Le16
	CsumStart  endian.Le16
	CsumOffset endian.Le16
	NumBuffers endian.Le16
}

// NetHdrFromBytes interprets a raw header image.
func NetHdrFromBytes(b [NetHdrSize]byte) (h NetHdr) {
	h.Flags = NetHdrFlags(b[0])
	h.GSOTypeRaw = b[1]
	h.HdrLen = endian.Le16([2]byte(b[2:4]))
	h.GSOSize = endian.Le16([2]byte(b[4:6]))
	h.CsumStart = endian.Le16([2]byte(b[6:8]))
	h.CsumOffset = endian.Le16([2]byte(b[8:10]))
	h.NumBuffers = endian.Le16([2]byte(b[10:12]))
	return h
}

// Bytes returns the wire image of the header.
func (h NetHdr) Bytes() (b [NetHdrSize]byte) {
	b[0] = uint8(h.Flags)
	b[1] = h.GSOTypeRaw
	copy(b[2:4], h.HdrLen[:])
	copy(b[4:6], h.GSOSize[:])
	copy(b[6:8], h.CsumStart[:])
	copy(b[8:10], h.CsumOffset[:])
	copy(b[10:12], h.NumBuffers[:])
	return b
}

// GSO returns the validated GSO type and whether the ECN bit is set.
func (h NetHdr) GSO() (t GSOType, ecn bool, err error) {
	t, err = GSOTypeFromRaw(h.GSOTypeRaw &^ NetHdrGSOECN)
	return t, h.GSOTypeRaw&NetHdrGSOECN != 0, err
}
