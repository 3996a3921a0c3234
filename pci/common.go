package pci

import (
	"github.com/tinyrange/virtio"
	"github.com/tinyrange/virtio/endian"
)

// Common Configuration Structure register offsets (virtio 1.1 section
// 4.1.4.3). The table is specification-derived; CommonCfg reproduces it as a
// struct and the two are asserted against each other in tests.
const (
	VIRTIO_PCI_COMMON_DFSELECT      = 0x00 // Device Feature Select
	VIRTIO_PCI_COMMON_DF            = 0x04 // Device Features
	VIRTIO_PCI_COMMON_GFSELECT      = 0x08 // Driver Feature Select
	VIRTIO_PCI_COMMON_GF            = 0x0C // Driver Features
	VIRTIO_PCI_COMMON_MSIX          = 0x10 // MSI-X Config Vector
	VIRTIO_PCI_COMMON_NUMQ          = 0x12 // Number of Queues
	VIRTIO_PCI_COMMON_STATUS        = 0x14 // Device Status
	VIRTIO_PCI_COMMON_CFGGENERATION = 0x15 // Config Generation
	VIRTIO_PCI_COMMON_Q_SELECT      = 0x16 // Queue Select
	VIRTIO_PCI_COMMON_Q_SIZE        = 0x18 // Queue Size
	VIRTIO_PCI_COMMON_Q_MSIX        = 0x1A // Queue MSI-X Vector
	VIRTIO_PCI_COMMON_Q_ENABLE      = 0x1C // Queue Enable
	VIRTIO_PCI_COMMON_Q_NOFF        = 0x1E // Queue Notify Off
	VIRTIO_PCI_COMMON_Q_DESCLO      = 0x20 // Queue Descriptor Low
	VIRTIO_PCI_COMMON_Q_DESCHI      = 0x24 // Queue Descriptor High
	VIRTIO_PCI_COMMON_Q_AVAILLO     = 0x28 // Queue Available Low
	VIRTIO_PCI_COMMON_Q_AVAILHI     = 0x2C // Queue Available High
	VIRTIO_PCI_COMMON_Q_USEDLO      = 0x30 // Queue Used Low
	VIRTIO_PCI_COMMON_Q_USEDHI      = 0x34 // Queue Used High
)

// CommonCfgSize is the documented size of the common configuration
// structure.
const CommonCfgSize = 0x38

// CommonCfg is the common configuration structure shared by all virtio PCI
// devices. The feature registers are 32-bit windows selected by the
// *FeatureSelect fields; the Queue* fields from QueueSize on refer to the
// queue named by QueueSelect.
type CommonCfg struct {
	DeviceFeatureSelect endian.Le32
	DeviceFeature       endian.Le32
	DriverFeatureSelect endian.Le32
	DriverFeature       endian.Le32
	ConfigMSIXVector    endian.Le16
	NumQueues           endian.Le16
	DeviceStatus        uint8
	ConfigGeneration    uint8
	QueueSelect         endian.Le16
	QueueSize           endian.Le16
	QueueMSIXVector     endian.Le16
	QueueEnable         endian.Le16
	QueueNotifyOff      endian.Le16
	QueueDesc           endian.Le64
	QueueDriver         endian.Le64
	QueueDevice         endian.Le64
}

// CommonCfgFromBytes interprets a raw common configuration image.
func CommonCfgFromBytes(b [CommonCfgSize]byte) (c CommonCfg) {
	c.DeviceFeatureSelect = endian.Le32([4]byte(b[0x00:0x04]))
	c.DeviceFeature = endian.Le32([4]byte(b[0x04:0x08]))
	c.DriverFeatureSelect = endian.Le32([4]byte(b[0x08:0x0C]))
	c.DriverFeature = endian.Le32([4]byte(b[0x0C:0x10]))
	c.ConfigMSIXVector = endian.Le16([2]byte(b[0x10:0x12]))
	c.NumQueues = endian.Le16([2]byte(b[0x12:0x14]))
	c.DeviceStatus = b[0x14]
	c.ConfigGeneration = b[0x15]
	c.QueueSelect = endian.Le16([2]byte(b[0x16:0x18]))
	c.QueueSize = endian.Le16([2]byte(b[0x18:0x1A]))
	c.QueueMSIXVector = endian.Le16([2]byte(b[0x1A:0x1C]))
	c.QueueEnable = endian.Le16([2]byte(b[0x1C:0x1E]))
	c.QueueNotifyOff = endian.Le16([2]byte(b[0x1E:0x20]))
	c.QueueDesc = endian.Le64([8]byte(b[0x20:0x28]))
	c.QueueDriver = endian.Le64([8]byte(b[0x28:0x30]))
	c.QueueDevice = endian.Le64([8]byte(b[0x30:0x38]))
	return c
}

// Bytes returns the wire image of the structure.
func (c CommonCfg) Bytes() (b [CommonCfgSize]byte) {
	copy(b[0x00:0x04], c.DeviceFeatureSelect[:])
	copy(b[0x04:0x08], c.DeviceFeature[:])
	copy(b[0x08:0x0C], c.DriverFeatureSelect[:])
	copy(b[0x0C:0x10], c.DriverFeature[:])
	copy(b[0x10:0x12], c.ConfigMSIXVector[:])
	copy(b[0x12:0x14], c.NumQueues[:])
	b[0x14] = c.DeviceStatus
	b[0x15] = c.ConfigGeneration
	copy(b[0x16:0x18], c.QueueSelect[:])
	copy(b[0x18:0x1A], c.QueueSize[:])
	copy(b[0x1A:0x1C], c.QueueMSIXVector[:])
	copy(b[0x1C:0x1E], c.QueueEnable[:])
	copy(b[0x1E:0x20], c.QueueNotifyOff[:])
	copy(b[0x20:0x28], c.QueueDesc[:])
	copy(b[0x28:0x30], c.QueueDriver[:])
	copy(b[0x30:0x38], c.QueueDevice[:])
	return b
}

// Status returns the device status register as a typed flag set.
func (c CommonCfg) Status() virtio.DeviceStatus {
	return virtio.DeviceStatusFromBits(c.DeviceStatus)
}

// SetStatus stores a device status value.
func (c *CommonCfg) SetStatus(s virtio.DeviceStatus) { c.DeviceStatus = s.Bits() }
