package virtio

import (
	"fmt"
	"io"
)

// Device configuration regions are exposed to this module as plain
// io.ReaderAt/io.WriterAt views over memory the caller has already made safe
// to access (a copied snapshot, or a volatile accessor wrapped by the
// caller). These helpers only add the short-transfer checks every layout
// conversion needs.

// ReadDeviceConfig fills buf from a device configuration region starting at
// off. A short read is an error: a layout struct decoded from a partial
// register image is never meaningful.
func ReadDeviceConfig(r io.ReaderAt, off int64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := r.ReadAt(buf, off)
	if err != nil && !(err == io.EOF && n == len(buf)) {
		return fmt.Errorf("virtio: read device config: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("virtio: short device config read (want %d, got %d)", len(buf), n)
	}
	return nil
}

// WriteDeviceConfig writes buf to a device configuration region starting at
// off, failing on short writes.
func WriteDeviceConfig(w io.WriterAt, off int64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := w.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("virtio: write device config: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("virtio: short device config write (want %d, got %d)", len(buf), n)
	}
	return nil
}

// stableReadAttempts bounds the generation retry loop. A device that changes
// its configuration this often is broken; give up rather than spin.
const stableReadAttempts = 8

// ReadDeviceConfigStable reads a multi-byte configuration region that the
// device may update concurrently, using the config generation counter: the
// read is retried until the generation observed before and after the copy
// match (virtio 1.1 section 2.5). generation reads the device's current
// config generation through whatever transport the caller uses.
func ReadDeviceConfigStable(r io.ReaderAt, generation func() uint8, off int64, buf []byte) error {
	for attempt := 0; attempt < stableReadAttempts; attempt++ {
		before := generation()
		if err := ReadDeviceConfig(r, off, buf); err != nil {
			return err
		}
		if generation() == before {
			return nil
		}
	}
	return fmt.Errorf("virtio: device config kept changing across %d generation checks", stableReadAttempts)
}
