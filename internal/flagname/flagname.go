// Package flagname renders bit-set values as pipe-joined names for logs and
// test failures. Bits without a name are kept as a hex residue so that a
// value read from hardware never loses information when printed.
package flagname

import (
	"fmt"
	"strings"
)

// Bit pairs a single-bit mask with its specification name.
type Bit struct {
	Mask uint64
	Name string
}

// Format renders the named bits set in value, joined with '|', followed by
// any unnamed residue in hex. A zero value renders as "0".
func Format(value uint64, bits []Bit) string {
	if value == 0 {
		return "0"
	}
	var sb strings.Builder
	rest := value
	for _, b := range bits {
		if b.Mask != 0 && rest&b.Mask == b.Mask {
			if sb.Len() > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(b.Name)
			rest &^= b.Mask
		}
	}
	if rest != 0 {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%#x", rest)
	}
	return sb.String()
}
