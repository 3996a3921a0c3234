// Package endian provides fixed-width unsigned integers stored in a declared
// byte order. The in-memory representation of a wrapper is always exactly the
// wire representation for its order, so structs composed of these types have
// no compiler-inserted padding and can be laid over raw register images.
//
// The order is part of the type, dispatched statically through a type
// parameter. Values are plain byte arrays: copying, comparing and embedding
// them in larger layout structs all behave like the raw wire bytes.
package endian

import "encoding/binary"

// ByteOrder is the constraint satisfied by the order tags Little, Big and
// Native. It mirrors binary.ByteOrder so the tags can delegate directly to
// encoding/binary.
type ByteOrder interface {
	Uint16([]byte) uint16
	PutUint16([]byte, uint16)
	Uint32([]byte) uint32
	PutUint32([]byte, uint32)
	Uint64([]byte) uint64
	PutUint64([]byte, uint64)
}

// Little stores values least-significant byte first. Virtio fields are
// little-endian unless marked otherwise.
type Little struct{}

func (Little) Uint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func (Little) PutUint16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func (Little) Uint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func (Little) PutUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func (Little) Uint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
func (Little) PutUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

// Big stores values most-significant byte first.
type Big struct{}

func (Big) Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func (Big) PutUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func (Big) Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func (Big) PutUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func (Big) Uint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
func (Big) PutUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// Native stores values in the byte order of the host the program runs on.
type Native struct{}

func (Native) Uint16(b []byte) uint16 { return binary.NativeEndian.Uint16(b) }
func (Native) PutUint16(b []byte, v uint16) { binary.NativeEndian.PutUint16(b, v) }
func (Native) Uint32(b []byte) uint32 { return binary.NativeEndian.Uint32(b) }
func (Native) PutUint32(b []byte, v uint32) { binary.NativeEndian.PutUint32(b, v) }
func (Native) Uint64(b []byte) uint64 { return binary.NativeEndian.Uint64(b) }
func (Native) PutUint64(b []byte, v uint64) { binary.NativeEndian.PutUint64(b, v) }

// U16 is a 16-bit unsigned integer stored in byte order O.
type U16[O ByteOrder] [2]byte

// U32 is a 32-bit unsigned integer stored in byte order O.
type U32[O ByteOrder] [4]byte

// U64 is a 64-bit unsigned integer stored in byte order O.
type U64[O ByteOrder] [8]byte

// PutU16 stores a native-order value in byte order O.
func PutU16[O ByteOrder](v uint16) U16[O] {
	var o O
	var b U16[O]
	o.PutUint16(b[:], v)
	return b
}

// PutU32 stores a native-order value in byte order O.
func PutU32[O ByteOrder](v uint32) U32[O] {
	var o O
	var b U32[O]
	o.PutUint32(b[:], v)
	return b
}

// PutU64 stores a native-order value in byte order O.
func PutU64[O ByteOrder](v uint64) U64[O] {
	var o O
	var b U64[O]
	o.PutUint64(b[:], v)
	return b
}

// Native returns the value in host order.
func (v U16[O]) Native() uint16 {
	var o O
	return o.Uint16(v[:])
}

// Native returns the value in host order.
func (v U32[O]) Native() uint32 {
	var o O
	return o.Uint32(v[:])
}

// Native returns the value in host order.
func (v U64[O]) Native() uint64 {
	var o O
	return o.Uint64(v[:])
}

// Bytes returns the wire representation.
func (v U16[O]) Bytes() [2]byte { return v }

// Bytes returns the wire representation.
func (v U32[O]) Bytes() [4]byte { return v }

// Bytes returns the wire representation.
func (v U64[O]) Bytes() [8]byte { return v }

// U16FromBytes interprets b as a value stored in byte order O.
func U16FromBytes[O ByteOrder](b [2]byte) U16[O] { return U16[O](b) }

// U32FromBytes interprets b as a value stored in byte order O.
func U32FromBytes[O ByteOrder](b [4]byte) U32[O] { return U32[O](b) }

// U64FromBytes interprets b as a value stored in byte order O.
func U64FromBytes[O ByteOrder](b [8]byte) U64[O] { return U64[O](b) }

// Little-endian instantiations, the common case across the virtio catalog.
type (
	Le16 = U16[Little]
	Le32 = U32[Little]
	Le64 = U64[Little]
)

// Big-endian instantiations, used by the documented minority of fields.
type (
	Be16 = U16[Big]
	Be32 = U32[Big]
	Be64 = U64[Big]
)

// Native-order instantiations, for fields defined as guest-native.
type (
	Nat16 = U16[Native]
	Nat32 = U32[Native]
	Nat64 = U64[Native]
)

// NewLe16 stores v little-endian.
func NewLe16(v uint16) Le16 { return PutU16[Little](v) }

// NewLe32 stores v little-endian.
func NewLe32(v uint32) Le32 { return PutU32[Little](v) }

// NewLe64 stores v little-endian.
func NewLe64(v uint64) Le64 { return PutU64[Little](v) }

// NewBe16 stores v big-endian.
func NewBe16(v uint16) Be16 { return PutU16[Big](v) }

// NewBe32 stores v big-endian.
func NewBe32(v uint32) Be32 { return PutU32[Big](v) }

// NewBe64 stores v big-endian.
func NewBe64(v uint64) Be64 { return PutU64[Big](v) }
