package format

import "github.com/AlexanderV/sstree/internal/buf"

// U16 reads a little-endian uint16 at off.
func U16(data []byte, off int) uint16 { return buf.U16LE(data[off:]) }

// U32 reads a little-endian uint32 at off.
func U32(data []byte, off int) uint32 { return buf.U32LE(data[off:]) }

// U64 reads a little-endian uint64 at off.
func U64(data []byte, off int) uint64 { return buf.U64LE(data[off:]) }

// I32 reads a little-endian int32 at off.
func I32(data []byte, off int) int32 { return buf.I32LE(data[off:]) }

// I64 reads a little-endian int64 at off.
func I64(data []byte, off int) int64 { return buf.I64LE(data[off:]) }

// PutU16 writes a little-endian uint16 at off.
func PutU16(data []byte, off int, v uint16) { buf.PutU16LE(data[off:], v) }

// PutU32 writes a little-endian uint32 at off.
func PutU32(data []byte, off int, v uint32) { buf.PutU32LE(data[off:], v) }

// PutU64 writes a little-endian uint64 at off.
func PutU64(data []byte, off int, v uint64) { buf.PutU64LE(data[off:], v) }

// PutI32 writes a little-endian int32 at off.
func PutI32(data []byte, off int, v int32) { buf.PutI32LE(data[off:], v) }

// PutI64 writes a little-endian int64 at off.
func PutI64(data []byte, off int, v int64) { buf.PutI64LE(data[off:], v) }

// ReadU32Null reads a Compact-layout u32 offset field and translates the
// U32Null sentinel to the universal NullOffset (-1).
func ReadU32Null(data []byte, off int) int64 {
	v := U32(data, off)
	if v == U32Null {
		return NullOffset
	}
	return int64(v)
}

// WriteU32Null writes a universal offset (or NullOffset) into a Compact-layout
// u32 field, translating -1 back to U32Null.
func WriteU32Null(data []byte, off int, v int64) {
	if v == NullOffset {
		PutU32(data, off, U32Null)
		return
	}
	PutU32(data, off, uint32(v))
}

// ReadI64Null reads a Large-layout i64 offset field. Large already uses -1
// as its native null representation, so this is a plain signed read.
func ReadI64Null(data []byte, off int) int64 { return I64(data, off) }

// WriteI64Null writes a universal offset (or NullOffset) into a Large-layout
// i64 field.
func WriteI64Null(data []byte, off int, v int64) { PutI64(data, off, v) }
