package format

import "testing"

func TestU32NullRoundTrip(t *testing.T) {
	data := make([]byte, 8)
	WriteU32Null(data, 0, NullOffset)
	if got := U32(data, 0); got != U32Null {
		t.Fatalf("raw bytes = %#x, want U32Null", got)
	}
	if got := ReadU32Null(data, 0); got != NullOffset {
		t.Fatalf("ReadU32Null = %d, want %d", got, NullOffset)
	}

	WriteU32Null(data, 4, 12345)
	if got := ReadU32Null(data, 4); got != 12345 {
		t.Fatalf("ReadU32Null = %d, want 12345", got)
	}
}

func TestI64NullRoundTrip(t *testing.T) {
	data := make([]byte, 8)
	WriteI64Null(data, 0, NullOffset)
	if got := ReadI64Null(data, 0); got != NullOffset {
		t.Fatalf("ReadI64Null = %d, want %d", got, NullOffset)
	}
	WriteI64Null(data, 0, 1<<40)
	if got := ReadI64Null(data, 0); got != 1<<40 {
		t.Fatalf("ReadI64Null = %d, want %d", got, 1<<40)
	}
}

func TestPutReadHelpers(t *testing.T) {
	data := make([]byte, 32)
	PutU16(data, 0, 0xABCD)
	if U16(data, 0) != 0xABCD {
		t.Fatalf("U16 round trip failed")
	}
	PutU32(data, 2, 0xDEADBEEF)
	if U32(data, 2) != 0xDEADBEEF {
		t.Fatalf("U32 round trip failed")
	}
	PutI32(data, 6, -42)
	if I32(data, 6) != -42 {
		t.Fatalf("I32 round trip failed")
	}
	PutU64(data, 10, 0x1122334455667788)
	if U64(data, 10) != 0x1122334455667788 {
		t.Fatalf("U64 round trip failed")
	}
	PutI64(data, 18, -99999)
	if I64(data, 18) != -99999 {
		t.Fatalf("I64 round trip failed")
	}
}

func TestJumpedBitMasking(t *testing.T) {
	raw := JumpedBit | int32(7)
	if raw&JumpedBit == 0 {
		t.Fatalf("expected JumpedBit set")
	}
	if raw&ChildCountMask != 7 {
		t.Fatalf("masked count = %d, want 7", raw&ChildCountMask)
	}
	if JumpedBit&ChildCountMask != 0 {
		t.Fatalf("JumpedBit and ChildCountMask must not overlap")
	}
}
