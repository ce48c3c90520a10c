// Package bits holds the small bit manipulation helpers used to decode SD card
// registers. Byte helpers count bits from 1 (LSB) to 8, matching the way the
// CSD byte view is documented; word helpers use the 0-based bit numbers of the
// SD physical layer tables.
package bits

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// GetRange extracts the value from a range of bits (e.g., bits 4 to 3).
// Example: GetRange(0b00001100, 4, 3) returns 3 (0b11)
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}

	width := high - low + 1
	mask := byte((1 << width) - 1)

	return (b >> (low - 1)) & mask
}

// Set sets bit n (1 to 8).
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// Flag reports whether bit n (0 to 31) of a register word is set.
func Flag(w uint32, n uint) bool {
	if n > 31 {
		return false
	}
	return w&(1<<n) != 0
}

// Field extracts bits [high:low] (0-based, inclusive) of a register word.
// Example: Field(0x00001E00, 12, 9) returns 0xF (CURRENT_STATE of a card status).
func Field(w uint32, high, low uint) uint32 {
	if high < low || high > 31 {
		return 0
	}

	width := high - low + 1
	if width == 32 {
		return w
	}
	return (w >> low) & (1<<width - 1)
}

// LittleEndian flattens register words into bytes, least significant byte of
// word 0 first. This is the byte view SD controllers expose for the 128-bit
// CID/CSD responses (Resp01..Resp67).
func LittleEndian(words ...uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}
