package sdsim

// CSDv1 builds the response words of a version 1.0 CSD with the given size
// fields, read block length exponent and command classes.
func CSDv1(cSize uint32, mult, readBlLen uint8, class uint16) [4]uint32 {
	var b [16]byte
	b[4] = (mult & 0x1) << 7
	b[5] = (mult >> 1) & 0x3
	b[6] = byte(cSize&0x3) << 6
	b[7] = byte(cSize >> 2)
	b[8] = byte(cSize>>10) & 0x3
	b[9] = readBlLen&0xF | byte(class&0xF)<<4
	b[10] = byte(class >> 4)
	b[14] = 0x00
	return words(b)
}

// CSDv2 builds the response words of a version 2.0 CSD. The capacity is
// (cSize+1) * 512KiB.
func CSDv2(cSize uint32, class uint16) [4]uint32 {
	var b [16]byte
	b[5] = byte(cSize)
	b[6] = byte(cSize >> 8)
	b[7] = byte(cSize>>16) & 0x3F
	b[9] = 9 | byte(class&0xF)<<4
	b[10] = byte(class >> 4)
	b[14] = 0x40
	return words(b)
}

// csdForBlocks picks the largest multiplier that describes a 512-byte block
// count exactly with a 12-bit C_SIZE.
func csdForBlocks(blocks uint32, class uint16) [4]uint32 {
	for mult := 7; mult >= 0; mult-- {
		unit := uint32(1) << (mult + 2)
		if blocks%unit == 0 && blocks/unit <= 4096 {
			return CSDv1(blocks/unit-1, uint8(mult), 9, class)
		}
	}
	return CSDv1(blocks/4-1, 0, 9, class)
}

func words(b [16]byte) [4]uint32 {
	var w [4]uint32
	for i := range w {
		w[i] = uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
	}
	return w
}
