package framing

import "hash/crc32"

// ccittPoly is the CRC-16-CCITT polynomial used by common acoustic modems.
const ccittPoly = 0x1021

var ccittTable = makeCCITTTable()

func makeCCITTTable() [256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ ccittPoly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// Sum16 returns the CRC-16-CCITT checksum of data (poly 0x1021, init 0xFFFF,
// no reflection).
func Sum16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crc<<8 ^ ccittTable[byte(crc>>8)^b]
	}
	return crc
}

// Sum32 returns the CRC-32 checksum of data (IEEE 802.3 polynomial, the
// standard zlib CRC-32).
func Sum32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Verify16 reports whether sum is the CRC-16-CCITT checksum of data.
func Verify16(data []byte, sum uint16) bool {
	return Sum16(data) == sum
}

// Verify32 reports whether sum is the CRC-32 checksum of data.
func Verify32(data []byte, sum uint32) bool {
	return Sum32(data) == sum
}
