package codec

// crcPolynomial is the CRC-32 polynomial in its normal (MSB-first) form.
const crcPolynomial = 0x04C11DB7

var crcTable = makeCRCTable()

func makeCRCTable() [256]uint32 {
	var table [256]uint32
	for i := range table {
		crc := uint32(i) << 24
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CRC32 computes the game's CRC-32 variant: MSB-first table, initial value 0,
// no reflection and no final XOR. The result is returned little-endian.
//
// hash/crc32 only implements the reflected form, so the table is built here.
func CRC32(data []byte) [4]byte {
	var crc uint32
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return [4]byte{byte(crc), byte(crc >> 8), byte(crc >> 16), byte(crc >> 24)}
}
