package codec

import (
	"path/filepath"
	"strings"
)

// digitSymbols replaces the ten digits in obfuscated names
const digitSymbols = "&@#+(_-)]$"

var upperTable = [26]byte{
	0x03, 0x05, 0x14, 0x17, 0x08, 0x18, 0x06, 0x07,
	0x01, 0x12, 0x02, 0x09, 0x0A, 0x0C, 0x19, 0x0D,
	0x04, 0x0F, 0x15, 0x0E, 0x10, 0x00, 0x11, 0x0B,
	0x16, 0x13,
}

var lowerTable = [26]byte{
	0x12, 0x15, 0x04, 0x17, 0x0B, 0x19, 0x0D, 0x0E,
	0x03, 0x11, 0x0C, 0x10, 0x14, 0x05, 0x07, 0x0F,
	0x08, 0x06, 0x01, 0x09, 0x02, 0x0A, 0x16, 0x13,
	0x00, 0x18,
}

var (
	upperInverse = invert(upperTable)
	lowerInverse = invert(lowerTable)
)

func invert(table [26]byte) [26]byte {
	var inv [26]byte
	for i, v := range table {
		inv[v] = byte(i)
	}
	return inv
}

// ObfuscateName obfuscates the basename of path with the given seed.
// Directory components are returned unchanged.
func ObfuscateName(path string, seed int) string {
	dir, base := filepath.Split(path)
	return dir + substitute(base, seed, true)
}

// DeobfuscateName reverses ObfuscateName for the same seed. Names that
// already contain digit symbols, '!' or '~' before obfuscation do not
// survive the round trip, since those characters pass through unchanged.
func DeobfuscateName(path string, seed int) string {
	dir, base := filepath.Split(path)
	return dir + substitute(base, seed, false)
}

// substitute runs the character cipher in either direction. The running
// checksum always advances by the plaintext character, which is the input
// when obfuscating and the output when deobfuscating.
func substitute(name string, seed int, forward bool) string {
	checksum := seed & 0xFF
	var sb strings.Builder
	sb.Grow(len(name))

	for i := 0; i < len(name); i++ {
		ch := name[i]
		out := ch

		switch {
		case forward && ch >= '0' && ch <= '9':
			out = digitSymbols[(checksum+int(ch-'0'))%10]
		case !forward && strings.IndexByte(digitSymbols, ch) >= 0:
			idx := strings.IndexByte(digitSymbols, ch)
			out = '0' + byte(mod(idx-checksum, 10))
		case ch >= 'A' && ch <= 'Z':
			out = 'A' + letter(ch-'A', checksum, forward, &upperTable, &upperInverse)
		case ch >= 'a' && ch <= 'z':
			out = 'a' + letter(ch-'a', checksum, forward, &lowerTable, &lowerInverse)
		case forward && ch == '.':
			out = '!'
		case forward && ch == '*':
			out = '~'
		case !forward && ch == '!':
			out = '.'
		case !forward && ch == '~':
			out = '*'
		}

		sb.WriteByte(out)

		plain := ch
		if !forward {
			plain = out
		}
		checksum = (checksum + int(plain)) & 0xFF
	}

	return sb.String()
}

func letter(v byte, checksum int, forward bool, table, inverse *[26]byte) byte {
	if forward {
		return table[(checksum+int(v))%26]
	}
	return byte(mod(int(inverse[v])-checksum, 26))
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
