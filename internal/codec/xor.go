package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/mcoot/galapa/internal/model"
)

// FixedKey is the single-byte key used by most of the game's config files.
const FixedKey byte = 0xA7

// XOR wraps a byte stream and applies a repeating-key XOR on read and write.
// The key byte for each byte is chosen by its absolute offset in the
// underlying stream, so reads, writes and seeks can be mixed freely.
//
// Bytes that are 0x00, or that already equal their key byte, pass through
// untouched. Files written by the game rely on this.
type XOR struct {
	base io.ReadWriter
	key  []byte
	pos  int64
}

// NewXOR wraps base with the given key
func NewXOR(base io.ReadWriter, key []byte) (*XOR, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil stream", model.ErrInvalidArgument)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: key must be a non-empty byte slice", model.ErrInvalidArgument)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &XOR{base: base, key: k}, nil
}

func (x *XOR) transform(buf []byte) {
	n := int64(len(x.key))
	for i, current := range buf {
		keyByte := x.key[(x.pos+int64(i))%n]
		if current != 0x00 && current != keyByte {
			buf[i] = current ^ keyByte
		}
	}
}

// Read reads from the underlying stream and decodes in place
func (x *XOR) Read(p []byte) (int, error) {
	n, err := x.base.Read(p)
	x.transform(p[:n])
	x.pos += int64(n)
	return n, err
}

// Write encodes p into a scratch buffer and writes it to the underlying stream.
// p itself is never modified.
func (x *XOR) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	x.transform(buf)
	n, err := x.base.Write(buf)
	x.pos += int64(n)
	return n, err
}

// Seek moves the underlying stream and realigns the keystream to the new offset
func (x *XOR) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := x.base.(io.Seeker)
	if !ok {
		return 0, errors.New("codec: underlying stream does not support seeking")
	}
	pos, err := seeker.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	x.pos = pos
	return pos, nil
}

// Close closes the underlying stream if it can be closed
func (x *XOR) Close() error {
	if closer, ok := x.base.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Factory wraps a raw file stream in a codec
type Factory func(base io.ReadWriter) (*XOR, error)

// Fixed returns a factory for the fixed single-byte codec
func Fixed() Factory {
	return func(base io.ReadWriter) (*XOR, error) {
		return NewXOR(base, []byte{FixedKey})
	}
}

// Username returns a factory for the codec keyed by CRC32(username + "\x00")
func Username(username string) Factory {
	key := UsernameKey(username)
	return func(base io.ReadWriter) (*XOR, error) {
		return NewXOR(base, key[:])
	}
}

// UsernameKey derives the 4-byte key used for per-user files.
// The username is hashed as ASCII; other runes become '?'.
func UsernameKey(username string) [4]byte {
	b := make([]byte, 0, len(username)+1)
	for _, r := range username {
		if r > 0x7F {
			r = '?'
		}
		b = append(b, byte(r))
	}
	return CRC32(append(b, 0x00))
}

// Transform applies the codec to a whole buffer that starts at offset 0
func Transform(data []byte, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: key must be a non-empty byte slice", model.ErrInvalidArgument)
	}
	out := make([]byte, len(data))
	copy(out, data)
	x := &XOR{key: key}
	x.transform(out)
	return out, nil
}
