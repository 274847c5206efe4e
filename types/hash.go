// Package types holds the small value types shared between the blake3
// package and its test vectors and CLI.
package types

import (
	"errors"
	"runtime"
	"unsafe"

	fasthex "github.com/tmthrgd/go-hex"
)

// HashSize is the length in bytes of a default-mode BLAKE3 digest.
const HashSize = 32

// Hash is a fixed-size 256-bit digest.
type Hash [HashSize]byte

var ZeroHash Hash

func (h Hash) MarshalJSON() ([]byte, error) {
	var buf [HashSize*2 + 2]byte
	buf[0] = '"'
	buf[HashSize*2+1] = '"'
	fasthex.Encode(buf[1:], h[:])
	return buf[:], nil
}

func (h *Hash) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || len(b) == 2 {
		return nil
	}
	if len(b) != HashSize*2+2 {
		return errors.New("invalid hash length")
	}
	_, err := fasthex.Decode(h[:], b[1:len(b)-1])
	return err
}

// MustHashFromString decodes a hex-encoded hash, panicking on malformed
// input. Intended for test vectors and other call sites that already know
// the string is well-formed.
func MustHashFromString(s string) Hash {
	h, err := HashFromString(s)
	if err != nil {
		panic(err)
	}
	return h
}

func HashFromString(s string) (Hash, error) {
	var h Hash
	buf, err := fasthex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(buf) != HashSize {
		return h, errors.New("wrong size")
	}
	copy(h[:], buf)
	return h, nil
}

func HashFromBytes(buf []byte) (h Hash) {
	if len(buf) != HashSize {
		return
	}
	copy(h[:], buf)
	return
}

// Compare orders two hashes as 256-bit little-endian integers, comparing
// 64 bits at a time rather than byte by byte.
func (h Hash) Compare(other Hash) int {
	defer runtime.KeepAlive(other)
	defer runtime.KeepAlive(h)

	// #nosec G103 -- 32 bytes -> 4 uint64
	a := unsafe.Slice((*uint64)(unsafe.Pointer(&h)), len(h)/int(unsafe.Sizeof(uint64(0))))
	// #nosec G103 -- 32 bytes -> 4 uint64
	b := unsafe.Slice((*uint64)(unsafe.Pointer(&other)), len(other)/int(unsafe.Sizeof(uint64(0))))

	for i := 3; i >= 0; i-- {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

func (h Hash) Slice() []byte {
	return h[:]
}

func (h Hash) String() string {
	return fasthex.EncodeToString(h[:])
}
