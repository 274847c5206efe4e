package blake3

import "errors"

var (
	// ErrFinalized is returned by Write when called after Sum, Digest or XOF
	// without an intervening Reset. BLAKE3 itself is total over byte
	// sequences; this error exists purely to catch the caller bug of mutating
	// a hasher whose root has already been taken, synchronously rather than
	// silently producing a digest nobody asked for.
	ErrFinalized = errors.New("blake3: write after finalize without reset")

	// ErrInvalidKeyLength is returned by NewKeyed for any key whose length is
	// not exactly KeySize.
	ErrInvalidKeyLength = errors.New("blake3: key must be 32 bytes")

	// ErrInvalidOutputLength is returned by Digest for a negative length.
	ErrInvalidOutputLength = errors.New("blake3: output length must be non-negative")
)
