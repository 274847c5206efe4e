// Package blake3 implements the BLAKE3 cryptographic hash function: a
// single compression primitive, a Merkle tree built from fixed-size
// chunks, and a streaming driver that lets the tree's root stay undecided
// until the caller actually asks for output. See guts for the primitive
// itself; this package is the public, stateful Hasher built on it.
package blake3

import (
	"math/bits"

	"github.com/hashcore/blake3/guts"
	"github.com/hashcore/blake3/types"
)

// KeySize is the length in bytes of a key accepted by NewKeyed.
const KeySize = 32

// Size is the default digest length returned by Sum.
const Size = 32

// Backend names a lane width the chunk engine can compute with; see
// guts.Backend for the portable-software-SIMD implementations behind it.
type Backend = guts.Backend

// DetectBackend resolves the best Backend for the running CPU. It is
// cached process-wide in defaultBackend rather than called per Hasher, so
// construction stays cheap.
var DetectBackend = guts.DetectBackend

var defaultBackend = DetectBackend()

// Hasher is a streaming BLAKE3 state. The zero value is not usable; build
// one with New, NewKeyed or NewDeriveKey. A Hasher is owned by a single
// goroutine at a time — nothing here is safe to call concurrently on the
// same instance, though independent Hashers never interact.
type Hasher struct {
	key   [8]uint32
	flags uint32

	backend Backend

	buf    [guts.MaxLanes * guts.ChunkLen]byte
	buflen int

	stack   [54][8]uint32
	counter uint64

	finalized bool
	treeLog   [][8]uint32
}

func newHasher(key [8]uint32, flags uint32) *Hasher {
	return &Hasher{key: key, flags: flags, backend: defaultBackend}
}

// New returns a Hasher in the default, unkeyed mode.
func New() *Hasher {
	return newHasher(guts.IV, 0)
}

// NewKeyed returns a Hasher in keyed mode. key must be exactly KeySize
// bytes.
func NewKeyed(key []byte) (*Hasher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return newHasher(wordsFromBytes(key), guts.FlagKeyedHash), nil
}

// NewDeriveKey returns a Hasher in key-derivation mode for the given
// context string. The context is hashed immediately (by an internal
// hasher keyed with IV in derive-key-context mode) to produce the
// derivation key; the
// returned Hasher is then fed key material via Write and its output is
// the derived key, of whatever length the caller asks Digest for.
func NewDeriveKey(context string) *Hasher {
	ctxHasher := newHasher(guts.IV, guts.FlagDeriveKeyContext)
	_, _ = ctxHasher.Write([]byte(context))
	contextKey := wordsFromBytes(ctxHasher.Digest32())
	return newHasher(contextKey, guts.FlagDeriveKeyMaterial)
}

// DeriveKey fills subKey with key material derived from srcKey under the
// given context string, following lukechampine.com/blake3's DeriveKey
// signature.
func DeriveKey(subKey []byte, context string, srcKey []byte) {
	h := NewDeriveKey(context)
	_, _ = h.Write(srcKey)
	out, _ := h.Digest(len(subKey))
	copy(subKey, out)
}

// Sum256 returns the default 256-bit digest of b.
func Sum256(b []byte) types.Hash {
	h := New()
	_, _ = h.Write(b)
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Sum512 returns a 512-bit BLAKE3 digest of b, i.e. the first 64 output
// bytes of its XOF stream.
func Sum512(b []byte) [64]byte {
	h := New()
	_, _ = h.Write(b)
	var out [64]byte
	d, _ := h.Digest(64)
	copy(out[:], d)
	return out
}

// Write absorbs p into the hasher. It always accepts any number of bytes
// in any number of calls with identical results; the only way to make it
// fail is to call it after Sum, Digest or XOF without an intervening Reset.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.finalized {
		return 0, ErrFinalized
	}
	total := len(p)
	for len(p) > 0 {
		if h.buflen == len(h.buf) {
			h.flush()
		}
		n := copy(h.buf[h.buflen:], p)
		h.buflen += n
		p = p[n:]
	}
	return total, nil
}

// flush is called only once h.buf is completely full (MaxLanes chunks): it
// hashes every chunk currently buffered and pushes each chaining value
// onto the tree in order, then empties the buffer.
func (h *Hasher) flush() {
	numChunks := h.buflen / guts.ChunkLen
	base := h.counter
	cvs := guts.CompressChunks(h.backend, h.buf[:h.buflen], numChunks, &h.key, base, h.flags)
	for _, cv := range cvs {
		h.pushSubtree(cv)
	}
	h.buflen = 0
}

// pushSubtree folds a newly completed chunk's CV into the stack, merging
// it with any already-complete subtrees of the same size, the same way
// binary addition carries — the stack's occupied heights always mirror
// the set bits of h.counter.
func (h *Hasher) pushSubtree(cv [8]uint32) {
	h.treeLog = append(h.treeLog, cv)
	i := 0
	for h.counter&(1<<uint(i)) != 0 {
		cv = guts.ChainingValue(guts.ParentNode(h.stack[i], cv, &h.key, h.flags))
		h.treeLog = append(h.treeLog, cv)
		i++
	}
	h.stack[i] = cv
	h.counter++
}

// rootNode computes the tree's root, with the final chunk — whether
// complete or short — merged in, and FlagRoot set on that last
// compression only, ready for the XOF.
func (h *Hasher) rootNode() guts.Node {
	n := guts.CompressBuffer(h.backend, h.buf[:h.buflen], &h.key, h.counter, h.flags)
	lo, hi := bits.TrailingZeros64(h.counter), bits.Len64(h.counter)
	for i := lo; i < hi; i++ {
		if h.counter&(1<<uint(i)) != 0 {
			n = guts.ParentNode(h.stack[i], guts.ChainingValue(n), &h.key, h.flags)
		}
	}
	n.Flags |= guts.FlagRoot
	return n
}

// Sum appends the default 32-byte digest to b and returns the result, per
// hash.Hash. It marks the Hasher finalized like Digest and XOF.
func (h *Hasher) Sum(b []byte) []byte {
	d, _ := h.Digest(Size)
	return append(b, d...)
}

// Digest32 is a convenience for the common case of wanting exactly Size
// bytes without checking the error Digest can only return for a negative
// length.
func (h *Hasher) Digest32() []byte {
	d, _ := h.Digest(Size)
	return d
}

// Digest finalizes the hasher and returns outLen bytes of output, which
// may be more or fewer than Size: BLAKE3's output is an extendable
// keystream, not a fixed-width digest. It marks the Hasher finalized; any
// further Write returns ErrFinalized until Reset is called.
func (h *Hasher) Digest(outLen int) ([]byte, error) {
	if outLen < 0 {
		return nil, ErrInvalidOutputLength
	}
	n := h.rootNode()
	h.finalized = true
	return outputBytes(n, outLen, h.backend), nil
}

// XOF returns a reader over the hasher's unbounded output stream, fixing
// the root node at the moment XOF is called. Like Sum and Digest, this
// finalizes the Hasher.
func (h *Hasher) XOF() *OutputReader {
	n := h.rootNode()
	h.finalized = true
	return &OutputReader{node: n, backend: h.backend}
}

// TreeCVs returns every chaining value the tree hasher has pushed onto or
// merged off of its stack so far, in the order those events happened. It
// does not include the root: callers wanting outboard verified-streaming
// data (see a Bao-style encoding) combine this with a final Digest call.
func (h *Hasher) TreeCVs() [][8]uint32 {
	return append([][8]uint32(nil), h.treeLog...)
}

// Reset returns the Hasher to its just-constructed state, keeping its key
// and mode but discarding all absorbed data.
func (h *Hasher) Reset() {
	h.buflen = 0
	h.counter = 0
	h.finalized = false
	h.treeLog = h.treeLog[:0]
}

// Zeroize overwrites the Hasher's key, buffered data and tree state with
// zeros and leaves it unusable. Go has no deterministic destructors, so
// this is opt-in: callers handling long-lived secret key material should
// call it explicitly once the Hasher is no longer needed, rather than
// relying on garbage collection.
func (h *Hasher) Zeroize() {
	for i := range h.key {
		h.key[i] = 0
	}
	for i := range h.buf {
		h.buf[i] = 0
	}
	for i := range h.stack {
		h.stack[i] = [8]uint32{}
	}
	h.treeLog = nil
	h.counter = 0
	h.buflen = 0
	h.finalized = true
}

// Size returns the default digest length, satisfying hash.Hash.
func (h *Hasher) Size() int { return Size }

// BlockSize returns the chunk engine's native block size, satisfying
// hash.Hash.
func (h *Hasher) BlockSize() int { return guts.BlockLen }

func wordsFromBytes(b []byte) [8]uint32 {
	var w [8]uint32
	for i := range w {
		o := i * 4
		w[i] = uint32(b[o]) | uint32(b[o+1])<<8 | uint32(b[o+2])<<16 | uint32(b[o+3])<<24
	}
	return w
}
