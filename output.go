package blake3

import (
	"errors"
	"io"

	"lukechampine.com/uint128"

	"github.com/hashcore/blake3/guts"
)

// xofBoundary is the exclusive upper bound on a byte offset into the XOF
// keystream. guts.Node.Counter is a uint64 block index and each block is
// guts.BlockLen bytes, so the stream spans [0, 2^64*BlockLen) bytes — wider
// than a uint64 offset can express, which is why OutputReader tracks its
// position in 128 bits rather than 64.
var xofBoundary = uint128.New(0, guts.BlockLen)

// OutputReader streams BLAKE3's extendable output: the same root node
// compressed over and over with an increasing block counter. Unlike the
// Hasher it was taken from, it never mutates; Seek can jump anywhere in
// the keystream.
type OutputReader struct {
	node    guts.Node
	backend Backend
	off     uint128.Uint128
}

// Read fills p with XOF output starting at the reader's current position.
// Once the position reaches xofBoundary — the point at which the block
// counter itself would need to wrap — further reads return io.EOF rather
// than silently restarting the keystream.
func (o *OutputReader) Read(p []byte) (int, error) {
	if o.off.Cmp(xofBoundary) >= 0 {
		return 0, io.EOF
	}
	n := 0
	for len(p) > 0 {
		if o.off.Cmp(xofBoundary) >= 0 {
			break
		}
		q, within := o.off.QuoRem64(guts.BlockLen)
		full := guts.CompressNode(guts.Node{
			CV:       o.node.CV,
			Block:    o.node.Block,
			Counter:  q.Lo,
			BlockLen: o.node.BlockLen,
			Flags:    o.node.Flags,
		})
		var block [guts.BlockLen]byte
		writeBlockWords(block[:], &full)

		c := copy(p, block[within:])
		p = p[c:]
		n += c
		o.off = o.off.Add64(uint64(c))
	}
	return n, nil
}

// Seek repositions the reader within the XOF stream. The returned position
// is truncated to int64, as io.Seeker itself has no way to report a 128-bit
// offset; the internal position tracked between calls is not truncated.
func (o *OutputReader) Seek(offset int64, whence int) (int64, error) {
	var pos uint128.Uint128
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, errors.New("blake3: OutputReader.Seek: negative position")
		}
		pos = uint128.From64(uint64(offset))
	case io.SeekCurrent:
		if offset < 0 {
			back := uint64(-offset)
			if o.off.Cmp64(back) < 0 {
				return 0, errors.New("blake3: OutputReader.Seek: negative position")
			}
			pos = o.off.Sub64(back)
		} else {
			pos = o.off.Add64(uint64(offset))
		}
	default:
		return 0, errors.New("blake3: OutputReader.Seek: invalid whence")
	}
	o.off = pos
	return int64(pos.Lo), nil
}

// outputBytes materializes outLen bytes of a finalized root node's XOF
// stream starting at block 0, batching lanes-many output blocks at once
// when the active backend supports it. outLen is bounded by ordinary Go
// slice sizes, far short of the 2^64-block range OutputReader has to guard,
// so a plain uint64 block counter is sufficient here.
func outputBytes(n guts.Node, outLen int, backend Backend) []byte {
	out := make([]byte, 0, outLen)
	lanes := backend.Lanes()
	blockIdx := uint64(0)
	for len(out) < outLen {
		if lanes > 1 {
			wide := guts.CompressBlocksWide(lanes, n, blockIdx)
			for lane := 0; lane < lanes && len(out) < outLen; lane++ {
				var block [guts.BlockLen]byte
				writeBlockWords(block[:], &wide[lane])
				out = append(out, block[:]...)
			}
			blockIdx += uint64(lanes)
		} else {
			full := guts.CompressNode(guts.Node{CV: n.CV, Block: n.Block, Counter: blockIdx, BlockLen: n.BlockLen, Flags: n.Flags})
			var block [guts.BlockLen]byte
			writeBlockWords(block[:], &full)
			out = append(out, block[:]...)
			blockIdx++
		}
	}
	return out[:outLen]
}

func writeBlockWords(dst []byte, words *[16]uint32) {
	for i := 0; i < len(dst)/4 && i < 16; i++ {
		w := words[i]
		o := i * 4
		dst[o] = byte(w)
		dst[o+1] = byte(w >> 8)
		dst[o+2] = byte(w >> 16)
		dst[o+3] = byte(w >> 24)
	}
}
