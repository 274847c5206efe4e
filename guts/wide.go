package guts

import "math/bits"

// This file holds the "wide" chunk engine: a portable stand-in for the
// vector code a real backend would run. Instead of 4/8/16-way SIMD
// registers it uses plain Go arrays shaped [word][lane], i.e. "word i of N
// chunks side by side", and walks the same 7-round schedule the scalar
// path uses. Every lane carries its own counter and its own message
// words, gathered from its own chunk, so the result is exactly what
// running CompressChunk lanes-many times would produce — just computed
// with the loop nesting inverted, the way a transposed SIMD kernel would.

// CompressChunks compresses numChunks complete (ChunkLen-byte) chunks
// starting at counter, using backend's lane width where the remaining
// chunk count allows it and falling through to narrower backends (and
// finally Scalar) for whatever is left over. The returned slice holds one
// chaining value per chunk, in order.
func CompressChunks(backend Backend, buf []byte, numChunks int, key *[8]uint32, counter uint64, flags uint32) [][8]uint32 {
	cvs := make([][8]uint32, 0, numChunks)
	lanes := backend.Lanes()
	i := 0
	for lanes > 1 && numChunks-i >= lanes {
		wide := compressChunksWide(lanes, buf[i*ChunkLen:(i+lanes)*ChunkLen], key, counter+uint64(i), flags)
		cvs = append(cvs, wide[:lanes]...)
		i += lanes
	}
	if rem := numChunks - i; rem > 0 {
		if narrower, ok := backend.narrower(); ok {
			cvs = append(cvs, CompressChunks(narrower, buf[i*ChunkLen:], rem, key, counter+uint64(i), flags)...)
		} else {
			for ; i < numChunks; i++ {
				n := CompressChunk(buf[i*ChunkLen:(i+1)*ChunkLen], key, counter+uint64(i), flags)
				cvs = append(cvs, ChainingValue(n))
			}
		}
	}
	return cvs
}

// compressChunksWide compresses exactly lanes complete chunks (lanes*ChunkLen
// bytes starting at buf[0]) side by side, returning one chaining value per
// lane.
func compressChunksWide(lanes int, buf []byte, key *[8]uint32, counter uint64, flags uint32) [MaxLanes][8]uint32 {
	var cv [MaxLanes][8]uint32
	for lane := 0; lane < lanes; lane++ {
		cv[lane] = *key
	}
	for block := 0; block < BlocksPerChunk; block++ {
		blockFlags := flags
		if block == 0 {
			blockFlags |= FlagChunkStart
		}
		if block == BlocksPerChunk-1 {
			blockFlags |= FlagChunkEnd
		}

		var v [16][MaxLanes]uint32
		var m [16][MaxLanes]uint32
		for lane := 0; lane < lanes; lane++ {
			base := lane*ChunkLen + block*BlockLen
			for w := 0; w < BlockWords; w++ {
				o := base + w*4
				m[w][lane] = uint32(buf[o]) | uint32(buf[o+1])<<8 | uint32(buf[o+2])<<16 | uint32(buf[o+3])<<24
			}
			for w := 0; w < 8; w++ {
				v[w][lane] = cv[lane][w]
			}
			for w := 0; w < 4; w++ {
				v[8+w][lane] = IV[w]
			}
			c := counter + uint64(lane)
			v[12][lane] = uint32(c)
			v[13][lane] = uint32(c >> 32)
			v[14][lane] = BlockLen
			v[15][lane] = blockFlags
		}

		roundsWide(lanes, &v, &m)

		for lane := 0; lane < lanes; lane++ {
			var out [8]uint32
			for w := 0; w < 8; w++ {
				out[w] = v[w][lane] ^ v[w+8][lane]
			}
			cv[lane] = out
		}
	}
	return cv
}

// CompressBlocksWide evaluates the same Node lanes times over, varying only
// the block counter, and returns the full 16-word compression output per
// lane. This is the wide-engine counterpart used by the XOF reader: every
// lane shares CV, block and flags and differs only in which 64-byte
// keystream block it produces.
func CompressBlocksWide(lanes int, n Node, base uint64) [MaxLanes][16]uint32 {
	var v [16][MaxLanes]uint32
	var m [16][MaxLanes]uint32
	for lane := 0; lane < lanes; lane++ {
		for w := 0; w < 8; w++ {
			v[w][lane] = n.CV[w]
		}
		for w := 0; w < 4; w++ {
			v[8+w][lane] = IV[w]
		}
		c := base + uint64(lane)
		v[12][lane] = uint32(c)
		v[13][lane] = uint32(c >> 32)
		v[14][lane] = n.BlockLen
		v[15][lane] = n.Flags
		for w := 0; w < BlockWords; w++ {
			m[w][lane] = n.Block[w]
		}
	}

	roundsWide(lanes, &v, &m)

	var out [MaxLanes][16]uint32
	for lane := 0; lane < lanes; lane++ {
		for w := 0; w < 8; w++ {
			out[lane][w] = v[w][lane] ^ v[w+8][lane]
			out[lane][w+8] = v[w+8][lane] ^ n.CV[w]
		}
	}
	return out
}

func roundsWide(lanes int, v, m *[16][MaxLanes]uint32) {
	for round := 0; round < 7; round++ {
		s := &messageSchedule[round]
		gWide(lanes, v, 0, 4, 8, 12, &m[s[0]], &m[s[1]])
		gWide(lanes, v, 1, 5, 9, 13, &m[s[2]], &m[s[3]])
		gWide(lanes, v, 2, 6, 10, 14, &m[s[4]], &m[s[5]])
		gWide(lanes, v, 3, 7, 11, 15, &m[s[6]], &m[s[7]])

		gWide(lanes, v, 0, 5, 10, 15, &m[s[8]], &m[s[9]])
		gWide(lanes, v, 1, 6, 11, 12, &m[s[10]], &m[s[11]])
		gWide(lanes, v, 2, 7, 8, 13, &m[s[12]], &m[s[13]])
		gWide(lanes, v, 3, 4, 9, 14, &m[s[14]], &m[s[15]])
	}
}

func gWide(lanes int, v *[16][MaxLanes]uint32, a, b, c, d int, mx, my *[MaxLanes]uint32) {
	for lane := 0; lane < lanes; lane++ {
		v[a][lane] += v[b][lane] + mx[lane]
		v[d][lane] = bits.RotateLeft32(v[d][lane]^v[a][lane], -16)
		v[c][lane] += v[d][lane]
		v[b][lane] = bits.RotateLeft32(v[b][lane]^v[c][lane], -12)
		v[a][lane] += v[b][lane] + my[lane]
		v[d][lane] = bits.RotateLeft32(v[d][lane]^v[a][lane], -8)
		v[c][lane] += v[d][lane]
		v[b][lane] = bits.RotateLeft32(v[b][lane]^v[c][lane], -7)
	}
}
