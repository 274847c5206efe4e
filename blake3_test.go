package blake3

import (
	"bytes"
	"testing"

	fasthex "github.com/tmthrgd/go-hex"

	"github.com/hashcore/blake3/guts"
)

// patternInput returns the canonical test-vector input: byte i is i mod 251,
// for i in [0, n).
func patternInput(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	return buf
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := fasthex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return b
}

type scenario struct {
	name string
	in   []byte
	want string
}

func scenarios(t *testing.T) []scenario {
	return []scenario{
		{"L=0", patternInput(0), "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{`"abc"`, []byte("abc"), "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85"},
		{"L=1024", patternInput(1024), "42214739f095a406f3fc83deb889744ac00df831c10daa55189b5d121c855af7"},
		{"L=2048", patternInput(2048), "e776b6028c7cd22a4d0ba182a8bf62205d2ef576467e838ed6f2529b85fba24a"},
		{"L=4096", patternInput(4096), "015094013f57a5277b59d8475c0501042c0b642e531b0a1c8f58d2163229e969"},
		{"L=3", patternInput(3), "e1be4d7a8ab5560aa4199eaca8a9b4a73a087fa3c30ed28aa3f9bddd3c09db3d"},
	}
}

func TestConcreteScenarios(t *testing.T) {
	for _, sc := range scenarios(t) {
		t.Run(sc.name, func(t *testing.T) {
			want := mustDecode(t, sc.want)
			h := New()
			if _, err := h.Write(sc.in); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := h.Digest(len(want))
			if err != nil {
				t.Fatalf("Digest: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("got %x, want %x", got, want)
			}
		})
	}
}

// TestUpdateGranularityIndependence checks that splitting the same input
// across many Write calls, at arbitrary boundaries, never changes the
// digest.
func TestUpdateGranularityIndependence(t *testing.T) {
	for _, sc := range scenarios(t) {
		want := mustDecode(t, sc.want)
		for _, chunkSize := range []int{1, 7, 64, 1023, 1024, 4096} {
			h := New()
			in := sc.in
			for len(in) > 0 {
				n := chunkSize
				if n > len(in) {
					n = len(in)
				}
				if _, err := h.Write(in[:n]); err != nil {
					t.Fatalf("%s chunkSize=%d: Write: %v", sc.name, chunkSize, err)
				}
				in = in[n:]
			}
			got, _ := h.Digest(len(want))
			if !bytes.Equal(got, want) {
				t.Fatalf("%s chunkSize=%d: got %x, want %x", sc.name, chunkSize, got, want)
			}
		}
	}
}

// TestBoundaryLengths exercises lengths straddling every block/chunk/lane
// boundary against the scalar and widest-available backends, checking only
// that the two backends agree — cross-backend equivalence, not external
// vectors, since no canonical vector exists for most of these lengths.
func TestBoundaryLengths(t *testing.T) {
	lengths := []int{0, 1, 63, 64, 65, 1023, 1024, 1025, 2047, 2048, 2049, 4095, 4096, 4097, 16384, 16385, 65536, 65537}
	for _, n := range lengths {
		in := patternInput(n)
		scalar := digestWithBackend(t, in, guts.Scalar)
		wide := digestWithBackend(t, in, defaultBackend)
		if !bytes.Equal(scalar, wide) {
			t.Errorf("length %d: scalar %x != %s %x", n, scalar, defaultBackend, wide)
		}
	}
}

func digestWithBackend(t *testing.T, in []byte, backend Backend) []byte {
	t.Helper()
	h := newHasher(guts.IV, 0)
	h.backend = backend
	if _, err := h.Write(in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return h.Sum(nil)
}

func TestOutputLengthPrefixProperty(t *testing.T) {
	h := New()
	_, _ = h.Write(patternInput(5000))
	long, err := h.Digest(200)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	h2 := New()
	_, _ = h2.Write(patternInput(5000))
	short, err := h2.Digest(Size)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if !bytes.Equal(long[:Size], short) {
		t.Fatalf("first %d bytes of long output %x != short output %x", Size, long[:Size], short)
	}
}

func TestEmptyDigestIsEmpty(t *testing.T) {
	h := New()
	got, err := h.Digest(0)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero-length output, got %x", got)
	}
}

func TestResetReplaysIdentically(t *testing.T) {
	in := patternInput(3000)
	h := New()
	_, _ = h.Write(in)
	first := h.Sum(nil)

	h.Reset()
	_, _ = h.Write(in)
	second := h.Sum(nil)

	if !bytes.Equal(first, second) {
		t.Fatalf("digest changed after Reset+replay: %x != %x", first, second)
	}
}

func TestWriteAfterFinalizeFails(t *testing.T) {
	h := New()
	_, _ = h.Write([]byte("hello"))
	_ = h.Sum(nil)

	if _, err := h.Write([]byte("more")); err != ErrFinalized {
		t.Fatalf("expected ErrFinalized, got %v", err)
	}

	h.Reset()
	if _, err := h.Write([]byte("more")); err != nil {
		t.Fatalf("expected Write to succeed after Reset, got %v", err)
	}
}

func TestNewKeyedRejectsBadKeyLength(t *testing.T) {
	if _, err := NewKeyed(make([]byte, 16)); err != ErrInvalidKeyLength {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
}

func TestDigestRejectsNegativeLength(t *testing.T) {
	h := New()
	if _, err := h.Digest(-1); err != ErrInvalidOutputLength {
		t.Fatalf("expected ErrInvalidOutputLength, got %v", err)
	}
}

func TestKeyedHashDiffersFromPlain(t *testing.T) {
	in := patternInput(100)
	plain := Sum256(in)

	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	h, err := NewKeyed(key[:])
	if err != nil {
		t.Fatalf("NewKeyed: %v", err)
	}
	_, _ = h.Write(in)
	keyed := h.Sum(nil)

	if bytes.Equal(plain[:], keyed) {
		t.Fatalf("keyed digest matched plain digest")
	}
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	srcKey := patternInput(32)
	var out1, out2 [64]byte
	DeriveKey(out1[:], "example context", srcKey)
	DeriveKey(out2[:], "example context", srcKey)
	if out1 != out2 {
		t.Fatalf("DeriveKey not deterministic: %x != %x", out1, out2)
	}

	var out3 [64]byte
	DeriveKey(out3[:], "different context", srcKey)
	if out1 == out3 {
		t.Fatalf("different contexts produced the same derived key")
	}
}

func TestXOFMatchesDigest(t *testing.T) {
	in := patternInput(777)
	h := New()
	_, _ = h.Write(in)
	want, _ := h.Digest(500)

	h2 := New()
	_, _ = h2.Write(in)
	r := h2.XOF()
	got := make([]byte, 500)
	if _, err := r.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("XOF output != Digest output")
	}
}

func TestXOFSeek(t *testing.T) {
	in := patternInput(10)
	h := New()
	_, _ = h.Write(in)
	full, _ := h.Digest(128)

	h2 := New()
	_, _ = h2.Write(in)
	r := h2.XOF()
	if _, err := r.Seek(64, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	tail := make([]byte, 64)
	if _, err := r.Read(tail); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(tail, full[64:]) {
		t.Fatalf("seeked read %x != expected tail %x", tail, full[64:])
	}
}

func TestTreeCVsGrowsWithInput(t *testing.T) {
	h := New()
	_, _ = h.Write(patternInput(3 * guts.ChunkLen * guts.MaxLanes))
	if len(h.TreeCVs()) == 0 {
		t.Fatalf("expected a non-empty tree log for multi-chunk input")
	}
}
