//go:build amd64 && !purego

package guts

import "golang.org/x/sys/cpu"

// DetectBackend picks the widest lane count the running CPU can plausibly
// benefit from. Because every backend here is a portable Go
// implementation rather than real vector code, this is a throughput
// heuristic, not a correctness gate: any backend returns bit-identical
// digests, so a build run under an unrecognized or emulated amd64 simply
// falls back to scalar without any loss of correctness.
func DetectBackend() Backend {
	switch {
	case cpu.X86.HasAVX512F:
		return S512
	case cpu.X86.HasAVX2:
		return S256
	case cpu.X86.HasSSE41:
		return S128
	default:
		return Scalar
	}
}
