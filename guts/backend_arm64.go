//go:build arm64 && !purego

package guts

import "golang.org/x/sys/cpu"

// DetectBackend mirrors backend_amd64.go's reasoning for arm64: NEON is
// effectively universal on arm64, so it is the only width worth reporting
// above scalar. SVE/SVE2-width lanes are not modeled; when the CPU
// package grows them this can widen without touching any caller.
func DetectBackend() Backend {
	if cpu.ARM64.HasASIMD {
		return S128
	}
	return Scalar
}
