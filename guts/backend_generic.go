//go:build (!amd64 && !arm64) || purego

package guts

// DetectBackend has nothing to detect on architectures with no wide-lane
// implementation wired in: Scalar is always correct.
func DetectBackend() Backend {
	return Scalar
}
