// Command blake3sum hashes one or more files and prints their BLAKE3
// digests, one per line, in the familiar "<hex digest>  <path>" form.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashcore/blake3"
	"github.com/hashcore/blake3/utils"
)

func main() {
	if len(os.Args) < 2 {
		utils.Fatalf("usage: %s FILE...", os.Args[0])
	}
	paths := os.Args[1:]
	digests := make([]string, len(paths))

	err := utils.SplitWork(0, uint64(len(paths)),
		func(workIndex uint64, _ int) error {
			d, err := hashFile(paths[workIndex])
			if err != nil {
				return fmt.Errorf("%s: %w", paths[workIndex], err)
			}
			digests[workIndex] = d
			return nil
		},
		func(_, _ int) error { return nil },
	)
	if err != nil {
		utils.Fatalf("%v", err)
	}

	for i, path := range paths {
		fmt.Printf("%s  %s\n", digests[i], path)
	}
}

// hashFile owns its own Hasher, independent of every other routine's — the
// single-owner-per-hasher rule holds even though SplitWork hands out work
// items to a fixed pool of concurrent routines.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
