package cache

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint is a 64-bit SimHash of a page's extracted text. Near-duplicate
// texts produce fingerprints a small Hamming distance apart.
func Fingerprint(text string) uint64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	features := words
	if len(words) > 1 {
		// Word bigrams keep some ordering information.
		features = make([]string, 0, len(words)-1)
		for i := 0; i+1 < len(words); i++ {
			features = append(features, words[i]+" "+words[i+1])
		}
	}

	var vector [64]int
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance is the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
