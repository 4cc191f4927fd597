package store

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// StrategyHash returns a stable identity for a printed strategy, so runs of
// the same strategy can be grouped even when its display form is truncated.
// Whitespace differences do not affect the hash.
func StrategyHash(printed string) string {
	h := sha256.New()
	fmt.Fprintf(h, "strategy:%s\n", strings.Join(strings.Fields(printed), " "))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
