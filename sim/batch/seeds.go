// Package batch implements the orchestration layer that runs the
// simulation engine across replicates, policies, and device/network
// profile matrices, aggregating their metrics (spec §4.9).
package batch

import (
	"fmt"

	"github.com/google/uuid"
)

// SeedMode selects how per-replicate seeds are derived from a base seed
// (spec §4.9).
type SeedMode string

const (
	// SeedFixed reuses the base seed unchanged for every replicate.
	SeedFixed SeedMode = "Fixed"
	// SeedDeterministicJitter appends "#<replicate index+1>" to the base
	// seed, so replicate seeds are reproducible across runs.
	SeedDeterministicJitter SeedMode = "DeterministicJitter"
	// SeedRandomized appends a freshly generated UUIDv4 to the base seed,
	// so replicate seeds differ on every invocation.
	SeedRandomized SeedMode = "Randomized"
)

// DeriveSeed computes the seed string for replicate index i (0-based)
// under the given base seed and mode.
func DeriveSeed(base string, mode SeedMode, i int) string {
	switch mode {
	case SeedDeterministicJitter:
		return fmt.Sprintf("%s#%d", base, i+1)
	case SeedRandomized:
		return fmt.Sprintf("%s#%s", base, uuid.New().String())
	default:
		return base
	}
}
