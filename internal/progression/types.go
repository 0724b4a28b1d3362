package progression

import "errors"

// ErrInvariant marks silent-corruption conditions: a duplicate question id
// inside one batch, or a ledger response to a question the batch never
// issued. Callers must abort the write and surface it, never mask it.
var ErrInvariant = errors.New("progression invariant violation")

// Config holds the progression tunables.
type Config struct {
	RequiredCorrect int `json:"required_correct"`
	PathLength      int `json:"path_length"`
}

// DefaultConfig returns the production settings: ten gates plus the terminal
// success gate, three distinct correct answers each.
func DefaultConfig() *Config {
	return &Config{
		RequiredCorrect: 3,
		PathLength:      10,
	}
}
