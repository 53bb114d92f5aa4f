package harness

import "github.com/roach88/symbolpack/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success: every permutation produced the
	// same pack and every assertion held.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Permutations is how many input orderings were assembled.
	Permutations int `json:"permutations"`

	// Pack is the pack assembled from the symbols in file order.
	Pack *ir.SymbolPack `json:"-"`

	// Snapshot is the canonical JSON of Pack with volatile fields removed.
	// It is what golden files store.
	Snapshot []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
