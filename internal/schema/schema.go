// Package schema validates produced documents against embedded CUE
// definitions.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/symbolpack/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Kind names a produced document type.
type Kind string

const (
	KindPack    Kind = "pack"
	KindSummary Kind = "summary"
	KindReport  Kind = "report"
	KindIndex   Kind = "index"
)

// definitions maps each kind to its CUE definition.
var definitions = map[Kind]string{
	KindPack:    "#SymbolPack",
	KindSummary: "#AnalysisSummary",
	KindReport:  "#DeterminismReport",
	KindIndex:   "#ArtifactIndex",
}

// Kinds returns every document kind in a fixed order.
func Kinds() []Kind {
	return []Kind{KindPack, KindSummary, KindReport, KindIndex}
}

// ParseKind converts a name to a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := definitions[k]; !ok {
		names := make([]string, 0, len(definitions))
		for _, known := range Kinds() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("unknown document kind %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return k, nil
}

// ErrSchemaViolation is wrapped by every ValidationError.
var ErrSchemaViolation = errors.New("schema violation")

// ValidationError lists the violations found in one document.
type ValidationError struct {
	Kind       Kind
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s document failed schema validation: %s", e.Kind, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrSchemaViolation
}

// Validator checks documents against the compiled schemas.
// A Validator is not safe for concurrent use.
type Validator struct {
	ctx         *cue.Context
	definitions map[Kind]cue.Value
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	defs := make(map[Kind]cue.Value, len(definitions))
	for kind, name := range definitions {
		def := root.LookupPath(cue.ParsePath(name))
		if !def.Exists() {
			return nil, fmt.Errorf("schema definition %s not found", name)
		}
		defs[kind] = def
	}
	return &Validator{ctx: ctx, definitions: defs}, nil
}

// Validate checks a document value (struct or generic JSON form).
func (v *Validator) Validate(kind Kind, doc any) error {
	data, err := ir.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", kind, err)
	}
	return v.ValidateBytes(kind, data)
}

// ValidateBytes checks a JSON-encoded document.
func (v *Validator) ValidateBytes(kind Kind, data []byte) error {
	def, ok := v.definitions[kind]
	if !ok {
		return fmt.Errorf("unknown document kind %q", kind)
	}

	expr, err := cuejson.Extract(string(kind)+".json", data)
	if err != nil {
		return &ValidationError{Kind: kind, Violations: []string{"not valid JSON: " + err.Error()}}
	}
	value := v.ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return &ValidationError{Kind: kind, Violations: violations(err)}
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Kind: kind, Violations: violations(err)}
	}
	return nil
}

// violations flattens a CUE error list, dropping duplicates.
func violations(err error) []string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(errs))
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		msg := e.Error()
		if seen[msg] {
			continue
		}
		seen[msg] = true
		out = append(out, msg)
	}
	return out
}
