// Package translate parses "code=label" expressions into bidirectional
// lookup tables.
package translate

import (
	"strings"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// Pair is one code/label entry.
type Pair struct {
	Code  string
	Label string
}

// Table is an ordered list of pairs. It is not deduplicated: the first
// matching pair wins in both directions.
type Table struct {
	pairs []Pair
}

// Parse splits expr on pairDelim and each pair on the first kvDelim.
// Empty pair segments are ignored. A pair without kvDelim is a
// configuration error.
func Parse(expr, pairDelim, kvDelim string) (*Table, error) {
	if pairDelim == "" {
		pairDelim = models.DefaultTranslationDelimiter
	}
	if kvDelim == "" {
		kvDelim = models.DefaultTranslationKVDelimiter
	}
	if strings.TrimSpace(expr) == "" {
		return nil, models.ConfigError("translate", "empty translation expression")
	}

	t := &Table{}
	for _, item := range strings.Split(expr, pairDelim) {
		if item == "" {
			continue
		}
		code, label, ok := strings.Cut(item, kvDelim)
		if !ok {
			return nil, models.ConfigError("translate", "malformed pair %q in %q: missing %q", item, expr, kvDelim)
		}
		t.pairs = append(t.pairs, Pair{Code: code, Label: label})
	}
	if len(t.pairs) == 0 {
		return nil, models.ConfigError("translate", "no pairs in %q", expr)
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr, pairDelim, kvDelim string) *Table {
	t, err := Parse(expr, pairDelim, kvDelim)
	if err != nil {
		panic(err)
	}
	return t
}

// Forward returns the label of the first pair whose code equals code,
// or code itself when nothing matches.
func (t *Table) Forward(code string) string {
	if t == nil {
		return code
	}
	for _, p := range t.pairs {
		if p.Code == code {
			return p.Label
		}
	}
	return code
}

// Reverse returns the code of the first pair whose label equals label,
// or label itself when nothing matches.
func (t *Table) Reverse(label string) string {
	if t == nil {
		return label
	}
	for _, p := range t.pairs {
		if p.Label == label {
			return p.Code
		}
	}
	return label
}

// Pairs returns a copy of the table entries in expression order.
func (t *Table) Pairs() []Pair {
	if t == nil {
		return nil
	}
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

// Labels returns the labels in expression order.
func (t *Table) Labels() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.pairs))
	for _, p := range t.pairs {
		out = append(out, p.Label)
	}
	return out
}
