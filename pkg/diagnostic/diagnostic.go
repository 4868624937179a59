/*
Copyright 2024 The polar-kb Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package diagnostic defines the structured errors and warnings the
// knowledge base reports back to its host. A Diagnostic is always a
// (kind, severity, message) triple; a source location is attached when one
// can be resolved (see pkg/term's source-attribution visitor).
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Kind identifies the category of a Diagnostic. These mirror the error
// taxonomy in the knowledge base's external contract: hosts are expected to
// switch on Kind rather than parse Message.
type Kind string

const (
	KindParse               Kind = "Parse"
	KindInvalidRule         Kind = "InvalidRule"
	KindMissingRequiredRule Kind = "MissingRequiredRule"
	KindInvalidRuleType     Kind = "InvalidRuleType"
	KindSingletonVariable   Kind = "SingletonVariable"
	KindUnregisteredClass   Kind = "UnregisteredClass"
	KindResourceBlock       Kind = "ResourceBlock"
	KindFileLoading         Kind = "FileLoading"
	KindTypeError           Kind = "TypeError"
	KindInvalidState        Kind = "InvalidState"
)

// Severity distinguishes diagnostics that must clear all rules (Error) from
// advisory ones that never block load (Warning).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string

	// SourceID and Range locate the diagnostic in source text, when known.
	// SourceID is nil when the offending term carries no source (e.g. it was
	// synthesized by the rule-type generator).
	SourceID *uint64
	Range    *Range
}

// Range is a byte-offset span within the Source named by a Diagnostic's
// SourceID. End is exclusive; a zero-width Range (Start == End) anchors a
// single point.
type Range struct {
	Start int
	End   int
}

func (d *Diagnostic) Error() string {
	return d.Message
}

func newDiag(kind Kind, sev Severity, sourceID *uint64, rng *Range, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Kind:     kind,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		SourceID: sourceID,
		Range:    rng,
	}
}

// NewError builds an error-severity Diagnostic with no location attached yet;
// callers attach source context afterward via WithLocation.
func NewError(kind Kind, format string, args ...interface{}) *Diagnostic {
	return newDiag(kind, SeverityError, nil, nil, format, args...)
}

// NewWarning builds a warning-severity Diagnostic.
func NewWarning(kind Kind, format string, args ...interface{}) *Diagnostic {
	return newDiag(kind, SeverityWarning, nil, nil, format, args...)
}

// WithLocation returns a copy of d anchored to the given source.
func (d *Diagnostic) WithLocation(sourceID uint64, rng *Range) *Diagnostic {
	cp := *d
	cp.SourceID = &sourceID
	cp.Range = rng
	return &cp
}

// List is an ordered collection of diagnostics, in the order they were
// produced (insertion order). Order across independently-validated rules or
// shapes is not semantically meaningful. The list keeps whatever order its
// producers add entries in; a producer that iterates a map (resource-block
// expansion walks each block's Relations map) can report in a different
// order from run to run.
type List []*Diagnostic

// Add appends d to the list. A nil Diagnostic is ignored, so callers can
// write `diags = diags.Add(maybeNil())` without a guard.
func (l List) Add(d *Diagnostic) List {
	if d == nil {
		return l
	}
	return append(l, d)
}

// HasErrors reports whether any diagnostic in the list is Severity error.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the subset of l with Severity error.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the subset of l with Severity warning.
func (l List) Warnings() List {
	var out List
	for _, d := range l {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// ToAggregate folds every error-severity diagnostic into a single error,
// using the same "N errors occurred" rendering apimachinery uses elsewhere
// in the corpus. Returns nil if there are no errors.
func (l List) ToAggregate() error {
	errs := l.Errors()
	if len(errs) == 0 {
		return nil
	}
	asErrs := make([]error, len(errs))
	for i, d := range errs {
		asErrs[i] = d
	}
	return utilerrors.NewAggregate(asErrs)
}

// ParamIndex renders a 1-based parameter position for use inside a
// diagnostic message, e.g. "parameter 3".
func ParamIndex(i int) string {
	return fmt.Sprintf("parameter %d", i+1)
}

// SortedKeys returns the keys of m in sorted order, for a
// diagnostic-producing pass that iterates a string-keyed map and must not
// let map order leak into the reported order. No pass in this module calls
// it.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Indent indents every line of s by one level, matching the
// "Must match one of the following rule types:\n\n<shape>\n    Failed..."
// layout used by the rule-type mismatch message (see pkg/ruletypes).
func Indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
