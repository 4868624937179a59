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

// Package term implements the immutable recursive value tree shared by
// rules, rule types, and resource blocks: numbers, strings, booleans,
// lists, dictionaries, variables, patterns, instance literals, external
// instance handles, and expressions.
//
// Following the corpus's preference for closed, exhaustively-matched
// variants over open interface hierarchies (see SPEC_FULL.md §10 and
// original_source/polar-core's Rust enum), Value is a sealed interface:
// every implementation lives in this file, and the type switches over Value
// in equal.go, print.go and visit.go cover the variant set.
package term

import "sort"

// Term is a node in the value tree. It is deeply immutable once
// constructed: callers must not mutate a Value's fields after handing a
// Term to the knowledge base. Terms are shared by reference (ordinary Go
// pointer aliasing) rather than copied, since the same term is commonly
// referenced from multiple rules' bodies.
type Term struct {
	Value Value
	// SourceID identifies the Source this term was parsed from, for
	// diagnostics. Nil for terms synthesized by the knowledge base itself
	// (e.g. auto-generated rule-type shapes, promoted value patterns).
	SourceID *uint64
}

// New wraps a Value with no source attribution.
func New(v Value) *Term {
	return &Term{Value: v}
}

// WithSource returns a copy of t attributed to sourceID.
func (t *Term) WithSource(sourceID uint64) *Term {
	if t == nil {
		return nil
	}
	cp := *t
	cp.SourceID = &sourceID
	return &cp
}

// Value is the sealed tag union. Only types in this file implement it.
type Value interface {
	isValue()
}

// Number is an Integer or a Float; IsFloat selects which field is live.
type Number struct {
	IsFloat bool
	Int     int64
	Float   float64
}

func (Number) isValue() {}

func Int(i int64) *Term   { return New(Number{Int: i}) }
func Float(f float64) *Term { return New(Number{IsFloat: true, Float: f}) }

// Str is a string literal.
type Str string

func (Str) isValue() {}

func String(s string) *Term { return New(Str(s)) }

// Boolean is a boolean literal.
type Boolean bool

func (Boolean) isValue() {}

func Bool(b bool) *Term { return New(Boolean(b)) }

// List is an ordered sequence of terms, optionally ending in a rest
// variable (e.g. matching `[x, *rest]`).
type List struct {
	Items   []*Term
	RestVar *Symbol
}

func (List) isValue() {}

func NewList(items ...*Term) *Term { return New(List{Items: items}) }

// HasRestVar reports whether l ends in a rest-variable marker.
func (l List) HasRestVar() bool { return l.RestVar != nil }

// Dictionary maps Symbol keys to terms. Key insertion order is not
// semantically meaningful; Keys() returns them sorted for any caller that
// needs deterministic iteration (diagnostics, pretty-printing).
type Dictionary struct {
	Fields map[Symbol]*Term
}

func (Dictionary) isValue() {}

func NewDictionary(fields map[Symbol]*Term) *Term {
	if fields == nil {
		fields = map[Symbol]*Term{}
	}
	return New(Dictionary{Fields: fields})
}

func (d Dictionary) Keys() []Symbol {
	keys := make([]Symbol, 0, len(d.Fields))
	for k := range d.Fields {
		keys = append(keys, k)
	}
	sortSymbols(keys)
	return keys
}

// Variable is a reference to a bound or unbound logic variable.
type Variable Symbol

func (Variable) isValue() {}

func Var(name Symbol) *Term { return New(Variable(name)) }

// Call is a predicate invocation used in a rule body, e.g. `f(x, 1)`.
type Call struct {
	Name Symbol
	Args []*Term
}

func (Call) isValue() {}

// Expression is an operator application used in a rule body, e.g. `x and y`,
// `x.y`, `not x`. Operator is one of a small fixed vocabulary the evaluator
// understands; the knowledge base only inspects it structurally (e.g. to
// reject dot-lookup expressions in rule-type bodies, see pkg/ruletypes).
type Expression struct {
	Operator Symbol
	Args     []*Term
}

func (Expression) isValue() {}

// Known operator names the knowledge base inspects structurally. The
// evaluator (out of scope here) understands a larger vocabulary; these are
// the ones pkg/ruletypes and pkg/resources need to name.
const (
	OpAnd    Symbol = "and"
	OpOr     Symbol = "or"
	OpDot    Symbol = "dot"
	OpUnify  Symbol = "unify"
	OpIsa    Symbol = "isa"
	OpNot    Symbol = "not"
	OpOn     Symbol = "on"
)

// PatternKind selects which alternative a Pattern carries.
type PatternKind int

const (
	PatternInstanceKind PatternKind = iota
	PatternDictionaryKind
)

// Pattern is a specializer: either an instance pattern (`x: Tag{f: v}`) or a
// bare dictionary pattern (`x: {f: v}`).
type Pattern struct {
	Kind     PatternKind
	Instance *InstanceLiteral
	Dict     *Dictionary
}

func (Pattern) isValue() {}

func NewInstancePattern(lit InstanceLiteral) *Term {
	return New(Pattern{Kind: PatternInstanceKind, Instance: &lit})
}

func NewDictionaryPattern(dict Dictionary) *Term {
	return New(Pattern{Kind: PatternDictionaryKind, Dict: &dict})
}

// InstanceLiteral is a `Tag{field: value, ...}` specializer. Tag names a
// class expected to be registered in the knowledge base's constant table.
type InstanceLiteral struct {
	Tag    Symbol
	Fields Dictionary
}

// ExternalInstance is an opaque handle into the host: an instance_id plus
// optional metadata. The knowledge base never dereferences its contents.
type ExternalInstance struct {
	InstanceID  uint64
	Constructor *Term
	Repr        *string
}

func (ExternalInstance) isValue() {}

func NewExternalInstance(instanceID uint64) *Term {
	return New(ExternalInstance{InstanceID: instanceID})
}

// Parameter is one entry in a rule or rule-type's head:
// `parameter: specializer`. Parameter is conventionally a Variable; a nil
// Specializer means "no constraint".
type Parameter struct {
	Parameter   *Term
	Specializer *Term
}

// Name returns p.Parameter's variable name, or "" if it is not a Variable
// (rule-type heads sometimes use a bare value in parameter position, see
// pkg/ruletypes' check_param value/value case).
func (p Parameter) Name() (Symbol, bool) {
	if v, ok := p.Parameter.Value.(Variable); ok {
		return Symbol(v), true
	}
	return "", false
}

func sortSymbols(s []Symbol) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
