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

// Package ruletypes implements the rule-type validator: the subsystem that
// decides whether a rule's parameter list conforms to a declared shape,
// under a host-supplied class hierarchy (MRO) and the Actor/Resource
// unions. This is the most intricate piece of the knowledge base (spec §1)
// and is kept independent of pkg/kb's storage concerns — it depends only on
// pkg/term and pkg/diagnostic, and a narrow ClassResolver interface that
// pkg/kb implements, so the two packages don't import each other.
package ruletypes

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/osohq/polar-kb/pkg/term"
)

// Shape is a declared or auto-generated rule-type: a head a rule with the
// same name must conform to. Required shapes additionally demand at least
// one implementing rule (spec §4.4, Phase B).
type Shape struct {
	Name     term.Symbol
	Params   []term.Parameter
	Required bool
	SourceID *uint64
}

func (s *Shape) Arity() int { return len(s.Params) }

// ClassResolver is the read-only surface of the knowledge base's constant
// table and MRO table that the validator needs: resolving a class name to
// its external instance id, resolving a class's MRO, and answering union
// membership questions (spec §4.4.3, §4.4.4). pkg/kb.KB implements this.
type ClassResolver interface {
	// IsConstant reports whether name is registered in the constant table.
	IsConstant(name term.Symbol) bool
	// RegisteredClassInstanceID resolves name to the external instance id of
	// the class it denotes. ok is false if name is not registered, or is
	// registered but is not an external instance (class).
	RegisteredClassInstanceID(name term.Symbol) (id uint64, ok bool)
	// MRO returns the ordered, self-first ancestor instance-id list for the
	// class name. ok is false if name has no registered MRO at all (spec
	// §4.4.3's InvalidState case: "error if missing").
	MRO(name term.Symbol) (mro []uint64, ok bool)
	// IsUnion reports whether name is one of the reserved union names.
	IsUnion(name term.Symbol) bool
	// UnionMembers returns the tags declared as members of the union named
	// name (spec §4.4.4). Only meaningful when IsUnion(name) is true.
	UnionMembers(name term.Symbol) []term.Symbol
}

// Store holds all rule-type shapes declared for a knowledge base, grouped by
// name and preserving declaration order (user-declared shapes first, then
// any shapes auto-generated from resource blocks, per spec §4.5).
type Store struct {
	byName map[term.Symbol][]*Shape
	order  []term.Symbol
}

func NewStore() *Store {
	return &Store{byName: map[term.Symbol][]*Shape{}}
}

// Add appends shape to the store under its name.
func (s *Store) Add(shape *Shape) {
	if _, ok := s.byName[shape.Name]; !ok {
		s.order = append(s.order, shape.Name)
	}
	s.byName[shape.Name] = append(s.byName[shape.Name], shape)
}

// Clear empties the store (used by kb.ClearRules, spec §4.3).
func (s *Store) Clear() {
	s.byName = map[term.Symbol][]*Shape{}
	s.order = nil
}

// ShapesFor returns the declared shapes for name, in declaration order.
func (s *Store) ShapesFor(name term.Symbol) []*Shape {
	return s.byName[name]
}

// Names returns every name with at least one declared shape, in declaration
// order.
func (s *Store) Names() []term.Symbol {
	return append([]term.Symbol(nil), s.order...)
}

// RequiredShapes returns every required shape across every name, in
// declaration order; used for Phase B (spec §4.4, "required implementations").
func (s *Store) RequiredShapes() []*Shape {
	var out []*Shape
	for _, name := range s.order {
		for _, shape := range s.byName[name] {
			if shape.Required {
				out = append(out, shape)
			}
		}
	}
	return out
}

// classSet is a small convenience wrapper used by union-matching code to
// test tag membership; it builds a new set on every call.
func classSet(tags []term.Symbol) sets.Set[term.Symbol] {
	return sets.New(tags...)
}
