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

package ruletypes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osohq/polar-kb/pkg/term"
)

// fakeResolver is a minimal in-memory ClassResolver for exercising the
// validator without pulling in pkg/kb (which would create an import cycle
// back into this package's own tests).
type fakeResolver struct {
	instanceIDs map[term.Symbol]uint64
	mros        map[term.Symbol][]uint64
	unions      map[term.Symbol][]term.Symbol
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		instanceIDs: map[term.Symbol]uint64{},
		mros:        map[term.Symbol][]uint64{},
		unions:      map[term.Symbol][]term.Symbol{term.SymActor: nil, term.SymResource: nil},
	}
}

func (f *fakeResolver) registerClass(tag term.Symbol, id uint64, mro []uint64) {
	f.instanceIDs[tag] = id
	f.mros[tag] = mro
}

func (f *fakeResolver) IsConstant(name term.Symbol) bool {
	_, ok := f.instanceIDs[name]
	return ok
}

func (f *fakeResolver) RegisteredClassInstanceID(name term.Symbol) (uint64, bool) {
	id, ok := f.instanceIDs[name]
	return id, ok
}

func (f *fakeResolver) MRO(name term.Symbol) ([]uint64, bool) {
	mro, ok := f.mros[name]
	return mro, ok
}

func (f *fakeResolver) IsUnion(name term.Symbol) bool {
	_, ok := f.unions[name]
	return ok
}

func (f *fakeResolver) UnionMembers(name term.Symbol) []term.Symbol {
	return f.unions[name]
}

func instanceParam(tag term.Symbol) term.Parameter {
	return term.Parameter{
		Parameter:   term.Var("_"),
		Specializer: term.NewInstancePattern(term.InstanceLiteral{Tag: tag}),
	}
}

// TestValidate_S5_UserNotAMemberOfActor mirrors the scenario where a rule
// specializes on a class that was never added to the Actor union: the
// failure reason should point at adding a block, matching the union-hint
// path in checkInstanceVsInstance.
func TestValidate_S5_UserNotAMemberOfActor(t *testing.T) {
	resolver := newFakeResolver()
	resolver.registerClass("User", 1, []uint64{1})
	resolver.registerClass("Repository", 2, []uint64{2})
	resolver.unions[term.SymResource] = []term.Symbol{"Repository"}
	// Actor union has no declared members.

	store := NewStore()
	store.Add(&Shape{
		Name: "has_permission",
		Params: []term.Parameter{
			instanceParam(term.SymActor),
			{Parameter: term.String("read")},
			instanceParam(term.SymResource),
		},
		Required: true,
	})

	rule := &term.Rule{
		Name: "has_permission",
		Params: []term.Parameter{
			instanceParam("User"),
			{Parameter: term.String("read")},
			instanceParam("Repository"),
		},
	}
	rules := map[term.Symbol][]*term.Rule{"has_permission": {rule}}

	diags := Validate(store, rules, resolver)
	assert.True(t, diags.HasErrors())

	found := false
	for _, d := range diags.Errors() {
		if d.Kind == "InvalidRule" {
			found = true
			if !contains(d.Message, "add an actor block") {
				t.Errorf("expected a block-hint in message, got: %s", d.Message)
			}
		}
	}
	if !found {
		t.Fatal("expected an InvalidRule diagnostic")
	}
}

// TestValidate_S6_MissingRequiredRule mirrors the scenario where a required
// shape has no implementing rule at all.
func TestValidate_S6_MissingRequiredRule(t *testing.T) {
	resolver := newFakeResolver()
	resolver.registerClass("User", 1, []uint64{1})
	resolver.registerClass("Repository", 2, []uint64{2})
	resolver.unions[term.SymActor] = []term.Symbol{"User"}

	store := NewStore()
	store.Add(&Shape{
		Name: "has_relation",
		Params: []term.Parameter{
			instanceParam(term.SymActor),
			{Parameter: term.String("owner")},
			instanceParam("Repository"),
		},
		Required: true,
	})

	diags := Validate(store, map[term.Symbol][]*term.Rule{}, resolver)
	if !diags.HasErrors() {
		t.Fatal("expected a MissingRequiredRule diagnostic")
	}
	found := false
	for _, d := range diags.Errors() {
		if d.Kind == "MissingRequiredRule" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a MissingRequiredRule diagnostic")
	}
}

func TestValidate_MatchingRuleSatisfiesShape(t *testing.T) {
	resolver := newFakeResolver()
	resolver.registerClass("User", 1, []uint64{1})
	resolver.registerClass("Repository", 2, []uint64{2})
	resolver.unions[term.SymActor] = []term.Symbol{"User"}
	resolver.unions[term.SymResource] = []term.Symbol{"Repository"}

	store := NewStore()
	store.Add(&Shape{
		Name: "has_permission",
		Params: []term.Parameter{
			instanceParam(term.SymActor),
			{Parameter: term.String("read")},
			instanceParam(term.SymResource),
		},
	})

	rule := &term.Rule{
		Name: "has_permission",
		Params: []term.Parameter{
			instanceParam("User"),
			{Parameter: term.String("read")},
			instanceParam("Repository"),
		},
	}
	rules := map[term.Symbol][]*term.Rule{"has_permission": {rule}}

	diags := Validate(store, rules, resolver)
	if diags.HasErrors() {
		t.Fatalf("expected no errors, got %v", diags.Errors())
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
