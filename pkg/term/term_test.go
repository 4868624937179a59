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

package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b *Term
		want bool
	}{
		{"equal ints", Int(1), Int(1), true},
		{"different ints", Int(1), Int(2), false},
		{"int vs float never equal", Int(1), Float(1.0), false},
		{"equal strings", String("a"), String("a"), true},
		{"equal lists", NewList(Int(1), Int(2)), NewList(Int(1), Int(2)), true},
		{"lists differ in length", NewList(Int(1)), NewList(Int(1), Int(2)), false},
		{"equal dictionaries", NewDictionary(map[Symbol]*Term{"x": Int(1)}), NewDictionary(map[Symbol]*Term{"x": Int(1)}), true},
		{"dictionaries differ in value", NewDictionary(map[Symbol]*Term{"x": Int(1)}), NewDictionary(map[Symbol]*Term{"x": Int(2)}), false},
		{"variables by name", Var("x"), Var("x"), true},
		{"variables differ", Var("x"), Var("y"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", Print(c.a), Print(c.b), got, c.want)
			}
		})
	}
}

func TestListHasRestVar(t *testing.T) {
	rest := Symbol("rest")
	l := List{Items: []*Term{Int(1)}, RestVar: &rest}
	if !l.HasRestVar() {
		t.Fatal("expected HasRestVar to be true")
	}
	if (List{}).HasRestVar() {
		t.Fatal("expected HasRestVar to be false for a plain list")
	}
}

func TestDictionaryKeysSorted(t *testing.T) {
	d := Dictionary{Fields: map[Symbol]*Term{"z": Int(1), "a": Int(2), "m": Int(3)}}
	got := d.Keys()
	want := []Symbol{"a", "m", "z"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsSuperset(t *testing.T) {
	value := Dictionary{Fields: map[Symbol]*Term{"a": Int(1), "b": Int(2)}}
	requiredSubset := Dictionary{Fields: map[Symbol]*Term{"a": Int(1)}}
	requiredMismatch := Dictionary{Fields: map[Symbol]*Term{"a": Int(2)}}
	requiredExtra := Dictionary{Fields: map[Symbol]*Term{"a": Int(1), "c": Int(3)}}

	if !FieldsSuperset(value, requiredSubset) {
		t.Error("expected value to satisfy a subset of its own fields")
	}
	if FieldsSuperset(value, requiredMismatch) {
		t.Error("mismatched field value should not be a superset match")
	}
	if FieldsSuperset(value, requiredExtra) {
		t.Error("a required field absent from the value should fail")
	}
}

func TestGensymWildcardHint(t *testing.T) {
	// Gensym itself lives on kb.KB; this only exercises the wildcard symbol
	// constant it special-cases.
	if Wildcard != "_" {
		t.Fatalf("Wildcard = %q, want \"_\"", Wildcard)
	}
}

func TestIsReserved(t *testing.T) {
	for _, name := range []Symbol{SymActor, SymResource} {
		if !IsReserved(name) {
			t.Errorf("IsReserved(%s) = false, want true", name)
		}
	}
	if IsReserved("User") {
		t.Error("IsReserved(User) = true, want false")
	}
}

func TestPrintRuleHead(t *testing.T) {
	params := []Parameter{
		{Parameter: Var("actor")},
		{Parameter: Var("resource"), Specializer: NewInstancePattern(InstanceLiteral{Tag: "Repository"})},
	}
	got := PrintHead("has_permission", params)
	want := `has_permission(actor, resource: Repository{})`
	if got != want {
		t.Errorf("PrintHead = %q, want %q", got, want)
	}
}

func TestVisitFindsSourceID(t *testing.T) {
	id := uint64(42)
	inner := Int(1)
	inner.SourceID = &id
	wrapped := NewList(inner)

	got, ok := FindSourceID(wrapped)
	if !ok || got != id {
		t.Fatalf("FindSourceID = (%v, %v), want (%v, true)", got, ok, id)
	}
}
