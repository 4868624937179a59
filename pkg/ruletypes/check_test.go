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

	"github.com/osohq/polar-kb/pkg/term"
)

// TestCheckValue_ListSupersetByMembership documents and locks in the
// deliberately surprising list-matching contract (spec §9): the rule's
// list value only needs to contain every element the rule type's list
// names, ignoring order and duplicates — it is not an exact match, and
// extra unmentioned elements on the rule side never cause a failure.
func TestCheckValue_ListSupersetByMembership(t *testing.T) {
	typeList := term.NewList(term.String("read"), term.String("write"))

	ruleSameOrder := term.NewList(term.String("read"), term.String("write"))
	if ok, reason := checkValue(0, ruleSameOrder, typeList); !ok {
		t.Fatalf("expected exact-order list to match, got reason: %s", reason)
	}

	ruleReordered := term.NewList(term.String("write"), term.String("read"))
	if ok, reason := checkValue(0, ruleReordered, typeList); !ok {
		t.Fatalf("expected reordered list to still match by membership, got reason: %s", reason)
	}

	ruleWithExtra := term.NewList(term.String("read"), term.String("write"), term.String("admin"))
	if ok, reason := checkValue(0, ruleWithExtra, typeList); !ok {
		t.Fatalf("expected extra elements to be tolerated, got reason: %s", reason)
	}

	ruleMissingOne := term.NewList(term.String("read"))
	if ok, _ := checkValue(0, ruleMissingOne, typeList); ok {
		t.Fatal("expected a list missing a required element to fail")
	}
}

func TestCheckValue_RestVarRejectedOnTypeSide(t *testing.T) {
	rest := term.Symbol("rest")
	typeList := term.New(term.List{Items: []*term.Term{term.String("read")}, RestVar: &rest})
	ok, reason := checkValue(0, term.NewList(term.String("read")), typeList)
	if ok {
		t.Fatal("expected a rest-var rule type list to be rejected")
	}
	if reason == "" {
		t.Fatal("expected a reason explaining the rejection")
	}
}

func TestPromoteValueToPattern(t *testing.T) {
	cases := []struct {
		name string
		v    *term.Term
		tag  term.Symbol
	}{
		{"string", term.String("x"), term.TagString},
		{"int", term.Int(1), term.TagInteger},
		{"float", term.Float(1.5), term.TagFloat},
		{"bool", term.Bool(true), term.TagBoolean},
		{"list", term.NewList(), term.TagList},
		{"dict", term.NewDictionary(nil), term.TagDictionary},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := promoteValueToPattern(c.v)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Kind != term.PatternInstanceKind || p.Instance.Tag != c.tag {
				t.Fatalf("promoted to tag %v, want %v", p.Instance.Tag, c.tag)
			}
		})
	}
}

func TestIsSubclass(t *testing.T) {
	resolver := newFakeResolver()
	resolver.registerClass("Animal", 1, nil)
	resolver.registerClass("Dog", 2, []uint64{2, 1})

	ok, err := isSubclass(resolver, "Dog", "Animal")
	if err != nil || !ok {
		t.Fatalf("expected Dog to be a subclass of Animal, got ok=%v err=%v", ok, err)
	}

	ok, err = isSubclass(resolver, "Animal", "Dog")
	if err != nil || ok {
		t.Fatalf("expected Animal not to be a subclass of Dog, got ok=%v err=%v", ok, err)
	}

	_, err = isSubclass(resolver, "Cat", "Animal")
	if err == nil {
		t.Fatal("expected an error for a class with no registered MRO")
	}
}
