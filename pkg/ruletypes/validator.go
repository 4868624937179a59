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
	"fmt"
	"sort"

	"github.com/osohq/polar-kb/pkg/diagnostic"
	"github.com/osohq/polar-kb/pkg/term"
)

// Validate runs the two-phase rule-type check described in spec §4.4 over
// every rule currently in the store. rules maps a generic rule's name to
// its member rules in insertion order (pkg/kb.KB.RulesByName provides this
// view without requiring ruletypes to import kb).
//
// Phase A (shape conformance) runs before Phase B (required implementations)
// so that missing-required errors surface deterministically regardless of
// how many rules of other names failed shape conformance.
func Validate(store *Store, rules map[term.Symbol][]*term.Rule, resolver ClassResolver) diagnostic.List {
	var diags diagnostic.List
	diags = append(diags, phaseA(store, rules, resolver)...)
	diags = append(diags, phaseB(store, rules, resolver)...)
	return diags
}

// phaseA is spec §4.4 Phase A: every rule under a name that has at least one
// declared shape must match at least one of them.
func phaseA(store *Store, rules map[term.Symbol][]*term.Rule, resolver ClassResolver) diagnostic.List {
	var diags diagnostic.List
	for _, name := range sortedNames(rules) {
		shapes := store.ShapesFor(name)
		if len(shapes) == 0 {
			continue
		}
		for _, rule := range rules[name] {
			if d := matchAnyShape(resolver, rule, shapes); d != nil {
				diags = diags.Add(d)
			}
		}
	}
	return diags
}

// matchAnyShape reports an InvalidRule diagnostic if rule matches none of
// shapes, accumulating a failure reason from every shape it tried (spec
// §4.4 "accumulating all is preferred").
func matchAnyShape(resolver ClassResolver, rule *term.Rule, shapes []*Shape) *diagnostic.Diagnostic {
	var reasons []string
	for _, shape := range shapes {
		ok, reason := matchesShape(resolver, rule, shape)
		if ok {
			return nil
		}
		reasons = append(reasons, fmt.Sprintf("%s\n    Failed to match because: %s", term.PrintHead(shape.Name, shape.Params), reason))
	}
	msg := "Must match one of the following rule types:\n\n"
	for i, r := range reasons {
		if i > 0 {
			msg += "\n\n"
		}
		msg += r
	}
	d := diagnostic.NewError(diagnostic.KindInvalidRule, "%s", msg)
	if id, ok := term.RuleSourceID(rule); ok {
		d = d.WithLocation(id, nil)
	}
	return d
}

// matchesShape reports whether rule's head is compatible with shape: arity
// must match, and every corresponding parameter pair must match under
// checkParam (spec §4.4).
func matchesShape(resolver ClassResolver, rule *term.Rule, shape *Shape) (bool, string) {
	if rule.Arity() != shape.Arity() {
		return false, fmt.Sprintf("expected %d parameters, got %d", shape.Arity(), rule.Arity())
	}
	for i := range shape.Params {
		if ok, reason := checkParam(resolver, i, rule.Params[i], shape.Params[i]); !ok {
			return false, reason
		}
	}
	return true, ""
}

// phaseB is spec §4.4 Phase B: every required shape must have at least one
// matching implementation.
func phaseB(store *Store, rules map[term.Symbol][]*term.Rule, resolver ClassResolver) diagnostic.List {
	var diags diagnostic.List
	for _, shape := range store.RequiredShapes() {
		matched := false
		for _, rule := range rules[shape.Name] {
			if ok, _ := matchesShape(resolver, rule, shape); ok {
				matched = true
				break
			}
		}
		if !matched {
			msg := fmt.Sprintf("Missing implementation for required rule %s", term.PrintHead(shape.Name, shape.Params))
			d := diagnostic.NewError(diagnostic.KindMissingRequiredRule, "%s", msg)
			if shape.SourceID != nil {
				d = d.WithLocation(*shape.SourceID, nil)
			}
			diags = diags.Add(d)
		}
	}
	return diags
}

func sortedNames(rules map[term.Symbol][]*term.Rule) []term.Symbol {
	names := make([]term.Symbol, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
