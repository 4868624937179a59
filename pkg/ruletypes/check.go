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

	"github.com/osohq/polar-kb/pkg/diagnostic"
	"github.com/osohq/polar-kb/pkg/term"
)

// checkParam implements spec §4.4.1's truth table: does ruleParam conform to
// typeParam at the given 1-based-when-printed index? ok is true on a match;
// reason explains a mismatch using surface syntax, never internal
// representation (spec §4.4.6).
func checkParam(resolver ClassResolver, index int, ruleParam, typeParam term.Parameter) (ok bool, reason string) {
	tName, tIsVar := typeParam.Name()
	rName, rIsVar := ruleParam.Name()

	switch {
	case typeParam.Specializer == nil:
		// var, no specializer: unconstrained type. Matches anything,
		// including a rule-side value parameter (rule-head constant literal
		// form, per the table's "value V_T / none" row collapsed here since
		// an unconstrained type parameter never inspects R at all).
		if tIsVar {
			return true, ""
		}
		// T parameter itself is a bare value (T's "parameter" position holds
		// a literal, not a variable) with no specializer: rule side must
		// hold an equal value.
		if rIsVar {
			return false, fmt.Sprintf("%s: rule type expects a literal value, but the rule has a variable", diagnostic.ParamIndex(index))
		}
		return checkValue(index, ruleParam.Parameter, typeParam.Parameter)

	case !tIsVar:
		// Unreachable combination under a well-formed rule type: a value
		// parameter would not also carry a pattern/value specializer.
		return false, fmt.Sprintf("%s: malformed rule type parameter", diagnostic.ParamIndex(index))

	default:
		// var with a specializer on the type side.
		tPattern, tIsPattern := typeParam.Specializer.Value.(term.Pattern)
		if !rIsVar {
			return false, fmt.Sprintf("%s: rule type expected a variable parameter", diagnostic.ParamIndex(index))
		}
		if ruleParam.Specializer == nil {
			if tIsPattern && tPattern.Kind == term.PatternInstanceKind {
				return false, fmt.Sprintf("%s: parameter expects a `%s` type constraint", diagnostic.ParamIndex(index), tPattern.Instance.Tag)
			}
			return false, fmt.Sprintf("%s: rule type expected a specializer", diagnostic.ParamIndex(index))
		}

		rPattern, rIsPattern := ruleParam.Specializer.Value.(term.Pattern)
		switch {
		case tIsPattern && rIsPattern:
			return checkPattern(resolver, index, rPattern, tPattern)
		case tIsPattern && !rIsPattern:
			// Rule side carries a bare value specializer; promote it to a
			// synthetic instance pattern and recurse (spec §4.4.1 promotion
			// table).
			promoted, err := promoteValueToPattern(ruleParam.Specializer)
			if err != nil {
				return false, fmt.Sprintf("%s: %v", diagnostic.ParamIndex(index), err)
			}
			return checkPattern(resolver, index, *promoted, tPattern)
		default:
			// Both sides are bare values.
			return checkValue(index, ruleParam.Specializer, typeParam.Specializer)
		}
	}
}

// promoteValueToPattern implements spec §4.4.1's value-to-synthetic-instance
// promotion table.
func promoteValueToPattern(v *term.Term) (*term.Pattern, error) {
	var lit term.InstanceLiteral
	switch val := v.Value.(type) {
	case term.Str:
		lit = term.InstanceLiteral{Tag: term.TagString}
	case term.Number:
		if val.IsFloat {
			lit = term.InstanceLiteral{Tag: term.TagFloat}
		} else {
			lit = term.InstanceLiteral{Tag: term.TagInteger}
		}
	case term.Boolean:
		lit = term.InstanceLiteral{Tag: term.TagBoolean}
	case term.List:
		lit = term.InstanceLiteral{Tag: term.TagList}
	case term.Dictionary:
		lit = term.InstanceLiteral{Tag: term.TagDictionary, Fields: val}
	default:
		return nil, fmt.Errorf("internal error: cannot promote %T to an instance pattern", v.Value)
	}
	return &term.Pattern{Kind: term.PatternInstanceKind, Instance: &lit}, nil
}

// checkPattern implements spec §4.4.2.
func checkPattern(resolver ClassResolver, index int, ruleSide, typeSide term.Pattern) (bool, string) {
	switch {
	case ruleSide.Kind == term.PatternInstanceKind && typeSide.Kind == term.PatternInstanceKind:
		return checkInstanceVsInstance(resolver, index, *ruleSide.Instance, *typeSide.Instance)

	case ruleSide.Kind == term.PatternDictionaryKind && typeSide.Kind == term.PatternDictionaryKind:
		if term.FieldsSuperset(*ruleSide.Dict, *typeSide.Dict) {
			return true, ""
		}
		return false, fieldMismatch(index, *ruleSide.Dict, *typeSide.Dict)

	case ruleSide.Kind == term.PatternInstanceKind && typeSide.Kind == term.PatternDictionaryKind:
		if term.FieldsSuperset(ruleSide.Instance.Fields, *typeSide.Dict) {
			return true, ""
		}
		return false, fieldMismatch(index, ruleSide.Instance.Fields, *typeSide.Dict)

	case ruleSide.Kind == term.PatternDictionaryKind && typeSide.Kind == term.PatternInstanceKind &&
		typeSide.Instance.Tag == term.TagDictionary:
		if term.FieldsSuperset(*ruleSide.Dict, typeSide.Instance.Fields) {
			return true, ""
		}
		return false, fieldMismatch(index, *ruleSide.Dict, typeSide.Instance.Fields)

	default:
		return false, fmt.Sprintf("%s: expected %s, got %s", diagnostic.ParamIndex(index),
			term.Print(term.New(typeSide)), term.Print(term.New(ruleSide)))
	}
}

func fieldMismatch(index int, r, t term.Dictionary) string {
	return fmt.Sprintf("%s: expected fields %s, but got %s", diagnostic.ParamIndex(index),
		term.Print(term.New(t)), term.Print(term.New(r)))
}

// checkInstanceVsInstance implements spec §4.4.2 case 1.
func checkInstanceVsInstance(resolver ClassResolver, index int, ruleSide, typeSide term.InstanceLiteral) (bool, string) {
	if ruleSide.Tag == typeSide.Tag {
		if term.FieldsSuperset(ruleSide.Fields, typeSide.Fields) {
			return true, ""
		}
		return false, fieldMismatch(index, ruleSide.Fields, typeSide.Fields)
	}

	if resolver.IsUnion(typeSide.Tag) {
		if resolver.IsUnion(ruleSide.Tag) {
			// Two distinct unions never match.
			return false, fmt.Sprintf("%s: %s is not the %s union", diagnostic.ParamIndex(index), ruleSide.Tag, typeSide.Tag)
		}
		if !unionContainsSubclass(resolver, typeSide.Tag, ruleSide.Tag) {
			reason := fmt.Sprintf("%s: %s is not a member of the %s union", diagnostic.ParamIndex(index), ruleSide.Tag, typeSide.Tag)
			if hint := unionHint(typeSide.Tag, ruleSide.Tag); hint != "" {
				reason += "\n" + hint
			}
			return false, reason
		}
		if term.FieldsSuperset(ruleSide.Fields, typeSide.Fields) {
			return true, ""
		}
		return false, fieldMismatch(index, ruleSide.Fields, typeSide.Fields)
	}

	ok, err := isSubclass(resolver, ruleSide.Tag, typeSide.Tag)
	if err != nil {
		return false, fmt.Sprintf("%s: %v", diagnostic.ParamIndex(index), err)
	}
	if !ok {
		return false, fmt.Sprintf("%s: %s is not a subclass of %s", diagnostic.ParamIndex(index), ruleSide.Tag, typeSide.Tag)
	}
	if term.FieldsSuperset(ruleSide.Fields, typeSide.Fields) {
		return true, ""
	}
	return false, fieldMismatch(index, ruleSide.Fields, typeSide.Fields)
}

// unionContainsSubclass reports whether ruleTag is a direct member of the
// union named unionName, or a subclass of some member (spec §4.4.2).
func unionContainsSubclass(resolver ClassResolver, unionName, ruleTag term.Symbol) bool {
	members := resolver.UnionMembers(unionName)
	if classSet(members).Has(ruleTag) {
		return true
	}
	for _, member := range members {
		if ok, _ := isSubclass(resolver, ruleTag, member); ok {
			return true
		}
	}
	return false
}

// unionHint renders the "Perhaps you meant to add a block" suggestion
// attached to Actor/Resource union mismatches (spec §4.4.2, S5).
func unionHint(unionName, ruleTag term.Symbol) string {
	switch unionName {
	case term.SymActor:
		return fmt.Sprintf("Perhaps you meant to add an actor block for %s, e.g. actor %s {}", ruleTag, ruleTag)
	case term.SymResource:
		return fmt.Sprintf("Perhaps you meant to add a resource block for %s, e.g. resource %s {}", ruleTag, ruleTag)
	default:
		return ""
	}
}

// isSubclass implements spec §4.4.3.
func isSubclass(resolver ClassResolver, childTag, parentTag term.Symbol) (bool, error) {
	parentID, ok := resolver.RegisteredClassInstanceID(parentTag)
	if !ok {
		return false, fmt.Errorf("%s is not a registered class", parentTag)
	}
	mro, ok := resolver.MRO(childTag)
	if !ok {
		return false, fmt.Errorf("internal error: no MRO registered for %s", childTag)
	}
	for _, id := range mro {
		if id == parentID {
			return true, nil
		}
	}
	return false, nil
}

// checkValue implements spec §4.4.5.
func checkValue(index int, ruleVal, typeVal *term.Term) (bool, string) {
	if tl, ok := typeVal.Value.(term.List); ok {
		rl, ok := ruleVal.Value.(term.List)
		if !ok {
			return false, fmt.Sprintf("%s: expected a list matching %s, got %s", diagnostic.ParamIndex(index), term.Print(typeVal), term.Print(ruleVal))
		}
		if tl.HasRestVar() {
			return false, fmt.Sprintf("%s: rule types cannot contain a rest variable", diagnostic.ParamIndex(index))
		}
		// Deliberately order- and duplicate-insensitive: the rule's list
		// must be a superset (by membership) of the type's list. This is a
		// known-surprising contract preserved from the original system
		// (spec §9 "List superset semantics").
		for _, want := range tl.Items {
			found := false
			for _, have := range rl.Items {
				if term.Equal(want, have) {
					found = true
					break
				}
			}
			if !found {
				return false, fmt.Sprintf("%s: %s is missing element %s (list value matching is a superset check, ignoring order and duplicates)",
					diagnostic.ParamIndex(index), term.Print(ruleVal), term.Print(want))
			}
		}
		return true, ""
	}

	if td, ok := typeVal.Value.(term.Dictionary); ok {
		rd, ok := ruleVal.Value.(term.Dictionary)
		if !ok {
			return false, fmt.Sprintf("%s: expected a dictionary matching %s, got %s", diagnostic.ParamIndex(index), term.Print(typeVal), term.Print(ruleVal))
		}
		if term.FieldsSuperset(rd, td) {
			return true, ""
		}
		return false, fieldMismatch(index, rd, td)
	}

	if term.Equal(ruleVal, typeVal) {
		return true, ""
	}
	return false, fmt.Sprintf("%s: expected %s, got %s", diagnostic.ParamIndex(index), term.Print(typeVal), term.Print(ruleVal))
}
