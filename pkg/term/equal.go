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

// Equal reports structural equality between two terms, ignoring incidental
// metadata (SourceID) — the same contract apimachinery's deep-equal helpers
// document for API objects: two terms that denote the same value are equal
// regardless of where either was parsed from.
func Equal(a, b *Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return valueEqual(a.Value, b.Value)
}

func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return false
		}
		if av.IsFloat != bv.IsFloat {
			return false
		}
		if av.IsFloat {
			return av.Float == bv.Float
		}
		return av.Int == bv.Int
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case Variable:
		bv, ok := b.(Variable)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		if av.HasRestVar() != bv.HasRestVar() {
			return false
		}
		if av.HasRestVar() && *av.RestVar != *bv.RestVar {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		bv, ok := b.(Dictionary)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for k, v := range av.Fields {
			ov, ok := bv.Fields[k]
			if !ok || !Equal(v, ov) {
				return false
			}
		}
		return true
	case Call:
		bv, ok := b.(Call)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case Expression:
		bv, ok := b.(Expression)
		if !ok || av.Operator != bv.Operator || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case Pattern:
		bv, ok := b.(Pattern)
		if !ok || av.Kind != bv.Kind {
			return false
		}
		if av.Kind == PatternInstanceKind {
			return instanceEqual(*av.Instance, *bv.Instance)
		}
		return valueEqual(*av.Dict, *bv.Dict)
	case ExternalInstance:
		bv, ok := b.(ExternalInstance)
		return ok && av.InstanceID == bv.InstanceID
	default:
		return false
	}
}

func instanceEqual(a, b InstanceLiteral) bool {
	if a.Tag != b.Tag {
		return false
	}
	return valueEqual(a.Fields, b.Fields)
}

// FieldsSuperset reports whether every key in t is present in r with a
// term-equal value (spec §4.4.2 fields_superset). Recursive matching of a
// field whose value is itself a pattern is an explicit open question in the
// spec (§9): today comparison is shallow term equality, not a recursive
// pattern match.
func FieldsSuperset(r, t Dictionary) bool {
	for k, tv := range t.Fields {
		rv, ok := r.Fields[k]
		if !ok || !Equal(rv, tv) {
			return false
		}
	}
	return true
}
