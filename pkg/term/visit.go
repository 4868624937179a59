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

// Visit performs a pre-order traversal of t and its children, calling fn on
// each node in turn. fn returns true to stop the traversal early. Visit is
// generic over the full Value variant set so callers never need to special-
// case a particular container the way a hand-written "walk this list, walk
// that dict" function would.
func Visit(t *Term, fn func(*Term) bool) bool {
	if t == nil {
		return false
	}
	if fn(t) {
		return true
	}
	switch v := t.Value.(type) {
	case List:
		for _, item := range v.Items {
			if Visit(item, fn) {
				return true
			}
		}
	case Dictionary:
		for _, k := range v.Keys() {
			if Visit(v.Fields[k], fn) {
				return true
			}
		}
	case Call:
		for _, a := range v.Args {
			if Visit(a, fn) {
				return true
			}
		}
	case Expression:
		for _, a := range v.Args {
			if Visit(a, fn) {
				return true
			}
		}
	case Pattern:
		if v.Kind == PatternInstanceKind && v.Instance != nil {
			if Visit(New(v.Instance.Fields), fn) {
				return true
			}
		} else if v.Dict != nil {
			if Visit(New(*v.Dict), fn) {
				return true
			}
		}
	case ExternalInstance:
		if v.Constructor != nil {
			if Visit(v.Constructor, fn) {
				return true
			}
		}
	}
	return false
}

// FindSourceID returns the SourceID of the first node (pre-order, self
// first) in t's tree that carries one. This is the mechanism diagnostics
// use to attach source context to an error about a compound structure (a
// rule, a resource block) without every intermediate constructor having to
// thread a source ID through by hand.
func FindSourceID(t *Term) (uint64, bool) {
	var found *uint64
	Visit(t, func(n *Term) bool {
		if n.SourceID != nil {
			found = n.SourceID
			return true
		}
		return false
	})
	if found == nil {
		return 0, false
	}
	return *found, true
}

// RuleSourceID resolves a source ID for a rule by checking the rule's own
// SourceID first, then falling back to a pre-order walk of its parameters'
// specializers and then its body. The parameter terms themselves are not
// searched.
func RuleSourceID(r *Rule) (uint64, bool) {
	if r.SourceID != nil {
		return *r.SourceID, true
	}
	for _, p := range r.Params {
		if p.Specializer != nil {
			if id, ok := FindSourceID(p.Specializer); ok {
				return id, true
			}
		}
	}
	if id, ok := FindSourceID(r.Body); ok {
		return id, true
	}
	return 0, false
}
