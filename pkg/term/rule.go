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

// Rule is a single concrete implementation of a named predicate: a head
// (Name plus an ordered Params list, each optionally specialized) and a
// conjunctive/disjunctive Body expression.
//
// Equality of two Rules is defined by source position, not structural
// content — two syntactically identical rules loaded from two different
// source locations are distinct rules. ID carries that identity once the
// rule has been added to a knowledge base (see pkg/kb); it is the zero
// value until then.
type Rule struct {
	ID       uint64
	Name     Symbol
	Params   []Parameter
	Body     *Term
	SourceID *uint64
}

// Arity returns the number of parameters in the rule's head.
func (r *Rule) Arity() int {
	return len(r.Params)
}
