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

package kb

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/osohq/polar-kb/pkg/diagnostic"
	"github.com/osohq/polar-kb/pkg/resources"
	"github.com/osohq/polar-kb/pkg/term"
)

// AddResourceBlock registers b and declares its class tag as a member of
// the Actor or Resource union, mirroring what a resource block's `actor`
// or `resource` keyword means (spec §4.5). The block's shorthand rules
// and auto-generated shapes are not expanded until DiagnosticLoad (or
// ExpandResourceBlocks) runs, so that every block from a batch load is
// visible to every other block's relation lookups.
func (k *KB) AddResourceBlock(b *resources.Block) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.resources.Add(b)
	union := term.SymResource
	if b.Kind == resources.ActorBlock {
		union = term.SymActor
	}
	if s := k.unions.setFor(union); s != nil {
		s.Insert(b.Tag)
	}
}

// ExpandResourceBlocks rewrites every resource block added so far into
// concrete rules and rule-type shapes, adding both to the knowledge base
// and returning any diagnostics raised along the way (e.g.
// UnregisteredClass for a relation to a class nothing ever registered).
// DiagnosticLoad does not call it: it runs the same resources.Expand pass
// itself, so calling ExpandResourceBlocks and then DiagnosticLoad over the
// same blocks adds their rules and shapes twice.
func (k *KB) ExpandResourceBlocks() diagnostic.List {
	k.mu.Lock()
	defer k.mu.Unlock()
	ex := resources.Expand(k.resources, classResolverLocked{k})
	for _, r := range ex.Rules {
		k.addRuleLocked(r)
	}
	for _, shape := range ex.Shapes {
		k.ruleTypes.Add(shape)
	}
	return ex.Diagnostics
}

// classResolverLocked adapts KB to ruletypes.ClassResolver for callers that
// already hold k.mu, bypassing the exported methods' own locking.
type classResolverLocked struct{ k *KB }

func (r classResolverLocked) IsConstant(name term.Symbol) bool {
	_, ok := r.k.constants.byName[name]
	return ok
}

func (r classResolverLocked) RegisteredClassInstanceID(name term.Symbol) (uint64, bool) {
	return r.k.registeredClassInstanceIDLocked(name)
}

func (r classResolverLocked) MRO(name term.Symbol) ([]uint64, bool) {
	entry, ok := r.k.constants.byName[name]
	if !ok || !entry.hasMRO {
		return nil, false
	}
	return entry.mro, true
}

func (r classResolverLocked) IsUnion(name term.Symbol) bool {
	return name == term.SymActor || name == term.SymResource
}

func (r classResolverLocked) UnionMembers(name term.Symbol) []term.Symbol {
	s := r.k.unions.setFor(name)
	if s == nil {
		return nil
	}
	return sets.List(s)
}
