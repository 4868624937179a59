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
	"sync"

	"github.com/osohq/polar-kb/pkg/resources"
	"github.com/osohq/polar-kb/pkg/ruletypes"
	"github.com/osohq/polar-kb/pkg/term"
)

// KB is a single policy knowledge base: the id allocators, source registry,
// constant table, rule store, rule-type store, and resource blocks loaded
// into it so far. A zero KB is not usable; construct one with New.
//
// All exported methods take the internal lock themselves, so a *KB is safe
// for concurrent use by multiple goroutines (spec §5).
type KB struct {
	mu sync.RWMutex

	ids    *idCounter
	gensym *idCounter

	sources   *sourceRegistry
	constants *constantTable
	unions    *unionTable
	rules     *ruleStore
	ruleTypes *ruletypes.Store
	resources *resources.Store

	inlineQueries []*term.Term

	// loaded is set once DiagnosticLoad/Load finishes a batch (empty or
	// not) without any error diagnostic, enforcing the single-batch-load guard
	// (spec §4.6, testable property 6).
	loaded bool
}

// New returns an empty knowledge base with its built-in constants
// registered (spec §12.1).
func New() *KB {
	k := &KB{
		ids:       &idCounter{},
		gensym:    &idCounter{},
		sources:   newSourceRegistry(),
		constants: newConstantTable(),
		unions:    newUnionTable(),
		rules:     newRuleStore(),
		ruleTypes: ruletypes.NewStore(),
		resources: resources.NewStore(),
	}
	k.registerBuiltins()
	return k
}

// AddInlineQuery parks a query parsed alongside a file's rules for later
// execution by the host, the way polar-core defers `?= ...;` lines rather
// than running them during load (SPEC_FULL.md §12.5).
func (k *KB) AddInlineQuery(q *term.Term) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.inlineQueries = append(k.inlineQueries, q)
}

// InlineQueries returns every parked inline query, in the order they were
// added.
func (k *KB) InlineQueries() []*term.Term {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]*term.Term, len(k.inlineQueries))
	copy(out, k.inlineQueries)
	return out
}

// RuleTypes returns the rule-type store, for callers that need to inspect
// registered shapes directly (e.g. tooling that lists required rules).
func (k *KB) RuleTypes() *ruletypes.Store {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.ruleTypes
}

// ClearRules resets everything a fresh load must start clean from — rules,
// rule types, sources, resource blocks, inline queries, and union
// membership — while leaving registered constants and MROs untouched
// (spec §4.3). It is idempotent: calling it on an already-empty KB is a
// no-op (testable property 5).
func (k *KB) ClearRules() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.clearRulesLocked()
}
