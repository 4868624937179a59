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
	"sort"

	"github.com/osohq/polar-kb/pkg/term"
)

// GenericRule groups every concrete Rule sharing a name, preserving the
// order rules were added in — the rule store must preserve per-name
// insertion order when iterated for dispatch (spec §5 "Ordering
// guarantees").
type GenericRule struct {
	Name  term.Symbol
	order []uint64
	byID  map[uint64]*term.Rule
}

func newGenericRule(name term.Symbol) *GenericRule {
	return &GenericRule{Name: name, byID: map[uint64]*term.Rule{}}
}

// addRule appends r (already assigned its ID) to g.
func (g *GenericRule) addRule(r *term.Rule) {
	if _, exists := g.byID[r.ID]; !exists {
		g.order = append(g.order, r.ID)
	}
	g.byID[r.ID] = r
}

// RemoveRule removes the rule with the given id, if present (SPEC_FULL.md
// §12.2, modeled on polar-core's targeted rule removal).
func (g *GenericRule) RemoveRule(id uint64) bool {
	if _, ok := g.byID[id]; !ok {
		return false
	}
	delete(g.byID, id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

// Rules returns the group's members in insertion order.
func (g *GenericRule) Rules() []*term.Rule {
	out := make([]*term.Rule, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.byID[id])
	}
	return out
}

type ruleStore struct {
	generics map[term.Symbol]*GenericRule
	order    []term.Symbol
}

func newRuleStore() *ruleStore {
	return &ruleStore{generics: map[term.Symbol]*GenericRule{}}
}

func (s *ruleStore) clear() {
	s.generics = map[term.Symbol]*GenericRule{}
	s.order = nil
}

// AddRule assigns rule a stable id and adds it to the knowledge base,
// grouped under its name (spec §4.3). The rule's Body and Params must
// already be fully formed; AddRule does not validate against rule types —
// that happens in DiagnosticLoad's validation step (ruletypes.Validate,
// spec §4.4).
func (k *KB) AddRule(rule *term.Rule) *term.Rule {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.addRuleLocked(rule)
}

func (k *KB) addRuleLocked(rule *term.Rule) *term.Rule {
	if rule.ID == 0 {
		rule.ID = k.NewID()
	}
	g, ok := k.rules.generics[rule.Name]
	if !ok {
		g = newGenericRule(rule.Name)
		k.rules.generics[rule.Name] = g
		k.rules.order = append(k.rules.order, rule.Name)
	}
	g.addRule(rule)
	return rule
}

// GetGenericRule returns the named group of rules, if any exist.
func (k *KB) GetGenericRule(name term.Symbol) (*GenericRule, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	g, ok := k.rules.generics[name]
	return g, ok
}

// GetRules returns a snapshot of every generic rule in the store, keyed by
// name.
func (k *KB) GetRules() map[term.Symbol]*GenericRule {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make(map[term.Symbol]*GenericRule, len(k.rules.generics))
	for name, g := range k.rules.generics {
		out[name] = g
	}
	return out
}

// RulesByName returns a read-only view of every rule in the store, grouped
// by name and preserving per-name insertion order. This is the view
// pkg/ruletypes.Validate consumes, keeping that package free of any
// dependency on kb's storage types.
func (k *KB) RulesByName() map[term.Symbol][]*term.Rule {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make(map[term.Symbol][]*term.Rule, len(k.rules.generics))
	for name, g := range k.rules.generics {
		out[name] = g.Rules()
	}
	return out
}

// HasRules reports whether any rule has been added to the knowledge base.
func (k *KB) HasRules() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.hasRulesLocked()
}

func (k *KB) hasRulesLocked() bool {
	for _, g := range k.rules.generics {
		if len(g.order) > 0 {
			return true
		}
	}
	return false
}

// sortedNames returns the store's generic-rule names in a deterministic
// (sorted) order, for iteration that must not depend on map order. The
// validator sorts rule names with its own helper (pkg/ruletypes) and does
// not call this.
func (s *ruleStore) sortedNames() []term.Symbol {
	names := make([]term.Symbol, 0, len(s.generics))
	for name := range s.generics {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
