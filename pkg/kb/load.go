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
	"k8s.io/klog/v2"

	"github.com/osohq/polar-kb/pkg/diagnostic"
	"github.com/osohq/polar-kb/pkg/envflag"
	"github.com/osohq/polar-kb/pkg/resources"
	"github.com/osohq/polar-kb/pkg/ruletypes"
	"github.com/osohq/polar-kb/pkg/term"
)

// LineKind selects which of the four shapes a source's parsed Line takes
// (spec §4.6 step 1). Parsing itself is out of scope for the knowledge
// base; callers hand in already-parsed lines.
type LineKind int

const (
	LineRule LineKind = iota
	LineInlineQuery
	LineRuleType
	LineResourceBlock
)

// RuleTypeDecl is a parsed `type name(params) if body;` declaration,
// before it is checked and turned into a ruletypes.Shape. Body is the
// parsed conjunction following `if`; a bare `type foo(...);` with no `if`
// clause parses to a nil Body, which is always valid.
type RuleTypeDecl struct {
	Name     term.Symbol
	Params   []term.Parameter
	Required bool
	Body     *term.Term
}

// Line is one parsed statement from a source, in the order it appeared.
type Line struct {
	Kind LineKind

	Rule          *term.Rule
	Query         *term.Term
	RuleType      *RuleTypeDecl
	ResourceBlock *resources.Block
}

// ParsedSource pairs a registered Source with its parsed lines, in parse
// order (spec §4.6 step 1).
type ParsedSource struct {
	Source Source
	Lines  []Line
}

// DiagnosticLoad runs the full eight-step load protocol over parsed (spec
// §4.6) and returns every diagnostic produced, whether or not any of them
// is an error. Callers that want load to fail loudly on the first problem
// should use Load instead.
func (k *KB) DiagnosticLoad(parsed []ParsedSource) diagnostic.List {
	k.mu.Lock()
	defer k.mu.Unlock()

	var diags diagnostic.List

	// Step 1: register each source, ingest its lines in parse order.
	for _, ps := range parsed {
		sourceID, err := k.addSourceLocked(ps.Source)
		if err != nil {
			diags = diags.Add(err.(*KBError).toDiagnostic())
			continue
		}
		for _, line := range ps.Lines {
			diags = append(diags, k.ingestLineLocked(sourceID, line)...)
		}
	}

	// Step 2 & 4: rewrite shorthand rules and generate resource-specific
	// rule types.
	ex := resources.Expand(k.resources, classResolverLocked{k})
	for _, r := range ex.Rules {
		k.addRuleLocked(r)
	}
	for _, shape := range ex.Shapes {
		k.ruleTypes.Add(shape)
	}
	// Step 3: attach source context to ResourceBlock/UnregisteredClass
	// diagnostics raised by expansion. Expand's diagnostics already carry
	// whatever SourceID the originating block had; nothing further to
	// attach here.
	diags = append(diags, ex.Diagnostics...)

	// Step 5: an error anywhere so far means the batch is abandoned before
	// validation ever runs.
	if diags.HasErrors() {
		klog.V(2).InfoS("aborting load: errors before validation", "count", len(diags.Errors()))
		k.clearRulesLocked()
		return diags
	}

	// Step 6: run the rule-type validator.
	diags = append(diags, ruletypes.Validate(k.ruleTypes, k.rulesByNameLocked(), classResolverLocked{k})...)

	// Step 7: policy-level lints.
	diags = append(diags, k.lintLocked()...)

	// Step 8: clear rules if any error is now present.
	if diags.HasErrors() {
		klog.V(2).InfoS("aborting load: errors after validation", "count", len(diags.Errors()))
		k.clearRulesLocked()
		return diags
	}

	k.loaded = true
	return diags
}

// Load is the stricter variant: it refuses to run against a KB that
// already has rules loaded, and returns the first error diagnostic as a
// plain error instead of a full diagnostic list (spec §4.6, "the
// higher-level load variant").
func (k *KB) Load(parsed []ParsedSource) error {
	k.mu.RLock()
	alreadyLoaded := k.loaded || k.hasRulesLocked()
	k.mu.RUnlock()
	if alreadyLoaded {
		return fileLoadingError("a knowledge base may only be loaded once; call clear_rules first")
	}
	diags := k.DiagnosticLoad(parsed)
	if errs := diags.Errors(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (k *KB) ingestLineLocked(sourceID uint64, line Line) diagnostic.List {
	var diags diagnostic.List
	switch line.Kind {
	case LineRule:
		if line.Rule != nil {
			line.Rule.SourceID = &sourceID
			k.addRuleLocked(line.Rule)
		}
	case LineInlineQuery:
		if line.Query != nil {
			k.inlineQueries = append(k.inlineQueries, line.Query)
		}
	case LineRuleType:
		if line.RuleType == nil {
			break
		}
		if d := ruletypes.ValidateRuleTypeBody(line.RuleType.Body); d != nil {
			diags = diags.Add(d.WithLocation(sourceID, nil))
			break
		}
		k.ruleTypes.Add(&ruletypes.Shape{
			Name:     line.RuleType.Name,
			Params:   line.RuleType.Params,
			Required: line.RuleType.Required,
			SourceID: &sourceID,
		})
	case LineResourceBlock:
		if line.ResourceBlock != nil {
			line.ResourceBlock.SourceID = &sourceID
			k.resources.Add(line.ResourceBlock)
			union := term.SymResource
			if line.ResourceBlock.Kind == resources.ActorBlock {
				union = term.SymActor
			}
			if s := k.unions.setFor(union); s != nil {
				s.Insert(line.ResourceBlock.Tag)
			}
		}
	}
	return diags
}

func (k *KB) rulesByNameLocked() map[term.Symbol][]*term.Rule {
	out := make(map[term.Symbol][]*term.Rule, len(k.rules.generics))
	for name, g := range k.rules.generics {
		out[name] = g.Rules()
	}
	return out
}

func (k *KB) clearRulesLocked() {
	k.rules.clear()
	k.ruleTypes.Clear()
	k.sources.clear()
	k.resources.Clear()
	k.inlineQueries = nil
	k.unions = newUnionTable()
	k.loaded = false
}

// lintLocked runs the policy-level lints that are warnings, not hard
// validation failures (spec §4.6 step 7): no allow rule present, and
// has_permission/has_role used without any resource blocks declared.
func (k *KB) lintLocked() diagnostic.List {
	var diags diagnostic.List

	if !envflag.IgnoreNoAllowWarning() {
		if _, ok := k.rules.generics[term.SymAllow]; !ok {
			if _, ok := k.rules.generics[term.SymAllowField]; !ok {
				if _, ok := k.rules.generics[term.SymAllowRequest]; !ok {
					diags = diags.Add(diagnostic.NewWarning(diagnostic.KindResourceBlock,
						"your policy does not contain an allow rule, so no actors can do anything"))
				}
			}
		}
	}

	noBlocks := len(k.resources.Blocks) == 0
	if noBlocks {
		for _, name := range []term.Symbol{term.SymHasRole, term.SymHasPermission, term.SymHasRelation} {
			if _, ok := k.rules.generics[name]; ok {
				diags = diags.Add(diagnostic.NewWarning(diagnostic.KindResourceBlock,
					"%s is used, but no resource blocks are declared", name))
			}
		}
	}

	return diags
}
