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

package resources

import (
	"github.com/osohq/polar-kb/pkg/diagnostic"
	"github.com/osohq/polar-kb/pkg/ruletypes"
	"github.com/osohq/polar-kb/pkg/term"
)

// Expansion is the result of rewriting a set of resource blocks into
// ordinary rules and rule-type shapes (spec §4.5).
type Expansion struct {
	Rules       []*term.Rule
	Shapes      []*ruletypes.Shape
	Diagnostics diagnostic.List
}

// Expand rewrites every block in s into the concrete rules and rule-type
// shapes it implies, validating relation targets against resolver along
// the way. The exact rule bodies generated here are this package's own
// affair — the knowledge base only requires that they come out well-formed
// and that has_relation/has_role/has_permission calls line up with the
// shapes Expand also registers.
func Expand(s *Store, resolver ruletypes.ClassResolver) Expansion {
	var ex Expansion
	blocks := s.byTag()
	sawRole := false

	for _, b := range s.Blocks {
		for relName, relatedTag := range b.Relations {
			if !resolver.IsConstant(relatedTag) {
				ex.Diagnostics = ex.Diagnostics.Add(diagnostic.NewError(
					diagnostic.KindUnregisteredClass,
					"resource block %s declares a relation %q to unregistered class %s",
					b.Tag, relName, relatedTag,
				).WithLocation(sourceIDOr0(b.SourceID), nil))
				continue
			}
			ex.Shapes = append(ex.Shapes, &ruletypes.Shape{
				Name: term.SymHasRelation,
				Params: []term.Parameter{
					wildcardParam(b.Tag),
					stringParam(),
					wildcardParam(relatedTag),
				},
				SourceID: b.SourceID,
			})
		}
		if len(b.Roles) > 0 {
			sawRole = true
		}

		for _, sh := range b.Shorthands {
			rule, shapes := expandShorthand(b, sh, blocks)
			ex.Rules = append(ex.Rules, rule)
			ex.Shapes = append(ex.Shapes, shapes...)
		}
	}

	if sawRole {
		ex.Shapes = append(ex.Shapes, &ruletypes.Shape{
			Name: term.SymHasRole,
			Params: []term.Parameter{
				wildcardParam(term.SymActor),
				stringParam(),
				wildcardParam(term.SymResource),
			},
			Required: true,
		})
	}

	return ex
}

func sourceIDOr0(id *uint64) uint64 {
	if id == nil {
		return 0
	}
	return *id
}

func wildcardParam(tag term.Symbol) term.Parameter {
	return term.Parameter{
		Parameter:   term.Var(term.Wildcard),
		Specializer: term.NewInstancePattern(term.InstanceLiteral{Tag: tag}),
	}
}

// stringParam builds a wildcard parameter specialized on the built-in
// String tag, used for the role/permission-name position in generated
// shapes.
func stringParam() term.Parameter {
	return term.Parameter{
		Parameter:   term.Var(term.Wildcard),
		Specializer: term.NewInstancePattern(term.InstanceLiteral{Tag: term.TagString}),
	}
}

func predicateFor(kind term.Symbol) term.Symbol {
	if kind == term.SymHasRole {
		return term.SymHasRole
	}
	return term.SymHasPermission
}

// expandShorthand rewrites a single shorthand rule into its concrete rule
// and any required shapes it additionally pins down.
func expandShorthand(b *Block, sh ShorthandRule, blocks map[term.Symbol]*Block) (*term.Rule, []*ruletypes.Shape) {
	actor := term.Var("actor")
	resource := term.Var("resource")
	implierPred := predicateFor(b.kindOf(sh.Implier))

	if sh.On == nil {
		impliedPred := predicateFor(b.kindOf(sh.Implied))
		body := term.New(term.Call{
			Name: impliedPred,
			Args: []*term.Term{actor, term.String(string(sh.Implied)), resource},
		})
		rule := shorthandRule(implierPred, sh.Implier, actor, resource, body, sh.SourceID)

		var shapes []*ruletypes.Shape
		if relatedTag, ok := b.Relations[sh.Implier]; ok {
			shapes = append(shapes, &ruletypes.Shape{
				Name: term.SymHasRelation,
				Params: []term.Parameter{
					wildcardParam(b.Tag),
					stringParam(),
					wildcardParam(relatedTag),
				},
				Required: true,
				SourceID: sh.SourceID,
			})
		}
		return rule, shapes
	}

	relatedTag := b.Relations[*sh.On]
	related := term.Var("related")
	body := term.New(term.Expression{
		Operator: term.OpAnd,
		Args: []*term.Term{
			term.New(term.Call{
				Name: term.SymHasRelation,
				Args: []*term.Term{resource, term.String(string(*sh.On)), related},
			}),
			term.New(term.Call{
				Name: term.SymHasRelation,
				Args: []*term.Term{actor, term.String(string(sh.Implied)), related},
			}),
		},
	})
	rule := shorthandRule(implierPred, sh.Implier, actor, resource, body, sh.SourceID)

	shapes := []*ruletypes.Shape{{
		Name: term.SymHasRelation,
		Params: []term.Parameter{
			wildcardParam(term.SymActor),
			stringParam(),
			wildcardParam(relatedTag),
		},
		Required: true,
		SourceID: sh.SourceID,
	}}

	if related := blocks[relatedTag]; related != nil {
		if furtherTag, ok := related.Relations[sh.Implied]; ok {
			shapes = append(shapes, &ruletypes.Shape{
				Name: term.SymHasRelation,
				Params: []term.Parameter{
					wildcardParam(relatedTag),
					stringParam(),
					wildcardParam(furtherTag),
				},
				Required: true,
				SourceID: sh.SourceID,
			})
		}
	}
	return rule, shapes
}

func shorthandRule(predicate, name term.Symbol, actor, resource, body *term.Term, sourceID *uint64) *term.Rule {
	return &term.Rule{
		Name: predicate,
		Params: []term.Parameter{
			{Parameter: actor},
			{Parameter: term.String(string(name))},
			{Parameter: resource},
		},
		Body:     body,
		SourceID: sourceID,
	}
}
