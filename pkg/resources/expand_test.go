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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osohq/polar-kb/pkg/term"
)

// fakeResolver is a minimal ruletypes.ClassResolver used to exercise Expand
// without depending on pkg/kb (which itself depends on pkg/resources).
type fakeResolver struct {
	constants map[term.Symbol]bool
}

func (f *fakeResolver) IsConstant(name term.Symbol) bool { return f.constants[name] }
func (f *fakeResolver) RegisteredClassInstanceID(term.Symbol) (uint64, bool) { return 0, false }
func (f *fakeResolver) MRO(term.Symbol) ([]uint64, bool)                     { return nil, false }
func (f *fakeResolver) IsUnion(name term.Symbol) bool {
	return name == term.SymActor || name == term.SymResource
}
func (f *fakeResolver) UnionMembers(term.Symbol) []term.Symbol { return nil }

func newFakeResolver(classes ...term.Symbol) *fakeResolver {
	m := map[term.Symbol]bool{}
	for _, c := range classes {
		m[c] = true
	}
	return &fakeResolver{constants: m}
}

func onPtr(s term.Symbol) *term.Symbol { return &s }

// TestExpand_RelationGeneratesAdvisoryShape exercises spec §4.5 point 1:
// every declared relation gets an advisory has_relation shape.
func TestExpand_RelationGeneratesAdvisoryShape(t *testing.T) {
	s := NewStore()
	s.Add(&Block{
		Kind:      ResourceBlock,
		Tag:       "Issue",
		Relations: map[term.Symbol]term.Symbol{"repo": "Repository"},
	})

	ex := Expand(s, newFakeResolver("Repository"))
	assert.Empty(t, ex.Diagnostics)
	assert.Len(t, ex.Shapes, 1)
	assert.Equal(t, term.SymHasRelation, ex.Shapes[0].Name)
	assert.False(t, ex.Shapes[0].Required)
}

// TestExpand_UnregisteredRelationClass exercises spec §4.5's check that
// every relation target class is a registered constant.
func TestExpand_UnregisteredRelationClass(t *testing.T) {
	s := NewStore()
	s.Add(&Block{
		Kind:      ResourceBlock,
		Tag:       "Issue",
		Relations: map[term.Symbol]term.Symbol{"repo": "Repository"},
	})

	ex := Expand(s, newFakeResolver() /* Repository never registered */)
	assert.True(t, ex.Diagnostics.HasErrors())
	assert.Equal(t, "UnregisteredClass", string(ex.Diagnostics[0].Kind))
	assert.Empty(t, ex.Shapes)
}

// TestExpand_ShorthandWithoutOn exercises the direct-object shorthand form
// `"p" if "q";`.
func TestExpand_ShorthandWithoutOn(t *testing.T) {
	s := NewStore()
	s.Add(&Block{
		Kind:        ResourceBlock,
		Tag:         "Repository",
		Permissions: []term.Symbol{"read", "push"},
		Roles:       []term.Symbol{"maintainer"},
		Shorthands: []ShorthandRule{
			{Implier: "push", Implied: "maintainer"},
		},
	})

	ex := Expand(s, newFakeResolver("Repository"))
	assert.Len(t, ex.Rules, 1)
	rule := ex.Rules[0]
	assert.Equal(t, term.SymHasPermission, rule.Name)
	assert.Equal(t, "push", string(rule.Params[1].Parameter.Value.(term.Str)))

	body, ok := rule.Body.Value.(term.Call)
	assert.True(t, ok)
	assert.Equal(t, term.SymHasRole, body.Name)
	assert.Equal(t, "maintainer", string(body.Args[1].Value.(term.Str)))
}

// TestExpand_ShorthandOnRelation exercises the `"p" if "q" on "rel";` form
// and its required has_relation shape (spec §4.5 point 2).
func TestExpand_ShorthandOnRelation(t *testing.T) {
	s := NewStore()
	s.Add(&Block{
		Kind:      ResourceBlock,
		Tag:       "Issue",
		Relations: map[term.Symbol]term.Symbol{"repo": "Repository"},
		Shorthands: []ShorthandRule{
			{Implier: "write", Implied: "owner", On: onPtr("repo")},
		},
	})

	ex := Expand(s, newFakeResolver("Repository"))
	assert.Len(t, ex.Rules, 1)

	var required []string
	for _, shape := range ex.Shapes {
		if shape.Required {
			required = append(required, string(shape.Name))
		}
	}
	assert.Contains(t, required, "has_relation")

	body, ok := ex.Rules[0].Body.Value.(term.Expression)
	assert.True(t, ok)
	assert.Equal(t, term.OpAnd, body.Operator)
	assert.Len(t, body.Args, 2)
}

// TestExpand_RoleDeclarationRequiresHasRole exercises spec §4.5 point 3.
func TestExpand_RoleDeclarationRequiresHasRole(t *testing.T) {
	s := NewStore()
	s.Add(&Block{Kind: ResourceBlock, Tag: "Repository", Roles: []term.Symbol{"owner"}})

	ex := Expand(s, newFakeResolver("Repository"))
	found := false
	for _, shape := range ex.Shapes {
		if shape.Name == term.SymHasRole {
			found = true
			assert.True(t, shape.Required)
		}
	}
	assert.True(t, found, "expected a required has_role shape")
}

func TestStoreByTag(t *testing.T) {
	s := NewStore()
	s.Add(&Block{Tag: "Repository"})
	s.Add(&Block{Tag: "Issue"})
	byTag := s.byTag()
	assert.Len(t, byTag, 2)
	assert.NotNil(t, byTag["Repository"])
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Add(&Block{Tag: "Repository"})
	s.Clear()
	assert.Empty(t, s.Blocks)
}
