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

// Package resources implements resource-block expansion: the compact
// declarative syntax for actors, resources, roles, permissions, relations,
// and shorthand rules (spec §4.5). Resource blocks are rewritten into
// ordinary rules and a set of auto-generated rule-type shapes before
// validation runs.
package resources

import "github.com/osohq/polar-kb/pkg/term"

// Kind distinguishes an actor block (`actor User { ... }`) from a resource
// block (`resource Repository { ... }`).
type Kind int

const (
	ActorBlock Kind = iota
	ResourceBlock
)

// ShorthandRule is one `"implier" if "implied";` or
// `"implier" if "implied" on "relation";` declaration inside a block.
type ShorthandRule struct {
	Implier  term.Symbol
	Implied  term.Symbol
	On       *term.Symbol
	SourceID *uint64
}

// Block is one `actor`/`resource` declaration: its class tag, the
// roles/permissions/relations it declares, and its shorthand rules.
type Block struct {
	Kind        Kind
	Tag         term.Symbol
	Roles       []term.Symbol
	Permissions []term.Symbol
	// Relations maps a relation name to the class tag of the resource it
	// relates to, e.g. Relations["repo"] == "Repository".
	Relations  map[term.Symbol]term.Symbol
	Shorthands []ShorthandRule
	SourceID   *uint64
}

func (b *Block) hasRole(name term.Symbol) bool {
	for _, r := range b.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func (b *Block) hasPermission(name term.Symbol) bool {
	for _, p := range b.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// kindOf classifies name as a role or a permission of b, defaulting to
// permission when it is declared as neither (shorthand rules are free to
// name permissions that are only ever referenced, never listed under
// `permissions = [...]`).
func (b *Block) kindOf(name term.Symbol) term.Symbol {
	if b.hasRole(name) {
		return term.SymHasRole
	}
	return term.SymHasPermission
}

// Store holds every resource block declared while loading a set of
// sources, in declaration order.
type Store struct {
	Blocks []*Block
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Add(b *Block) {
	s.Blocks = append(s.Blocks, b)
}

func (s *Store) Clear() {
	s.Blocks = nil
}

// byTag returns a lookup of every block by its class tag, for resolving
// whether a name crossing a relation boundary is itself a role, permission,
// or further relation on the related class (spec §4.5 point 2).
func (s *Store) byTag() map[term.Symbol]*Block {
	out := make(map[term.Symbol]*Block, len(s.Blocks))
	for _, b := range s.Blocks {
		out[b.Tag] = b
	}
	return out
}
