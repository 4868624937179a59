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
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/osohq/polar-kb/pkg/term"
)

// constantEntry is one registered name→term binding, plus the bookkeeping
// the rule-type validator needs: the external instance id for a class-
// tagged constant, and its MRO once registered (spec §3 "Constant table").
type constantEntry struct {
	value      *term.Term
	instanceID uint64
	hasID      bool
	mro        []uint64
	hasMRO     bool
}

type constantTable struct {
	byName map[term.Symbol]*constantEntry
}

func newConstantTable() *constantTable {
	return &constantTable{byName: map[term.Symbol]*constantEntry{}}
}

// RegisterConstant registers name as a host-supplied global. The reserved
// union names Actor and Resource can never be registered (spec §4.4.4,
// testable property 3).
func (k *KB) RegisterConstant(name term.Symbol, value *term.Term) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if term.IsReserved(name) {
		return typeError(fmt.Sprintf("%s is a reserved name and denotes a union; it cannot be registered as a constant", name))
	}
	entry := &constantEntry{value: value}
	if ext, ok := value.Value.(term.ExternalInstance); ok {
		entry.instanceID = ext.InstanceID
		entry.hasID = true
	}
	k.constants.byName[name] = entry
	return nil
}

// AddMRO records the method-resolution order for a previously registered
// class. Spec testable property 4: this succeeds only if is_constant(name).
func (k *KB) AddMRO(name term.Symbol, mro []uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.constants.byName[name]
	if !ok {
		return typeError(fmt.Sprintf("cannot register an MRO for %s: it is not a registered constant", name))
	}
	entry.mro = append([]uint64(nil), mro...)
	entry.hasMRO = true
	return nil
}

// IsConstant reports whether name is registered.
func (k *KB) IsConstant(name term.Symbol) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.constants.byName[name]
	return ok
}

// GetRegisteredConstants returns a snapshot of every registered name→term
// binding.
func (k *KB) GetRegisteredConstants() map[term.Symbol]*term.Term {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make(map[term.Symbol]*term.Term, len(k.constants.byName))
	for name, entry := range k.constants.byName {
		out[name] = entry.value
	}
	return out
}

// GetRegisteredClass resolves name to a class's external instance id. ok is
// false if name is unregistered, or registered to something other than an
// external instance.
func (k *KB) GetRegisteredClass(name term.Symbol) (id uint64, ok bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.registeredClassInstanceIDLocked(name)
}

// RegisteredClassInstanceID implements ruletypes.ClassResolver.
func (k *KB) RegisteredClassInstanceID(name term.Symbol) (uint64, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.registeredClassInstanceIDLocked(name)
}

func (k *KB) registeredClassInstanceIDLocked(name term.Symbol) (uint64, bool) {
	entry, ok := k.constants.byName[name]
	if !ok || !entry.hasID {
		return 0, false
	}
	return entry.instanceID, true
}

// MRO implements ruletypes.ClassResolver: it returns the registered MRO for
// name. ok is false only if no MRO was ever registered for name — spec
// §4.4.3's InvalidState case, surfaced to the validator as a failed lookup
// rather than a panic.
func (k *KB) MRO(name term.Symbol) ([]uint64, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	entry, ok := k.constants.byName[name]
	if !ok || !entry.hasMRO {
		return nil, false
	}
	return entry.mro, true
}

// registerBuiltins seeds the constant table with the built-in classes used
// as synthetic instance tags when promoting a rule-side value specializer
// (spec §4.4.1's promotion table; SPEC_FULL.md §12.1). Each gets its own
// fresh external instance id and a trivial self-only MRO, the way
// polar-core's KnowledgeBase::default bootstraps its builtins rather than
// registering them lazily on first use.
func (k *KB) registerBuiltins() {
	for _, tag := range []term.Symbol{term.TagString, term.TagInteger, term.TagFloat, term.TagBoolean, term.TagList, term.TagDictionary} {
		id := k.NewID()
		k.constants.byName[tag] = &constantEntry{
			value:      term.NewExternalInstance(id),
			instanceID: id,
			hasID:      true,
			mro:        []uint64{id},
			hasMRO:     true,
		}
	}
}

func (t *constantTable) clear() {
	// Constants and MROs survive clear_rules (spec §4.3); nothing to do.
	_ = t
}

// --- Unions (spec §4.4.4) ---

// unionTable tracks which tags have been declared as Actor or Resource
// members via resource blocks.
type unionTable struct {
	actor    sets.Set[term.Symbol]
	resource sets.Set[term.Symbol]
}

func newUnionTable() *unionTable {
	return &unionTable{actor: sets.New[term.Symbol](), resource: sets.New[term.Symbol]()}
}

func (u *unionTable) setFor(name term.Symbol) sets.Set[term.Symbol] {
	switch name {
	case term.SymActor:
		return u.actor
	case term.SymResource:
		return u.resource
	default:
		return nil
	}
}

// DeclareUnionMember records tag as a member of the Actor or Resource union
// (called while ingesting resource blocks, see pkg/resources).
func (k *KB) DeclareUnionMember(union, tag term.Symbol) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if s := k.unions.setFor(union); s != nil {
		s.Insert(tag)
	}
}

// IsUnion reports whether name is one of the reserved union names.
func (k *KB) IsUnion(name term.Symbol) bool {
	return name == term.SymActor || name == term.SymResource
}

// UnionMembers returns the declared members of the union named name, sorted
// for deterministic iteration.
func (k *KB) UnionMembers(name term.Symbol) []term.Symbol {
	k.mu.RLock()
	defer k.mu.RUnlock()
	s := k.unions.setFor(name)
	if s == nil {
		return nil
	}
	return sets.List(s)
}

// GetUnionMembers is the external read API alias for UnionMembers (spec §6).
func (k *KB) GetUnionMembers(name term.Symbol) []term.Symbol {
	return k.UnionMembers(name)
}
