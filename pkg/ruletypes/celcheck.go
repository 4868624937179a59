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

package ruletypes

import (
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"

	"github.com/osohq/polar-kb/pkg/diagnostic"
	"github.com/osohq/polar-kb/pkg/term"
)

var celEnv, _ = cel.NewEnv()

// ValidateRuleTypeBody rejects a rule-type declaration whose body is
// anything but an empty conjunction (spec §4.4's InvalidRuleType case). A
// rule-type head only ever describes a shape; a body that does real work —
// in particular one that reaches into a field via dot lookup — has no
// meaning for a declaration and is rejected outright.
//
// Structural detection of the dot-lookup case is delegated to cel-go's
// parser, the same way the admission CEL stack inspects expression ASTs
// for disallowed constructs rather than pattern-matching on rendered text.
func ValidateRuleTypeBody(body *term.Term) *diagnostic.Diagnostic {
	if body == nil {
		return nil
	}
	expr, ok := body.Value.(term.Expression)
	if ok && expr.Operator == term.OpAnd && len(expr.Args) == 0 {
		return nil
	}
	if containsDotLookup(body) {
		return diagnostic.NewError(diagnostic.KindInvalidRuleType,
			"rule type body must be empty; found a field lookup in %s", term.Print(body))
	}
	return diagnostic.NewError(diagnostic.KindInvalidRuleType,
		"rule type body must be an empty conjunction, got %s", term.Print(body))
}

// containsDotLookup renders body to its CEL-equivalent surface syntax
// (rewriting every OpDot expression as real `a.b` field access rather than
// the diagnostic printer's call-style rendering) and parses it with
// cel-go, then walks the resulting AST for a Select node. A term that
// doesn't render to parseable CEL at all can't contain a recognizable dot
// lookup by definition, so a parse failure is treated as "no".
func containsDotLookup(body *term.Term) bool {
	if celEnv == nil {
		return false
	}
	rendered := renderCEL(body)
	ast, iss := celEnv.Parse(rendered)
	if iss != nil && iss.Err() != nil {
		return false
	}
	native := ast.NativeRep()
	if native == nil {
		return false
	}
	return selectNodePresent(native.Expr())
}

// renderCEL renders t the way a CEL expression would spell the same
// structure, used only to hand something parseable to cel-go's parser.
// It is deliberately narrower than term.Print: it only needs to get
// OpDot right, since that's the one construct containsDotLookup cares
// about; any other term degrades to the placeholder identifier `_`.
func renderCEL(t *term.Term) string {
	if t == nil {
		return "_"
	}
	switch v := t.Value.(type) {
	case term.Variable:
		return string(v)
	case term.Str:
		return strconv.Quote(string(v))
	case term.Expression:
		if v.Operator == term.OpDot && len(v.Args) == 2 {
			return renderCEL(v.Args[0]) + "." + fieldName(v.Args[1])
		}
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = renderCEL(a)
		}
		return string(v.Operator) + "(" + strings.Join(parts, ", ") + ")"
	case term.Call:
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = renderCEL(a)
		}
		return string(v.Name) + "(" + strings.Join(parts, ", ") + ")"
	default:
		return "_"
	}
}

// fieldName extracts a bare identifier for the right-hand side of a dot
// expression, falling back to a placeholder when the term isn't a literal
// string or variable (the field-name position in a parsed dot expression
// is always one of those two).
func fieldName(t *term.Term) string {
	switch v := t.Value.(type) {
	case term.Str:
		return string(v)
	case term.Variable:
		return string(v)
	default:
		return "field"
	}
}

func selectNodePresent(e celast.Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind() {
	case celast.SelectKind:
		return true
	case celast.CallKind:
		call := e.AsCall()
		if call.Target() != nil && selectNodePresent(call.Target()) {
			return true
		}
		for _, arg := range call.Args() {
			if selectNodePresent(arg) {
				return true
			}
		}
	case celast.ListKind:
		for _, el := range e.AsList().Elements() {
			if selectNodePresent(el) {
				return true
			}
		}
	}
	return false
}
