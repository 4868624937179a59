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

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders t in Polar surface syntax, not its internal representation.
// It is used exclusively for human-readable diagnostics (spec §4.4.6
// requires "surface syntax (not internal representation) for readability");
// it is not a serialization format and its output is not parsed back.
func Print(t *Term) string {
	if t == nil {
		return "_"
	}
	switch v := t.Value.(type) {
	case Number:
		if v.IsFloat {
			return strconv.FormatFloat(v.Float, 'g', -1, 64)
		}
		return strconv.FormatInt(v.Int, 10)
	case Str:
		return strconv.Quote(string(v))
	case Boolean:
		if v {
			return "true"
		}
		return "false"
	case Variable:
		return string(v)
	case List:
		parts := make([]string, 0, len(v.Items)+1)
		for _, item := range v.Items {
			parts = append(parts, Print(item))
		}
		if v.HasRestVar() {
			parts = append(parts, "*"+string(*v.RestVar))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Dictionary:
		return "{" + printFields(v) + "}"
	case Call:
		return string(v.Name) + printArgs(v.Args)
	case Expression:
		return string(v.Operator) + printArgs(v.Args)
	case Pattern:
		if v.Kind == PatternInstanceKind {
			return printInstance(*v.Instance)
		}
		return "{" + printFields(*v.Dict) + "}"
	case ExternalInstance:
		if v.Repr != nil {
			return *v.Repr
		}
		return fmt.Sprintf("^{id: %d}", v.InstanceID)
	default:
		return "<?>"
	}
}

func printArgs(args []*Term) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Print(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func printFields(d Dictionary) string {
	keys := d.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k) + ": " + Print(d.Fields[k])
	}
	return strings.Join(parts, ", ")
}

func printInstance(lit InstanceLiteral) string {
	if len(lit.Fields.Fields) == 0 {
		return string(lit.Tag) + "{}"
	}
	return string(lit.Tag) + "{" + printFields(lit.Fields) + "}"
}

// PrintParameter renders a single head parameter as `name` or
// `name: specializer`.
func PrintParameter(p Parameter) string {
	name := Print(p.Parameter)
	if p.Specializer == nil {
		return name
	}
	return name + ": " + Print(p.Specializer)
}

// PrintHead renders a rule or rule-type head as `name(param, param: Spec)`.
func PrintHead(name Symbol, params []Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = PrintParameter(p)
	}
	return string(name) + "(" + strings.Join(parts, ", ") + ")"
}
