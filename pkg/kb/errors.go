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

import "github.com/osohq/polar-kb/pkg/diagnostic"

// toDiagnostic renders e as a Diagnostic so it can be folded into a
// DiagnosticLoad result alongside validation errors (both share the same
// Kind taxonomy, see pkg/diagnostic).
func (e *KBError) toDiagnostic() *diagnostic.Diagnostic {
	return diagnostic.NewError(e.Kind, "%s", e.Message)
}

// KBError is returned by the host-facing write/read API (AddSource,
// RegisterConstant, AddMRO, and Load's multiple-load guard) for failures
// that are not part of the diagnostic list produced by
// DiagnosticLoad/validate_rules — these are always single, synchronous
// failures of one call, not a batch of accumulated problems. When a load
// itself produces error diagnostics, Load returns the first of them (a
// *diagnostic.Diagnostic), not a KBError.
type KBError struct {
	Kind    diagnostic.Kind
	Message string
}

func (e *KBError) Error() string { return e.Message }

func fileLoadingError(msg string) *KBError {
	return &KBError{Kind: diagnostic.KindFileLoading, Message: msg}
}

func typeError(msg string) *KBError {
	return &KBError{Kind: diagnostic.KindTypeError, Message: msg}
}
