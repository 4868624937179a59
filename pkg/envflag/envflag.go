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

// Package envflag reads the one environment variable the knowledge base
// recognizes. Spec §6: "one recognized flag, POLAR_IGNORE_NO_ALLOW_WARNING
// ... This is acknowledged as a hack and should not be extended." Kept as
// its own package so that hack stays contained and isn't casually grown.
package envflag

import (
	"os"
	"sync"
)

const ignoreNoAllowWarningVar = "POLAR_IGNORE_NO_ALLOW_WARNING"

var (
	once          sync.Once
	ignoreNoAllow bool
)

// IgnoreNoAllowWarning reports whether POLAR_IGNORE_NO_ALLOW_WARNING is set
// to any non-empty value. Read once per process and cached, since the
// environment is not expected to change mid-run.
func IgnoreNoAllowWarning() bool {
	once.Do(func() {
		ignoreNoAllow = os.Getenv(ignoreNoAllowWarningVar) != ""
	})
	return ignoreNoAllow
}
