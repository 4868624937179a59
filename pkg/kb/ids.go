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
	"strconv"
	"sync/atomic"
)

// maxSafeID is 2^53-1, the largest integer a float64 can represent without
// loss. Spec §4.1 requires IDs to survive a round trip through a 64-bit
// float; this package's documented policy is to wrap back to zero rather
// than error, since a KB never allocates anywhere close to 2^53 ids in a
// single batch load and erroring would turn an unreachable edge case into
// a user-visible failure mode.
const maxSafeID uint64 = (1 << 53) - 1

// idCounter is a monotonic (until wraparound), thread-safe id allocator.
// Two independent instances are kept by KB: one for stable object ids (rule,
// instance, and source ids), one for gensym. Both may be read by concurrent
// goroutines per spec §5 ("both counters must be safe under concurrent
// readers").
type idCounter struct {
	next uint64
}

// allocate returns a freshly allocated id and advances the counter. Callers
// must not assume density, only monotonicity (until wraparound).
func (c *idCounter) allocate() uint64 {
	for {
		old := atomic.LoadUint64(&c.next)
		next := old + 1
		if next > maxSafeID {
			next = 0
		}
		if atomic.CompareAndSwapUint64(&c.next, old, next) {
			return old
		}
	}
}

// NewID allocates a fresh stable object id (rule id, instance id, source id).
func (k *KB) NewID() uint64 {
	return k.ids.allocate()
}

// Gensym returns a fresh variable name derived from hint. The wildcard hint
// "_" produces bare "_N" names; any other hint produces "_hint_N" (spec
// §4.1).
func (k *KB) Gensym(hint string) string {
	n := k.gensym.allocate()
	if hint == "_" {
		return "_" + strconv.FormatUint(n, 10)
	}
	return "_" + hint + "_" + strconv.FormatUint(n, 10)
}
