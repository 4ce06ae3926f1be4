// Copyright 2025 go-cta Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cta

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/gomlx/exceptions"
)

// DebugEnvVar enables precondition checks in CTA algorithms when set to a
// true value.
const DebugEnvVar = "CTA_DEBUG"

var debug atomic.Bool

func init() {
	debug.Store(DebugEnv())
}

// DebugEnv checks if the CTA_DEBUG environment variable is set.
func DebugEnv() bool {
	val := os.Getenv(DebugEnvVar)
	if val == "" {
		return false
	}
	// Any non-empty value is considered true, but also parse as bool
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// Debug reports whether precondition checks are enabled.
func Debug() bool {
	return debug.Load()
}

// SetDebug enables or disables precondition checks and returns the previous
// setting.
func SetDebug(enabled bool) (previous bool) {
	return debug.Swap(enabled)
}

// Assertf panics with an error built from format and args if checks are
// enabled and cond is false. Violations are undefined behavior otherwise.
func Assertf(cond bool, format string, args ...any) {
	if cond || !debug.Load() {
		return
	}
	exceptions.Panicf(format, args...)
}
