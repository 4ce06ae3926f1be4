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

// Package algo provides the scan and search helpers that turn segment
// lengths into the segment descriptors consumed by load-balancing search,
// and that check those descriptors.
//
// # Example Usage
//
//	import "github.com/ajroetker/go-cta/cta/contrib/algo"
//
//	counts := []int{3, 0, 2}
//	starts, total := algo.ExclusiveScan(counts)
//	// starts = [0, 3, 3], total = 5
package algo
