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
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Device describes the CPU that CTAs are scheduled on.
type Device struct {
	// Name of the widest vector extension detected, e.g. "avx2" or "neon".
	Name string

	// VectorWidth is the vector register width in bytes.
	VectorWidth int

	// CacheLine is the cache line size in bytes.
	CacheLine int

	// NumProcs is the number of CTAs that can make progress at once.
	NumProcs int
}

// currentDevice is set by init() in device_*.go files.
var currentDevice = Device{
	Name:        "scalar",
	VectorWidth: 16,
	CacheLine:   int(unsafe.Sizeof(cpu.CacheLinePad{})),
}

// CurrentDevice returns the detected device.
func CurrentDevice() Device {
	d := currentDevice
	d.NumProcs = runtime.GOMAXPROCS(0)
	return d
}

// WarpSize returns the number of int32 lanes in one vector register.
func (d Device) WarpSize() int {
	return d.VectorWidth / 4
}

// DefaultBlock returns the launch shape used when none is given: 128 lanes,
// 11 items each.
func DefaultBlock() Block {
	return Block{NT: 128, VT: 11}
}
