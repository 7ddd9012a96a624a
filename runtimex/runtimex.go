// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimex provides the number of CPUs usable for scans.
package runtimex

import "runtime"

var (
	ncpu int
)

func init() {
	ncpu = getproccount()
	if ncpu == 0 {
		ncpu = runtime.NumCPU()
	}
}

// NumCPU returns the number of logical CPUs usable by the current process.
// On Windows, runtime.NumCPU() only returns the CPUs of a single
// processor group (up to 64), so it asks GetActiveProcessorCount for
// all groups instead.
func NumCPU() int {
	return ncpu
}

// Jobs returns the number of concurrent jobs for the -j flag value n.
// n <= 0 means the number of CPUs.
func Jobs(n int) int {
	if n <= 0 {
		return NumCPU()
	}
	return n
}
