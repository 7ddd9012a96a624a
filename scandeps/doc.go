// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps provides forged C/C++ include scanner for manifest
// checks.
// Compared with a real C preprocessor, it only looks for the literal
// token `#include` in each line, and takes the first quoted path after it.
//
//	#include "foo.h"   -> foo.h
//	#include <foo.h>   -> foo.h (only if system includes are enabled)
//
// It doesn't process `#if` or `#ifdef`, macros, comments nor
// multiline directives (\ at the end of line).
// Since it searches the token as a substring, a commented out
// include such as
//
//	// #include "old.h"
//
// is still reported.
package scandeps
