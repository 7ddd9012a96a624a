// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package manifest loads export manifest files.
//
// A manifest is a plain text file with one relative path per line.
//
//	# public headers
//	foo/foo.h
//	foo/bar.h
//
// Leading and trailing whitespace is stripped, and empty lines and lines
// starting with '#' are ignored. There is no escaping nor line
// continuation.
package manifest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"unicode"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/manifest/o11y/clog"
)

// Set is a set of paths listed in a manifest.
// It is immutable once loaded, and safe for concurrent use.
type Set struct {
	m     map[string]bool
	paths []string // sorted
}

// Load loads a manifest file.
func Load(ctx context.Context, fname string) (*Set, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", fname, err)
	}
	s := Parse(ctx, buf)
	if log.V(1) {
		clog.Infof(ctx, "loaded manifest %s: %d entries", fname, s.Len())
	}
	return s, nil
}

// Parse parses manifest content.
func Parse(ctx context.Context, buf []byte) *Set {
	s := &Set{
		m: make(map[string]bool),
	}
	for len(buf) > 0 {
		var line []byte
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			line = buf
			buf = nil
		} else {
			line = buf[:i]
			buf = buf[i+1:]
		}
		line = bytes.TrimFunc(line, notGraphic)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		p := string(line)
		if s.m[p] {
			if log.V(2) {
				clog.Infof(ctx, "duplicate entry %q", p)
			}
			continue
		}
		s.m[p] = true
		s.paths = append(s.paths, p)
	}
	sort.Strings(s.paths)
	return s
}

// notGraphic reports whether r is not a visible character.
func notGraphic(r rune) bool {
	return unicode.IsSpace(r) || !unicode.IsGraphic(r)
}

// Has reports whether p is listed in the manifest.
func (s *Set) Has(p string) bool {
	if s == nil {
		return false
	}
	return s.m[p]
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns the entries in lexical order.
func (s *Set) Paths() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.paths...)
}
