// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.cc")
	err := os.WriteFile(src, []byte(`#include "foo.h"
#include <vector>
#include "base/bar.h"
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	mfile := filepath.Join(dir, "manifest.txt")
	err = os.WriteFile(mfile, []byte("foo.h\nvector\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name     string
		manifest string
		system   bool
		wantOK   bool
		want     string
	}{
		{
			name:   "list",
			wantOK: true,
			want:   "include foo.h\ninclude base/bar.h\n",
		},
		{
			name:   "list-system",
			system: true,
			wantOK: true,
			want:   "include foo.h\ninclude vector\ninclude base/bar.h\n",
		},
		{
			name:     "check",
			manifest: mfile,
			system:   true,
			wantOK:   false,
			want:     "File '" + src + "': included 'base/bar.h' not presented in manifest.\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &run{}
			c.init()
			c.manifest = tc.manifest
			c.system = tc.system
			var w bytes.Buffer
			ok, err := c.run(ctx, &w, []string{src})
			if err != nil {
				t.Fatalf("run()=_, %v; want nil err", err)
			}
			if ok != tc.wantOK {
				t.Errorf("run()=%t; want %t", ok, tc.wantOK)
			}
			if diff := cmp.Diff(tc.want, w.String()); diff != "" {
				t.Errorf("run() output diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c := &run{}
	c.init()
	var w bytes.Buffer
	_, err := c.run(ctx, &w, nil)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run(no files)=_, %v; want %v", err, flag.ErrHelp)
	}

	_, err = c.run(ctx, &w, []string{filepath.Join(dir, "nonexistent.cc")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("run(nonexistent)=_, %v; want %v", err, fs.ErrNotExist)
	}

	c.manifest = filepath.Join(dir, "nonexistent.txt")
	_, err = c.run(ctx, &w, []string{filepath.Join(dir, "a.cc")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("run(bad manifest)=_, %v; want %v", err, fs.ErrNotExist)
	}
}
