// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package check

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setup(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		fname := filepath.Join(dir, name)
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := setup(t, map[string]string{
		"manifest.txt": "a.h\nb.h\n",
		"src/a.h":      "#include \"b.h\"\n",
		"src/b.h":      "#include \"c.h\"\n",
		"bad.txt":      "a.h\n",
		"src/c.h":      "",
	})
	base := filepath.Join(dir, "src")

	for _, tc := range []struct {
		name     string
		baseDir  string
		manifest string
		echo     bool
		wantCode int
		want     string
	}{
		{
			name:     "missing-include",
			baseDir:  base,
			manifest: filepath.Join(dir, "manifest.txt"),
			wantCode: 1,
			want: "File '" + filepath.Join(base, "b.h") + "': included 'c.h' not presented in manifest.\n" +
				"\n" +
				"Status: ERROR\n",
		},
		{
			name:     "partial-manifest",
			baseDir:  base,
			manifest: filepath.Join(dir, "bad.txt"),
			wantCode: 1,
			want: "File '" + filepath.Join(base, "a.h") + "': included 'b.h' not presented in manifest.\n" +
				"\n" +
				"Status: ERROR\n",
		},
		{
			name:     "echo",
			baseDir:  base,
			manifest: filepath.Join(dir, "manifest.txt"),
			echo:     true,
			wantCode: 1,
			want: "include b.h\n" +
				"include c.h\n" +
				"File '" + filepath.Join(base, "b.h") + "': included 'c.h' not presented in manifest.\n" +
				"\n" +
				"Status: ERROR\n",
		},
		{
			name:     "base-dir-missing",
			baseDir:  filepath.Join(dir, "nonexistent"),
			manifest: filepath.Join(dir, "manifest.txt"),
			wantCode: 1,
			want:     "Error: base directory does not exist. ('" + filepath.Join(dir, "nonexistent") + "')\n",
		},
		{
			name:     "manifest-missing",
			baseDir:  base,
			manifest: filepath.Join(dir, "nonexistent.txt"),
			wantCode: 1,
			want: "Error: manifest file '" + filepath.Join(dir, "nonexistent.txt") + "' cannot be found.\n" +
				"Error: cannot read manifest file '" + filepath.Join(dir, "nonexistent.txt") + "'\n" +
				"\n" +
				"Status: ERROR\n",
		},
		{
			name:     "manifest-and-base-dir-missing",
			baseDir:  filepath.Join(dir, "nonexistent"),
			manifest: filepath.Join(dir, "nonexistent.txt"),
			wantCode: 1,
			want: "Error: manifest file '" + filepath.Join(dir, "nonexistent.txt") + "' cannot be found.\n" +
				"Error: base directory does not exist. ('" + filepath.Join(dir, "nonexistent") + "')\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &run{}
			c.init()
			c.baseDir = tc.baseDir
			c.manifest = tc.manifest
			c.echo = tc.echo
			var w bytes.Buffer
			code := c.run(ctx, &w, io.Discard)
			if code != tc.wantCode {
				t.Errorf("run()=%d; want %d", code, tc.wantCode)
			}
			if diff := cmp.Diff(tc.want, w.String()); diff != "" {
				t.Errorf("run() output diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestRunOK(t *testing.T) {
	ctx := context.Background()
	dir := setup(t, map[string]string{
		"manifest.txt": "# exported headers\na.h\nb.h\n",
		"a.h":          "#include \"b.h\"\n#include <vector>\n",
		"b.h":          "",
	})
	c := &run{}
	c.init()
	c.baseDir = dir
	c.manifest = filepath.Join(dir, "manifest.txt")
	c.jobs = 2
	var w bytes.Buffer
	code := c.run(ctx, &w, io.Discard)
	if code != 0 {
		t.Errorf("run()=%d; want 0", code)
	}
	if diff := cmp.Diff("\nStatus: OK\n", w.String()); diff != "" {
		t.Errorf("run() output diff -want +got:\n%s", diff)
	}
}

func TestRunUsage(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name     string
		manifest string
		help     bool
		wantCode int
	}{
		{
			name:     "no-manifest",
			wantCode: 1,
		},
		{
			name:     "help",
			help:     true,
			wantCode: 0,
		},
		{
			name:     "help-with-manifest",
			manifest: "manifest.txt",
			help:     true,
			wantCode: 0,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &run{}
			c.init()
			c.manifest = tc.manifest
			c.help = tc.help
			var w bytes.Buffer
			code := c.run(ctx, &w, io.Discard)
			if code != tc.wantCode {
				t.Errorf("run()=%d; want %d", code, tc.wantCode)
			}
			if !strings.HasPrefix(w.String(), usage) {
				t.Errorf("run() output=%q; want usage", w.String())
			}
			if !strings.Contains(w.String(), "-strict") {
				t.Errorf("run() output=%q; want flag defaults", w.String())
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	dir := setup(t, map[string]string{
		"manifest.txt": "a.h\n",
		"a.h":          "",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &run{}
	c.init()
	c.baseDir = dir
	c.manifest = filepath.Join(dir, "manifest.txt")
	var w, errw bytes.Buffer
	code := c.run(ctx, &w, &errw)
	if code != 1 {
		t.Errorf("run()=%d; want 1", code)
	}
	if w.Len() != 0 {
		t.Errorf("run() stdout=%q; want empty", w.String())
	}
	if diff := cmp.Diff("Error: context canceled\n", errw.String()); diff != "" {
		t.Errorf("run() stderr diff -want +got:\n%s", diff)
	}
}
