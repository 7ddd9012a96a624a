// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package check checks that files listed in an export manifest only
// include files listed in the same manifest.
package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/manifest/manifest"
	"go.chromium.org/infra/build/manifest/o11y/clog"
	"go.chromium.org/infra/build/manifest/o11y/iometrics"
	"go.chromium.org/infra/build/manifest/scandeps"
	"go.chromium.org/infra/build/manifest/sync/semaphore"
)

var (
	// ErrManifestUnreadable is returned when the manifest file can't be read.
	ErrManifestUnreadable = errors.New("manifest unreadable")

	// ErrBaseDirMissing is returned when the base directory doesn't exist.
	ErrBaseDirMissing = errors.New("base directory missing")
)

// Options is options for Run.
type Options struct {
	// BaseDir is a directory where manifest entries are resolved.
	BaseDir string

	// Manifest is a manifest filename.
	Manifest string

	// Echo writes every discovered include.
	Echo bool

	// Verbose writes trace of processed files.
	Verbose bool

	// Strict fails when a manifest entry can't be read.
	// By default, unreadable entries are silently treated as ok.
	Strict bool

	// Jobs is the number of concurrent scans.
	// Output is the same regardless of Jobs.
	Jobs int
}

// ValidateBaseDir checks dir is an existing directory.
func ValidateBaseDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrBaseDirMissing, dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrBaseDirMissing, dir)
	}
	return nil
}

// Run loads the manifest, scans all files listed in it, and writes
// diagnostics to w.
// It returns true if all includes of all files are listed in the manifest.
// It returns an error only when the manifest can't be loaded, or ctx is
// canceled.
func Run(ctx context.Context, w io.Writer, opt Options) (bool, error) {
	ctx = clog.NewSpan(ctx, uuid.New().String(), "", map[string]string{
		"manifest": opt.Manifest,
	})
	if opt.Verbose {
		fmt.Fprintf(w, "Processing Manifest: '%s', basedir: '%s'\n", opt.Manifest, opt.BaseDir)
	}
	set, err := manifest.Load(ctx, opt.Manifest)
	if err != nil {
		fmt.Fprintf(w, "Error: cannot read manifest file '%s'\n", opt.Manifest)
		return false, fmt.Errorf("%w: %w", ErrManifestUnreadable, err)
	}
	metrics := iometrics.New("scan")
	scanOpt := scandeps.Options{
		// only "..." includes are checked for files in the manifest.
		System:  false,
		Echo:    opt.Echo,
		Verbose: opt.Verbose,
		Metrics: metrics,
	}
	entries := set.Paths()
	logger := clog.FromContext(ctx)
	defer func() {
		if logger.V(1) {
			logger.Infof("scanned %d entries: %s %s", len(entries), metrics.Name(), metrics.Stats())
		}
	}()
	if opt.Jobs <= 1 {
		ok := true
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			ok = checkEntry(ctx, w, opt, set, scanOpt, entry) && ok
		}
		return ok, nil
	}

	// scan concurrently, but write outputs in manifest order.
	outs := make([]bytes.Buffer, len(entries))
	oks := make([]bool, len(entries))
	sema := semaphore.New("scan", opt.Jobs)
	eg, ctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		eg.Go(func() error {
			return sema.Do(ctx, func(ctx context.Context) error {
				oks[i] = checkEntry(ctx, &outs[i], opt, set, scanOpt, entry)
				return nil
			})
		})
	}
	err = eg.Wait()
	if err != nil {
		return false, err
	}
	if logger.V(1) {
		logger.Infof("semaphore %s: capacity=%d requests=%d", sema.Name(), sema.Capacity(), sema.NumRequests())
	}
	ok := true
	for i := range entries {
		_, err := outs[i].WriteTo(w)
		if err != nil {
			return false, err
		}
		ok = ok && oks[i]
	}
	return ok, nil
}

func checkEntry(ctx context.Context, w io.Writer, opt Options, set *manifest.Set, scanOpt scandeps.Options, entry string) bool {
	ctx = clog.NewSpan(ctx, "", entry, map[string]string{
		"file": entry,
	})
	fname := filepath.Join(opt.BaseDir, entry)
	ok, err := scandeps.ScanFile(ctx, w, fname, set, scanOpt)
	if err != nil {
		if opt.Strict {
			fmt.Fprintf(w, "File '%s': cannot read: %v\n", fname, err)
			return false
		}
		clog.Warningf(ctx, "ignore unreadable %s: %v", fname, err)
		return true
	}
	return ok
}
