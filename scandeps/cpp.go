// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/manifest/o11y/clog"
	"go.chromium.org/infra/build/manifest/o11y/iometrics"
)

var includeToken = []byte("#include")

// Lookup checks whether an include path is known.
// *manifest.Set implements it.
type Lookup interface {
	Has(string) bool
}

// Options controls scanning.
type Options struct {
	// System enables <...> includes when no "..." include is found
	// in the line.
	System bool

	// Echo writes every discovered include as "include <path>".
	Echo bool

	// Verbose writes a line for each scanned file.
	Verbose bool

	// Metrics counts file reads if set.
	Metrics *iometrics.IOMetrics
}

// FindInclude returns the include path in line, or empty string if line
// has no #include or no well-formed path after it.
// Only the first path in the line is returned.
func FindInclude(line []byte, system bool) string {
	i := bytes.Index(line, includeToken)
	if i < 0 {
		return ""
	}
	start := i + len(includeToken)
	incpath := findToken(line, start, '"', '"')
	if incpath == "" && system {
		incpath = findToken(line, start, '<', '>')
	}
	return incpath
}

// findToken returns the string between left and right delimiter.
// left must appear after pos, not at pos.
func findToken(line []byte, pos int, left, right byte) string {
	if pos+1 >= len(line) {
		return ""
	}
	i := bytes.IndexByte(line[pos+1:], left)
	if i < 0 {
		return ""
	}
	begin := pos + 1 + i + 1
	j := bytes.IndexByte(line[begin:], right)
	if j < 0 {
		// unclosed path?
		return ""
	}
	return string(line[begin : begin+j])
}

// Scan scans includes in buf, the content of fname, and reports
// includes not found in lookup to w.
// It returns false if any include is missing.
func Scan(ctx context.Context, w io.Writer, fname string, buf []byte, lookup Lookup, opt Options) bool {
	started := time.Now()
	if opt.Verbose {
		fmt.Fprintf(w, "* Processing: '%s'\n", fname)
	}
	ok := true
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
		incpath := FindInclude(line, opt.System)
		if incpath == "" {
			continue
		}
		if opt.Echo {
			fmt.Fprintf(w, "include %s\n", incpath)
		}
		if lookup.Has(incpath) {
			if log.V(2) {
				clog.Infof(ctx, "%s: include %q ok", fname, incpath)
			}
			continue
		}
		fmt.Fprintf(w, "File '%s': included '%s' not presented in manifest.\n", fname, incpath)
		ok = false
	}
	dur := time.Since(started)
	if dur > time.Second {
		clog.Infof(ctx, "slow scan %s %s", fname, dur)
	}
	return ok
}

// ScanFile reads fname and scans it.
// If fname can't be read, it returns true with the error and
// writes nothing to w.
func ScanFile(ctx context.Context, w io.Writer, fname string, lookup Lookup, opt Options) (bool, error) {
	buf, err := os.ReadFile(fname)
	opt.Metrics.ReadDone(len(buf), err)
	if err != nil {
		return true, err
	}
	return Scan(ctx, w, fname, buf, lookup, opt), nil
}
