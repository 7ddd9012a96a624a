// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package check is check subcommand to check an export manifest.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/manifest/check"
	"go.chromium.org/infra/build/manifest/runtimex"
	"go.chromium.org/infra/build/manifest/ui"
)

const usage = `check export manifest.

 $ manifest check -b <basedir> -m <manifest> [-v] [-p] [-h]

Each file listed in <manifest> is read from <basedir>, and every
#include "..." in it must also be listed in <manifest>.
Exits with 1 if a file includes something not in <manifest>.
`

// Cmd returns the Command for the `check` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "check -b <basedir> -m <manifest> [-v] [-p] [-h]",
		ShortDesc: "check export manifest",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	baseDir  string
	manifest string
	verbose  bool
	echo     bool
	help     bool
	strict   bool
	jobs     int
}

func (c *run) init() {
	c.Flags.StringVar(&c.baseDir, "b", os.Getenv("MANIFEST_BASEDIR"), "base library directory. can be set by $MANIFEST_BASEDIR")
	c.Flags.StringVar(&c.manifest, "m", os.Getenv("MANIFEST_FILE"), "manifest file. can be set by $MANIFEST_FILE")
	c.Flags.BoolVar(&c.verbose, "v", false, "verbose mode")
	c.Flags.BoolVar(&c.echo, "p", false, "print all include directives")
	c.Flags.BoolVar(&c.help, "h", false, "print usage")
	c.Flags.BoolVar(&c.strict, "strict", false, "fail if a file listed in manifest can't be read")
	c.Flags.IntVar(&c.jobs, "j", 1, "number of files to scan concurrently. 0 means the number of CPUs")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 1
	}
	return c.run(ctx, a.GetOut(), a.GetErr())
}

func (c *run) run(ctx context.Context, w, errw io.Writer) int {
	if c.help {
		c.usage(w)
		return 0
	}
	if c.manifest == "" {
		c.usage(w)
		return 1
	}
	ret := 0
	if !fileExists(c.manifest) {
		fmt.Fprintf(w, "Error: manifest file '%s' cannot be found.\n", c.manifest)
		ret = 1
	}
	if err := check.ValidateBaseDir(c.baseDir); err != nil {
		fmt.Fprintf(w, "Error: base directory does not exist. ('%s')\n", c.baseDir)
		return 1
	}
	ok, err := check.Run(ctx, w, check.Options{
		BaseDir:  c.baseDir,
		Manifest: c.manifest,
		Echo:     c.echo,
		Verbose:  c.verbose,
		Strict:   c.strict,
		Jobs:     runtimex.Jobs(c.jobs),
	})
	if err != nil && !errors.Is(err, check.ErrManifestUnreadable) {
		// e.g. interrupted.
		fmt.Fprintf(errw, "Error: %v\n", err)
		return 1
	}
	status := ui.Status(ok)
	if !ui.IsTerminal(w) {
		status = ui.StripANSIEscapeCodes(status)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, status)
	if !ok {
		ret = 1
	}
	return ret
}

func (c *run) usage(w io.Writer) {
	fmt.Fprint(w, usage)
	fmt.Fprintln(w)
	c.Flags.SetOutput(w)
	c.Flags.PrintDefaults()
}

func fileExists(fname string) bool {
	f, err := os.Open(fname)
	if err != nil {
		return false
	}
	defer f.Close()
	fi, err := f.Stat()
	return err == nil && !fi.IsDir()
}
