// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps is scandeps subcommand for debugging include scanning.
package scandeps

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/manifest/manifest"
	"go.chromium.org/infra/build/manifest/scandeps"
)

const usage = `run include scanner on files.

 $ manifest scandeps [-m <manifest>] [-system] [-p] <file>...

Without -m, prints includes found in <file>s.
With -m, reports includes not listed in <manifest>, and
exits with 1 if any.
Unlike check, <file> that can't be read is an error.
`

// Cmd returns the Command for the `scandeps` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "scandeps [-m <manifest>] <file>...",
		ShortDesc: "run include scanner",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	manifest string
	system   bool
	echo     bool
	verbose  bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.manifest, "m", "", "manifest file to check includes against")
	c.Flags.BoolVar(&c.system, "system", false, `also scan <...> includes if no "..." include in the line`)
	c.Flags.BoolVar(&c.echo, "p", false, "print all include directives")
	c.Flags.BoolVar(&c.verbose, "v", false, "verbose mode")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	ok, err := c.run(ctx, a.GetOut(), args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	if !ok {
		return 1
	}
	return 0
}

// anyPath accepts any include path.
type anyPath struct{}

func (anyPath) Has(string) bool { return true }

func (c *run) run(ctx context.Context, w io.Writer, files []string) (bool, error) {
	if len(files) == 0 {
		return false, fmt.Errorf("no files: %w", flag.ErrHelp)
	}
	opt := scandeps.Options{
		System:  c.system,
		Echo:    c.echo,
		Verbose: c.verbose,
	}
	var lookup scandeps.Lookup = anyPath{}
	if c.manifest != "" {
		set, err := manifest.Load(ctx, c.manifest)
		if err != nil {
			return false, err
		}
		log.Infof("manifest %s: %d entries", c.manifest, set.Len())
		lookup = set
	} else {
		opt.Echo = true
	}
	ok := true
	for _, fname := range files {
		fok, err := scandeps.ScanFile(ctx, w, fname, lookup, opt)
		if err != nil {
			return false, err
		}
		ok = ok && fok
	}
	return ok, nil
}
