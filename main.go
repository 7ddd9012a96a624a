// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Manifest checks that files listed in an export manifest are
// self-contained, i.e. they only #include files listed in the manifest.
package main

import (
	"context"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/manifest/o11y/clog"
	"go.chromium.org/infra/build/manifest/subcmd/check"
	"go.chromium.org/infra/build/manifest/subcmd/scandeps"
	"go.chromium.org/infra/build/manifest/subcmd/version"
	"go.chromium.org/infra/build/manifest/ui"
)

const versionStr = "manifest v1.0.0"

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "manifest",
		Title: "Check for export manifest file",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			check.Cmd(),
			scandeps.Cmd(),
			version.Cmd(versionStr),
			subcommands.CmdHelp,
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			"MANIFEST_BASEDIR": {
				ShortDesc: "default base directory for check -b",
			},
			"MANIFEST_FILE": {
				ShortDesc: "default manifest file for check -m",
			},
		},
	}
}

func main() {
	os.Exit(manifestMain(os.Args[1:]))
}

func manifestMain(args []string) (ret int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer signals.HandleInterrupt(cancel)()

	logger := clog.New(ctx)
	logger.Formatter = clog.LabelFormatter
	ctx = clog.NewContext(ctx, logger)

	// Flush the log on exit to not lose any messages.
	defer logger.Close()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			clog.Errorf(ctx, "panic: %v\n%s", r, buf)
			ret = 1
		}
	}()

	ui.Init()
	defer ui.Restore()

	if logger.V(1) {
		if buildinfo, ok := debug.ReadBuildInfo(); ok {
			logger.Infof("main module: %s %s", buildinfo.Main.Path, buildinfo.Main.Version)
		}
	}
	return subcommands.Run(getApplication(ctx), commandArgs(args))
}

// commandArgs supports the flat command line of earlier versions,
// `manifest -b <dir> -m <manifest>`, which is the same as
// `manifest check -b <dir> -m <manifest>`.
// `manifest` without arguments runs `check`, which prints its usage.
func commandArgs(args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return append([]string{"check"}, args...)
	}
	return args
}
