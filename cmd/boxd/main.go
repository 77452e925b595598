/*
 * MIT License
 *
 * Copyright (c) 2026 Thierry Delhaise
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command boxd is the server bootstrap entrypoint: it resolves CLI
// flags into runtime.CLIOptions, hands them to boxd.Bootstrap, and
// drives the resulting Daemon until an interrupt or termination signal
// arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tdelhaise/box/internal/boxd"
	"github.com/tdelhaise/box/internal/runtime"
)

var (
	buildVersion = "dev"

	flagConfig       string
	flagPort         int
	flagLogLevel     string
	flagLogTarget    string
	flagAdminChannel bool
	flagMetrics      bool
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "boxd",
		Short:   "boxd runs the Box peer-to-peer messaging daemon",
		Version: buildVersion,
		RunE:    runDaemon,
	}

	flags := cmd.Flags()
	flags.StringVar(&flagConfig, "config", "", "path to the configuration file (default ~/.box/Box.plist)")
	flags.IntVar(&flagPort, "port", 0, "UDP listen port (0 lets the OS choose one)")
	flags.StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warning, error, critical")
	flags.StringVar(&flagLogTarget, "log-target", "", "log target: stderr, stdout, or file:<path>")
	flags.BoolVar(&flagAdminChannel, "admin-channel", false, "start the local admin control endpoint")
	flags.Bool("no-admin-channel", false, "explicitly disable the local admin control endpoint")
	flags.BoolVar(&flagMetrics, "metrics", false, "start the Prometheus metrics listener")

	return cmd
}

// cliOptions translates the flags actually passed by the operator into
// runtime.CLIOptions, leaving every unset field nil so the four-tier
// precedence in internal/runtime falls through to env, then config,
// then defaults.
func cliOptions(cmd *cobra.Command) runtime.CLIOptions {
	var opts runtime.CLIOptions

	if cmd.Flags().Changed("port") {
		opts.Port = &flagPort
	}
	if cmd.Flags().Changed("log-level") {
		opts.LogLevel = &flagLogLevel
	}
	if cmd.Flags().Changed("log-target") {
		opts.LogTarget = &flagLogTarget
	}

	switch {
	case cmd.Flags().Changed("admin-channel"):
		enabled := true
		opts.AdminChannel = &enabled
	case cmd.Flags().Changed("no-admin-channel"):
		disabled := false
		opts.AdminChannel = &disabled
	}

	return opts
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	d, err := boxd.Bootstrap(ctx, boxd.Options{
		ConfigPath: flagConfig,
		CLI:        cliOptions(cmd),
		Metrics:    flagMetrics,
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	d.Logger.Infof("boxd listening on udp port %d", d.UDP.LocalPort())

	if err := d.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
