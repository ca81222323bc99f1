// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Command sift evaluates an expression against every line of standard
// input and prints the results.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nickandperla.net/sift/internal/config"
	"nickandperla.net/sift/internal/logging"
	"nickandperla.net/sift/internal/provider"
	"nickandperla.net/sift/pkg/sift"
)

type options struct {
	all        bool
	grep       bool
	prompt     bool
	quiet      bool
	noPrint    bool
	show       bool
	confirm    bool
	provider   string
	model      string
	configPath string
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns its exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdin, stdout, stderr)
	// A nil slice makes cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, sift.ErrUserAbort) {
		fmt.Fprintf(stderr, "sift: %v\n", err)
	}
	return sift.ExitCode(err)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "sift [flags] EXPRESSION",
		Short: "Evaluate an expression against each line of input",
		Long: `sift compiles EXPRESSION once and evaluates it for every line read from
standard input. Each line is bound to s, its index to i and its
whitespace-separated fields to f.

With --all the whole input is one record. With --grep the lines for which
the expression is truthy are printed unchanged. With --prompt EXPRESSION is
a plain-language description and a model writes the expression.`,
		Example: `  printf 'hello\nworld\n' | sift 's.upper()'
  cat access.log | sift -g "'404' in f"
  sift -a 'len(s.splitlines())' < notes.txt
  ls | sift -p --confirm 'file extension of each name'`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: expected exactly one EXPRESSION argument, got %d", sift.ErrArgument, len(args))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), &opts, args[0], stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", sift.ErrArgument, err)
	})

	f := cmd.Flags()
	f.BoolVarP(&opts.all, "all", "a", false, "Evaluate once over the whole input")
	f.BoolVarP(&opts.grep, "grep", "g", false, "Print lines for which the expression is truthy")
	f.BoolVarP(&opts.prompt, "prompt", "p", false, "Treat EXPRESSION as a description and generate the expression")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print None results")
	f.BoolVarP(&opts.noPrint, "no-print", "n", false, "Do not print results; print() still writes")
	f.BoolVar(&opts.show, "show", false, "Show the generated expression on stderr")
	f.BoolVar(&opts.confirm, "confirm", false, "Ask before running the generated expression")
	f.StringVar(&opts.provider, "provider", "", "Model provider: anthropic, gemini or ollama")
	f.StringVar(&opts.model, "model", "", "Model name")
	f.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/sift/config.yaml)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	return cmd
}

// validate rejects flag combinations before anything is read.
func (o *options) validate() error {
	if o.all && o.grep {
		return fmt.Errorf("%w: --all and --grep cannot be combined", sift.ErrArgument)
	}
	if !o.prompt && (o.show || o.confirm) {
		return fmt.Errorf("%w: --show and --confirm require --prompt", sift.ErrArgument)
	}
	return nil
}

func (o *options) mode() sift.Mode {
	switch {
	case o.all:
		return sift.All
	case o.grep:
		return sift.Grep
	}
	return sift.Line
}

func execute(ctx context.Context, opts *options, arg string, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}

	logger, err := logging.New(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rtOpts := []sift.Option{
		sift.WithMode(opts.mode()),
		sift.WithQuiet(opts.quiet),
		sift.WithNoAutoPrint(opts.noPrint),
		sift.WithOutput(stdout),
		sift.WithLogger(logger),
	}
	if !opts.prompt {
		return sift.New(rtOpts...).Run(arg, stdin)
	}

	p, err := newProvider(opts, logger)
	if err != nil {
		return err
	}
	rtOpts = append(rtOpts, sift.WithProvider(p))
	if opts.show {
		rtOpts = append(rtOpts, sift.WithShow(stderr))
	}
	if opts.confirm {
		rtOpts = append(rtOpts, sift.WithConfirm(ttyConfirmer{}))
	}
	return sift.New(rtOpts...).RunPrompt(ctx, arg, stdin)
}

// newProvider resolves the provider from the config file, the environment
// and the command line, in increasing precedence.
func newProvider(opts *options, logger *zap.Logger) (provider.Provider, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sift.ErrArgument, err)
	}
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", sift.ErrArgument, err)
	}

	p, err := provider.New(cfg.Provider, cfg.Settings())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sift.ErrArgument, err)
	}
	logger.Debug("Using provider",
		zap.String("provider", p.Name()),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.GetTimeout()))
	return p, nil
}
