// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/524D/mzqc/internal/config"
	"github.com/524D/mzqc/internal/mzqc"
	"github.com/524D/mzqc/internal/store"
)

// Program name and version, added as analysis software to created documents
const progName = "mzqc"

var progVersion = `Unknown`

const progURI = `https://github.com/524D/mzqc`

// CV term for our own software entry
const cvCustomSoftware = `MS:1000799`

// usageError is reported with the usage text of the command, and exit
// status 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// inputError is an input file that can't be read or decoded. It is
// reported with the usage text of the command, and exit status 1.
type inputError struct {
	path string
	err  error
}

func (e *inputError) Error() string { return e.path + ": " + e.err.Error() }

func (e *inputError) Unwrap() error { return e.err }

// command is a subcommand of the program
type command struct {
	name  string
	args  string
	short string
	long  string
	run   func(ctx context.Context, env *cmdEnv) error
	flags func(fs *flag.FlagSet, env *cmdEnv)
}

// cmdEnv holds what a command needs after the common flags are handled
type cmdEnv struct {
	cfg    config.Config
	log    *slog.Logger
	store  *store.Store
	args   []string
	stdout io.Writer

	// command specific flags
	match          string
	ignoreLocation bool
	mzIDFilename   string
	label          string
	description    string
}

var commands = []*command{mergeCmd, collectCmd, calcCmd}

func findCommand(name string) *command {
	for _, c := range commands {
		if c.name == name {
			return c
		}
	}
	return nil
}

func exeName() string {
	return filepath.Base(os.Args[0])
}

func usage(w io.Writer) {
	fmt.Fprintf(w,
		`USAGE:
  %s <command> [options] <input>... <output>

  Merge, collect and create mzQC quality control files.

COMMANDS:
`, exeName())
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.short)
	}
	fmt.Fprintf(w, `
Type %s <command> --help for the options of a command.

PATHS:
  Paths can be local files or s3://bucket/key URLs. Files with a name
  ending in .gz are (de)compressed automatically.

ENVIRONMENT VARIABLES:
  %s  path of a YAML configuration file, used when --config is not given
`, exeName(), config.EnvConfig)
}

func commandUsage(w io.Writer, c *command, fs *flag.FlagSet) {
	fmt.Fprintf(w, "USAGE:\n  %s %s [options] %s\n\n%s\nOPTIONS:\n", exeName(), c.name, c.args, c.long)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// run executes the command line args (without program name) and
// returns the exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	case "--version", "version":
		if progVersion == `Unknown` {
			progVersion = `Unknown
Please build this program with script 'build.sh' so that the git version is shown here.`
		}
		fmt.Fprintf(stdout, "%s version %s\n", progName, progVersion)
		return 0
	}
	c := findCommand(args[0])
	if c == nil {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	env := &cmdEnv{stdout: stdout}
	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	logLevel := fs.String("log", "warn", "log detail `level`: debug, info or warn (verbosity: debug>info>warn)")
	configFile := fs.String("config", "", "YAML configuration `file` (default $"+config.EnvConfig+")")
	help := fs.BoolP("help", "h", false, "show this help")
	if c.flags != nil {
		c.flags(fs, env)
	}
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(stderr, "%v\n\n", err)
		commandUsage(stderr, c, fs)
		return 2
	}
	if *help {
		commandUsage(stdout, c, fs)
		return 0
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: config: %v\n", err)
		return 2
	}
	if fs.Changed("log") {
		cfg.Log = *logLevel
	}
	if fs.Changed("match") {
		cfg.Match = env.match
	}
	if fs.Changed("ignore-location") {
		cfg.IgnoreLocation = env.ignoreLocation
	}
	if fs.Changed("description") {
		cfg.Description = env.description
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		commandUsage(stderr, c, fs)
		return 2
	}
	env.cfg = cfg
	env.log, _ = cfg.Logger(stderr)
	env.store = store.New(cfg.S3)
	env.args = fs.Args()

	if err := c.run(ctx, env); err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			commandUsage(stderr, c, fs)
			return 2
		}
		var ie *inputError
		if errors.As(err, &ie) {
			commandUsage(stderr, c, fs)
		}
		return 1
	}
	return 0
}

// inputsAndOutput splits the positional arguments into at least min
// existing inputs and one output
func inputsAndOutput(args []string, min int) ([]string, string, error) {
	if len(args) < min+1 {
		return nil, "", usagef("expected at least %d input file(s) and an output file, got %d argument(s)", min, len(args))
	}
	inputs, output := args[:len(args)-1], args[len(args)-1]
	for _, in := range inputs {
		if !store.Exists(in) {
			return nil, "", usagef("input file %s does not exist", in)
		}
	}
	return inputs, output, nil
}

// readDocuments reads all mzQC inputs before anything is merged
func readDocuments(ctx context.Context, env *cmdEnv, paths []string) ([]*mzqc.Document, error) {
	docs := make([]*mzqc.Document, 0, len(paths))
	for _, p := range paths {
		rc, err := env.store.Open(ctx, p)
		if err != nil {
			return nil, &inputError{path: p, err: err}
		}
		d, err := mzqc.Read(rc)
		rc.Close()
		if err != nil {
			return nil, &inputError{path: p, err: err}
		}
		env.log.Debug("read mzQC", "file", p, "runs", len(d.RunQualities))
		docs = append(docs, d)
	}
	return docs, nil
}

// writeDocument writes the result. It is only called when all
// processing succeeded.
func writeDocument(ctx context.Context, env *cmdEnv, d *mzqc.Document, path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := env.store.WriteFile(ctx, path, data); err != nil {
		return err
	}
	env.log.Info("wrote mzQC", "file", path, "runs", len(d.RunQualities))
	return nil
}

func ownSoftware() mzqc.AnalysisSoftware {
	return mzqc.AnalysisSoftware{
		Accession: cvCustomSoftware,
		Name:      progName,
		Version:   progVersion,
		URI:       progURI,
	}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
