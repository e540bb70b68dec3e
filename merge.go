package main

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/524D/mzqc/internal/mzqc"
)

var mergeCmd = &command{
	name:  "merge",
	args:  "<mzQC>... <output mzQC>",
	short: "merge single run mzQC files, matching runs and combining metrics",
	long: `  The files are merged from left to right. Each file must contain at most
  one run. Runs with identical metadata get their metrics combined. Runs
  that are recognized as the same run (by label, or with --match inputfile
  by their first input file) get metrics, software and input files
  combined. Other runs are added as a separate run, after which no further
  file can be merged. Duplicate metrics keep the first value.
`,
	flags: func(fs *flag.FlagSet, env *cmdEnv) {
		fs.StringVar(&env.match, "match", "label",
			"`policy` for recognizing the same run: label or inputfile")
		fs.BoolVar(&env.ignoreLocation, "ignore-location", false,
			"with --match inputfile, ignore the location of input files")
	},
	run: runMerge,
}

var collectCmd = &command{
	name:  "collect",
	args:  "<mzQC>... <output mzQC>",
	short: "collect all runs of mzQC files into one file without matching",
	long: `  All runs of all files are copied, in order, into a new document. Header
  fields (contact, description) of the new document come from the
  configuration.
`,
	flags: func(fs *flag.FlagSet, env *cmdEnv) {
		fs.StringVar(&env.description, "description", "",
			"description of the new document")
	},
	run: runCollect,
}

func runMerge(ctx context.Context, env *cmdEnv) error {
	inputs, output, err := inputsAndOutput(env.args, 2)
	if err != nil {
		return err
	}
	docs, err := readDocuments(ctx, env, inputs)
	if err != nil {
		return err
	}
	opts, err := env.cfg.MergeOptions(env.log)
	if err != nil {
		return err
	}
	merged, err := mzqc.MergeAll(docs, opts)
	if err != nil {
		return err
	}
	if env.cfg.Description != "" {
		merged.Description = env.cfg.Description
	}
	return writeDocument(ctx, env, merged, output)
}

func runCollect(ctx context.Context, env *cmdEnv) error {
	inputs, output, err := inputsAndOutput(env.args, 1)
	if err != nil {
		return err
	}
	docs, err := readDocuments(ctx, env, inputs)
	if err != nil {
		return err
	}
	collected := mzqc.Collect(env.cfg.NewDocument(), docs)
	if err := writeDocument(ctx, env, collected, output); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Collected %d runs from %d files.\n", len(collected.RunQualities), len(docs))
	return nil
}
