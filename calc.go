package main

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/524D/mzqc/internal/mzidentml"
	"github.com/524D/mzqc/internal/mzml"
	"github.com/524D/mzqc/internal/runinfo"
	"github.com/524D/mzqc/internal/store"
)

var calcCmd = &command{
	name:  "calc",
	args:  "<mzML> <output mzQC>",
	short: "create a single run mzQC file from an mzML (and mzIdentML) file",
	long: `  Describes the run in the mzML file: input files with checksum, instrument
  and completion time, the software used, the number of MS1 and MS2
  spectra and the chromatography duration. When an mzIdentML file is
  given (or <mzML name>.mzid exists), the numbers of identified spectra
  and peptidoforms are added.
`,
	flags: func(fs *flag.FlagSet, env *cmdEnv) {
		fs.StringVar(&env.mzIDFilename, "mzid", "",
			"mzIdentML `filename` (default <mzML name>.mzid if it exists)")
		fs.StringVar(&env.label, "label", "",
			"run `label` (default mzML file name without extension)")
	},
	run: runCalc,
}

// readSource reads a whole input file and returns its content with the
// SHA-1 checksum used in mzQC file properties
func readSource(ctx context.Context, env *cmdEnv, path string) ([]byte, runinfo.File, error) {
	data, err := env.store.ReadFile(ctx, path)
	if err != nil {
		return nil, runinfo.File{}, &inputError{path: path, err: err}
	}
	sum := sha1.Sum(data)
	return data, runinfo.File{Path: path, SHA1: hex.EncodeToString(sum[:])}, nil
}

func runCalc(ctx context.Context, env *cmdEnv) error {
	inputs, output, err := inputsAndOutput(env.args, 1)
	if err != nil {
		return err
	}
	if len(inputs) != 1 {
		return usagef("expected one mzML file, got %d", len(inputs))
	}
	mzMLFilename := inputs[0]

	// Like mzRecal, look for identifications next to the mzML file
	mzIDFilename := env.mzIDFilename
	if mzIDFilename == "" {
		name := strings.TrimSuffix(mzMLFilename, ".gz")
		if i := strings.LastIndex(name, "."); i > strings.LastIndex(name, "/") {
			name = name[:i]
		}
		if candidate := name + ".mzid"; !store.IsS3(candidate) && store.Exists(candidate) {
			mzIDFilename = candidate
		}
	} else if !store.Exists(mzIDFilename) {
		return usagef("mzIdentML file %s does not exist", mzIDFilename)
	}

	data, spectra, err := readSource(ctx, env, mzMLFilename)
	if err != nil {
		return err
	}
	mzML, err := mzml.Read(bytes.NewReader(data))
	if err != nil {
		return &inputError{path: mzMLFilename, err: err}
	}

	var ident *runinfo.File
	var mzID *mzidentml.MzIdentML
	if mzIDFilename != "" {
		data, f, err := readSource(ctx, env, mzIDFilename)
		if err != nil {
			return err
		}
		m, err := mzidentml.Read(bytes.NewReader(data))
		if err != nil {
			return &inputError{path: mzIDFilename, err: err}
		}
		ident, mzID = &f, &m
	}

	r, err := runinfo.Describe(spectra, &mzML, ident, mzID, runinfo.Options{
		Label:    env.label,
		Software: ownSoftware(),
		Logger:   env.log,
	})
	if err != nil {
		return err
	}
	d := env.cfg.NewDocument()
	d.RunQualities = append(d.RunQualities, r)
	return writeDocument(ctx, env, d, output)
}
