// Package runinfo describes a mass spectrometry run as an mzQC run
// quality: the input files with their provenance, the software
// involved and counts taken from the spectrum and identification files.
package runinfo

import (
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/524D/mzqc/internal/mzidentml"
	"github.com/524D/mzqc/internal/mzml"
	"github.com/524D/mzqc/internal/mzqc"
	"github.com/524D/mzqc/internal/store"
)

// CV terms
const (
	cvMzMLFormat          = `MS:1000584`
	cvMzIdentMLFormat     = `MS:1002073`
	cvSHA1                = `MS:1000569`
	cvCompletionTime      = `MS:1000747`
	cvAnalysisSoftware    = `MS:1001456`
	cvSourceDataFile      = `MS:1000577`
	cvNumMS1              = `MS:4000059`
	cvNumMS2              = `MS:4000060`
	cvChromDuration       = `MS:4000053`
	cvIdentifiedSpectra   = `MS:1003251`
	cvIdentifiedPeptforms = `MS:1003250`
	uoSecond              = `UO:0000010`
)

// File is an input file with the SHA-1 checksum of its content
type File struct {
	Path string
	SHA1 string // hex encoded, empty if unknown
}

// Options for Describe
type Options struct {
	Label    string // Run label, the file name without extension when empty
	Software mzqc.AnalysisSoftware
	Logger   *slog.Logger
}

// Describe builds the run quality for a spectrum file and, when ident
// is not nil, its identifications
func Describe(spectra File, mzML *mzml.MzML, ident *File, mzID *mzidentml.MzIdentML,
	opts Options) (mzqc.RunQuality, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	var r mzqc.RunQuality

	r.Metadata.Label = opts.Label
	if r.Metadata.Label == "" {
		r.Metadata.Label = store.TrimExt(store.BaseName(spectra.Path))
	}

	spectraFile := inputFile(spectra, mzqc.CvParameter{Accession: cvMzMLFormat, Name: "mzML format"})
	if ts := mzML.StartTimeStamp(); ts != "" {
		spectraFile.FileProperties = append(spectraFile.FileProperties,
			mzqc.CvParameter{Accession: cvCompletionTime, Name: "completion time", Value: ts})
	}
	instruments, err := mzML.Instruments()
	if err != nil {
		return r, err
	}
	if len(instruments) > 0 {
		// Instrument model, then its mass analyzers
		for _, cvs := range [][]mzml.CVParam{instruments[0].CvPar, instruments[0].Analyzers} {
			for _, cv := range cvs {
				spectraFile.FileProperties = append(spectraFile.FileProperties,
					mzqc.CvParameter{Accession: cv.Accession, Name: cv.Name, Value: nonEmpty(cv.Value)})
			}
		}
	}
	r.Metadata.InputFiles = append(r.Metadata.InputFiles, spectraFile)
	// The raw files the mzML was converted from
	for _, sf := range mzML.SourceFiles() {
		r.Metadata.CvParameters = append(r.Metadata.CvParameters,
			mzqc.CvParameter{Accession: cvSourceDataFile, Name: "source data file", Value: sf.Name})
	}
	r.Metadata.AnalysisSoftware = append(r.Metadata.AnalysisSoftware, opts.Software)

	summary, err := mzML.Summarize(log)
	if err != nil {
		return r, err
	}
	r.QualityMetrics = append(r.QualityMetrics,
		mzqc.QualityMetric{Accession: cvNumMS1, Name: "number of MS1 spectra", Value: summary.MSLevelCount[1]},
		mzqc.QualityMetric{Accession: cvNumMS2, Name: "number of MS2 spectra", Value: summary.MSLevelCount[2]},
	)
	if len(summary.RetentionTimes) > 0 {
		duration := floats.Max(summary.RetentionTimes) - floats.Min(summary.RetentionTimes)
		r.QualityMetrics = append(r.QualityMetrics, mzqc.QualityMetric{
			Accession: cvChromDuration,
			Name:      "chromatography duration",
			Value:     duration,
			Unit:      mzqc.Units{{Accession: uoSecond, Name: "second"}},
		})
	} else {
		log.Warn("no retention times in spectrum file, chromatography duration left out",
			"file", spectra.Path)
	}
	log.Info("described spectra", "file", spectra.Path, "spectra", summary.NumSpecs,
		"ms1", summary.MSLevelCount[1], "ms2", summary.MSLevelCount[2])

	if ident == nil || mzID == nil {
		return r, nil
	}
	if !searchedFile(mzID.SpectraData(), store.BaseName(spectra.Path)) {
		log.Warn("identification file does not list the spectrum file as searched data",
			"file", ident.Path, "spectra", spectra.Path)
	}
	r.Metadata.InputFiles = append(r.Metadata.InputFiles,
		inputFile(*ident, mzqc.CvParameter{Accession: cvMzIdentMLFormat, Name: "mzIdentML format"}))
	for _, sw := range mzID.Software() {
		acc := sw.Accession
		if acc == "" {
			acc = cvAnalysisSoftware
		}
		r.Metadata.AnalysisSoftware = append(r.Metadata.AnalysisSoftware, mzqc.AnalysisSoftware{
			Accession: acc,
			Name:      sw.Name,
			Version:   sw.Version,
			URI:       sw.URI,
		})
	}
	r.QualityMetrics = append(r.QualityMetrics,
		mzqc.QualityMetric{Accession: cvIdentifiedSpectra, Name: "count of identified spectra", Value: mzID.IdentifiedSpectra()},
		mzqc.QualityMetric{Accession: cvIdentifiedPeptforms, Name: "count of identified peptidoforms", Value: mzID.DistinctPeptides()},
	)
	c := checkIdentifications(mzML, mzID, log)
	if c.Unmatched > 0 {
		log.Warn("identifications refer to spectra that are not in the spectrum file",
			"file", ident.Path, "spectra", spectra.Path, "count", c.Unmatched)
	}
	if c.TimeMismatch > 0 {
		log.Warn("identification retention times differ from the spectrum scan times",
			"file", ident.Path, "spectra", spectra.Path, "count", c.TimeMismatch,
			"tolerance", rtTolerance)
	}
	log.Info("described identifications", "file", ident.Path, "psms", mzID.NumIdents())
	return r, nil
}

// Retention times of an identification and its spectrum may differ by
// rounding, in seconds
const rtTolerance = 1.0

// identCheck counts identifications that don't agree with the spectra
type identCheck struct {
	Unmatched    int // spectrum id not in the mzML file
	TimeMismatch int // retention time differs from scan start time
}

// checkIdentifications matches the identifications to the spectra.
// An unreadable retention time only skips the time comparison.
func checkIdentifications(mzML *mzml.MzML, mzID *mzidentml.MzIdentML, log *slog.Logger) identCheck {
	var c identCheck
	for i := 0; i < mzID.NumIdents(); i++ {
		id, err := mzID.Ident(i)
		if err != nil {
			if !errors.Is(err, mzidentml.ErrInvalidRetentionTime) {
				log.Warn("invalid identification", "index", i, "err", err)
				continue
			}
			log.Warn("identification has an invalid retention time", "index", i, "err", err)
		}
		scanIndex, err := mzML.ScanIndex(id.SpecID)
		if err != nil {
			c.Unmatched++
			continue
		}
		if id.RetentionTime < 0 {
			continue
		}
		if rt, err := mzML.RetentionTime(scanIndex); err == nil && math.Abs(rt-id.RetentionTime) > rtTolerance {
			c.TimeMismatch++
		}
	}
	return c
}

func inputFile(f File, format mzqc.CvParameter) mzqc.InputFile {
	in := mzqc.InputFile{
		Location:   location(f.Path),
		Name:       store.BaseName(f.Path),
		FileFormat: format,
	}
	if f.SHA1 != "" {
		in.FileProperties = append(in.FileProperties,
			mzqc.CvParameter{Accession: cvSHA1, Name: "SHA-1", Value: f.SHA1})
	}
	return in
}

// location returns an absolute file URI for local paths
func location(path string) string {
	if store.IsS3(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return "file://" + filepath.ToSlash(abs)
}

// searchedFile reports whether name is one of the searched spectrum
// files. Files without a name are not checked.
func searchedFile(data []mzidentml.SpectraData, name string) bool {
	name = strings.TrimSuffix(name, ".gz")
	for _, sd := range data {
		n := sd.Name
		if n == "" && sd.Location != "" {
			n = store.BaseName(sd.Location)
		}
		if n == "" || strings.EqualFold(strings.TrimSuffix(n, ".gz"), name) {
			return true
		}
	}
	return len(data) == 0
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
