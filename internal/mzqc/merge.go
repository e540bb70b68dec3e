package mzqc

import (
	"fmt"
	"log/slog"
)

// MergeOptions control how runs are matched during a merge
type MergeOptions struct {
	Policy         MatchPolicy
	IgnoreLocation bool // Only used with MatchInputFile
	Logger         *slog.Logger
}

func (o MergeOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Merge merges the run of src into dst and returns dst. Both documents
// must contain at most one run quality; otherwise ErrMultiRun is
// returned and dst is left unchanged. src is never modified, runs and
// metrics taken from it are copies.
func Merge(dst, src *Document, opts MergeOptions) (*Document, error) {
	if len(dst.RunQualities) > 1 {
		return dst, fmt.Errorf("destination has %d runs: %w", len(dst.RunQualities), ErrMultiRun)
	}
	if len(src.RunQualities) > 1 {
		return dst, fmt.Errorf("source has %d runs: %w", len(src.RunQualities), ErrMultiRun)
	}
	log := opts.logger()

	dst.AddVocabularies(src.ControlledVocabularies)
	for _, s := range src.SetQualities {
		dst.SetQualities = append(dst.SetQualities, SetQuality(RunQuality(s).Clone()))
	}

	switch {
	case len(src.RunQualities) == 0:
		log.Debug("source has no runs")
		return dst, nil
	case len(dst.RunQualities) == 0:
		log.Debug("destination has no runs, taking source run")
		dst.RunQualities = append(dst.RunQualities, src.RunQualities[0].Clone())
		return dst, nil
	}

	to := &dst.RunQualities[0]
	from := &src.RunQualities[0]
	rel := Match(to, from, opts.Policy, opts.IgnoreLocation)
	switch rel {
	case SameMetadata:
		to.QualityMetrics = append(to.QualityMetrics, cloneSlice(from.QualityMetrics, QualityMetric.Clone)...)
		Dedupe(to, DedupeMetrics)
	case SameRun:
		m := from.Metadata.Clone()
		to.QualityMetrics = append(to.QualityMetrics, cloneSlice(from.QualityMetrics, QualityMetric.Clone)...)
		to.Metadata.AnalysisSoftware = append(to.Metadata.AnalysisSoftware, m.AnalysisSoftware...)
		mode := DedupeMetrics | DedupeSoftware
		if opts.Policy != MatchInputFile {
			// Matched by label, the runs may have been computed from
			// different files
			to.Metadata.InputFiles = append(to.Metadata.InputFiles, m.InputFiles...)
			mode |= DedupeInputFiles
		}
		Dedupe(to, mode)
	default:
		dst.RunQualities = append(dst.RunQualities, from.Clone())
	}
	log.Debug("merged run", "relation", rel.String(), "policy", opts.Policy.String(),
		"runs", len(dst.RunQualities), "metrics", len(dst.RunQualities[0].QualityMetrics))
	return dst, nil
}

// MergeAll merges documents from left to right:
// Merge(Merge(Merge(d1, d2), d3), d4)...
// None of the documents is modified.
func MergeAll(docs []*Document, opts MergeOptions) (*Document, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	merged := docs[0].Clone()
	for i, d := range docs[1:] {
		var err error
		merged, err = Merge(merged, d, opts)
		if err != nil {
			return nil, fmt.Errorf("merging document %d: %w", i+2, err)
		}
	}
	return merged, nil
}

// Collect returns a new document with header taken from hdr, that
// contains all runs of all documents, in order. Runs are not matched.
func Collect(hdr *Document, docs []*Document) *Document {
	c := *hdr
	c.RunQualities = nil
	c.SetQualities = nil
	c.ControlledVocabularies = append([]ControlledVocabulary(nil), hdr.ControlledVocabularies...)
	for _, d := range docs {
		for _, r := range d.RunQualities {
			c.RunQualities = append(c.RunQualities, r.Clone())
		}
		for _, s := range d.SetQualities {
			c.SetQualities = append(c.SetQualities, SetQuality(RunQuality(s).Clone()))
		}
		c.AddVocabularies(d.ControlledVocabularies)
	}
	return &c
}
