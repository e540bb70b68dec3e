package mzqc

// DedupeMode selects which lists of a run are deduplicated
type DedupeMode int

const (
	// DedupeMetrics removes metrics with an accession seen before
	DedupeMetrics DedupeMode = 1 << iota
	// DedupeInputFiles removes input files with a location seen before
	DedupeInputFiles
	// DedupeSoftware removes software with an accession seen before
	DedupeSoftware

	DedupeAll = DedupeMetrics | DedupeInputFiles | DedupeSoftware
)

// Dedupe removes duplicate entries from the run, keeping the first
// occurrence and the order of the remaining entries
func Dedupe(r *RunQuality, mode DedupeMode) {
	if mode&DedupeMetrics != 0 {
		r.QualityMetrics = keepFirst(r.QualityMetrics,
			func(q QualityMetric) string { return q.Accession })
	}
	if mode&DedupeInputFiles != 0 {
		r.Metadata.InputFiles = keepFirst(r.Metadata.InputFiles,
			func(f InputFile) string { return f.Location })
	}
	if mode&DedupeSoftware != 0 {
		r.Metadata.AnalysisSoftware = keepFirst(r.Metadata.AnalysisSoftware,
			func(s AnalysisSoftware) string { return s.Accession })
	}
}

// Dedupe deduplicates every run of the document
func (d *Document) Dedupe(mode DedupeMode) {
	for i := range d.RunQualities {
		Dedupe(&d.RunQualities[i], mode)
	}
}

// keepFirst filters s in place
func keepFirst[T any](s []T, key func(T) string) []T {
	seen := make(map[string]bool, len(s))
	out := s[:0]
	for _, e := range s {
		k := key(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
