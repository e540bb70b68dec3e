package mzqc

import (
	"fmt"
	"strings"
)

// MatchPolicy selects how runs that do not have identical metadata are
// recognized as the same run
type MatchPolicy int

const (
	// MatchLabel treats runs with the same non-empty label as the same run
	MatchLabel MatchPolicy = iota
	// MatchInputFile treats runs with the same first input file
	// (format and name, and location unless ignored) as the same run
	MatchInputFile
)

func (p MatchPolicy) String() string {
	switch p {
	case MatchLabel:
		return "label"
	case MatchInputFile:
		return "inputfile"
	}
	return fmt.Sprintf("MatchPolicy(%d)", int(p))
}

// ParseMatchPolicy converts the name of a policy, as used in
// configuration files and on the command line
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(s) {
	case "", "label":
		return MatchLabel, nil
	case "inputfile", "input-file", "file":
		return MatchInputFile, nil
	}
	return MatchLabel, fmt.Errorf("unknown match policy %q", s)
}

// Relation is the outcome of matching two runs
type Relation int

const (
	// Unrelated runs are kept as separate runs
	Unrelated Relation = iota
	// SameMetadata runs only get their metrics combined
	SameMetadata
	// SameRun runs get metrics and provenance combined
	SameRun
)

func (r Relation) String() string {
	switch r {
	case SameMetadata:
		return "same metadata"
	case SameRun:
		return "same run"
	}
	return "unrelated"
}

// Match classifies the relation between two runs. Identical metadata
// takes precedence over the policy specific check.
func Match(a, b *RunQuality, policy MatchPolicy, ignoreLocation bool) Relation {
	if a.Metadata.Equal(b.Metadata) {
		return SameMetadata
	}
	switch policy {
	case MatchInputFile:
		fa, fb := a.Metadata.InputFiles, b.Metadata.InputFiles
		if len(fa) > 0 && len(fb) > 0 && fa[0].SameFile(fb[0], ignoreLocation) {
			return SameRun
		}
	default:
		if a.Metadata.Label != "" && a.Metadata.Label == b.Metadata.Label {
			return SameRun
		}
	}
	return Unrelated
}
