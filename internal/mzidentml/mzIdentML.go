package mzidentml

import (
	"encoding/xml"
	"errors"
)

// Types for parsing mzIdentML

// MzIdentML holds only the part of mzIdentML files
// in which we are interrested
type MzIdentML struct {
	seqID2PepIdx map[string]int
	identList    []identRef
	content      mzIdentMLContent
}

type identRef struct {
	specIDIdx     int // Index into SpectrumIdentificationResult
	specResultIdx int // Index into SpectrumIdentificationItem
}

// Identification is a single peptide spectrum match
type Identification struct {
	PepSeq        string
	Rank          int
	PassThreshold bool
	ModMass       float64
	SpecID        string
	RetentionTime float64 // seconds, -1 if not reported
}

// Accepted reports whether the identification is a rank 1 match that
// passed the threshold of the search engine or FDR filter. Files that
// don't report a rank are treated as rank 1.
func (i Identification) Accepted() bool {
	return i.PassThreshold && i.Rank <= 1
}

type mzIdentMLContent struct {
	XMLName                      xml.Name                       `xml:"MzIdentML"`
	AnalysisSoftware             []analysisSoftware             `xml:"AnalysisSoftwareList>AnalysisSoftware"`
	Peptide                      []peptide                      `xml:"SequenceCollection>Peptide"`
	SpectraData                  []SpectraData                  `xml:"DataCollection>Inputs>SpectraData"`
	SpectrumIdentificationResult []spectrumIdentificationResult `xml:"DataCollection>AnalysisData>SpectrumIdentificationList>SpectrumIdentificationResult"`
}

type analysisSoftware struct {
	ID           string    `xml:"id,attr"`
	Name         string    `xml:"name,attr"`
	Version      string    `xml:"version,attr"`
	URI          string    `xml:"uri,attr"`
	SoftwareName []CVParam `xml:"SoftwareName>cvParam"`
}

// SpectraData references a spectrum file that was searched
type SpectraData struct {
	ID       string    `xml:"id,attr"`
	Name     string    `xml:"name,attr"`
	Location string    `xml:"location,attr"`
	Format   []CVParam `xml:"FileFormat>cvParam"`
}

type peptide struct {
	ID              string `xml:"id,attr"`
	PeptideSequence string
	Modification    []modification
}

type modification struct {
	// Note: monoisotopicMassDelta is optional according the the schema, but
	// appears to be no other way to determine mass shift, as other
	// corresponding cvParam's don't carry this info either
	MonoisotopicMassDelta float64 `xml:"monoisotopicMassDelta,attr"`
}

type spectrumIdentificationResult struct {
	SpectrumID                 string `xml:"spectrumID,attr"`
	SpectrumIdentificationItem []spectrumIdentificationItem
	CvPar                      []CVParam `xml:"cvParam"`
}

type spectrumIdentificationItem struct {
	Rank          int    `xml:"rank,attr"`
	PassThreshold bool   `xml:"passThreshold,attr"`
	PeptideRef    string `xml:"peptide_ref,attr"`
}

// CVParam is a controlled vocabulary term as used in mzIdentML
type CVParam struct {
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitAccession string `xml:"unitAccession,attr"`
}

// Software describes a program that produced the identifications
type Software struct {
	ID, Name, Version, URI string
	Accession              string // CV term of the software name, if any
}

var (
	ErrInvalidIdentIndex = errors.New("mzIdentML: invalid identification index")
	// ErrInvalidRetentionTime is returned together with an otherwise
	// complete identification
	ErrInvalidRetentionTime = errors.New("mzIdentML: invalid retention time")
)
