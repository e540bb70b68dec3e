package mzqc

import (
	"errors"
	"time"
)

// Types for the mzQC 1.0 document structure
// (https://github.com/HUPO-PSI/mzQC)

// Default values for new documents
const (
	DefaultVersion = "1.0.0"
	DefaultCvName  = "PSI-MS"
	DefaultCvURI   = "https://github.com/HUPO-PSI/psi-ms-CV/releases/download/v4.1.130/psi-ms.obo"
	DefaultCvVer   = "v4.1.130"
)

// Document is the content of the top level "mzQC" object
type Document struct {
	Version                string                 `json:"version"`
	CreationDate           string                 `json:"creationDate,omitempty"`
	ContactName            string                 `json:"contactName,omitempty"`
	ContactAddress         string                 `json:"contactAddress,omitempty"`
	Description            string                 `json:"description,omitempty"`
	RunQualities           []RunQuality           `json:"runQualities,omitempty"`
	SetQualities           []SetQuality           `json:"setQualities,omitempty"`
	ControlledVocabularies []ControlledVocabulary `json:"controlledVocabularies"`
}

// RunQuality holds the metrics of a single run
type RunQuality struct {
	Metadata       Metadata        `json:"metadata"`
	QualityMetrics []QualityMetric `json:"qualityMetrics"`
}

// SetQuality holds the metrics of a set of runs. Sets are carried
// through merges unchanged.
type SetQuality struct {
	Metadata       Metadata        `json:"metadata"`
	QualityMetrics []QualityMetric `json:"qualityMetrics"`
}

// Metadata describes where the metrics of a run come from
type Metadata struct {
	Label            string             `json:"label,omitempty"`
	InputFiles       []InputFile        `json:"inputFiles"`
	AnalysisSoftware []AnalysisSoftware `json:"analysisSoftware"`
	CvParameters     []CvParameter      `json:"cvParameters,omitempty"`
}

// InputFile describes a file the metrics were computed from
type InputFile struct {
	Location       string        `json:"location"`
	Name           string        `json:"name"`
	FileFormat     CvParameter   `json:"fileFormat"`
	FileProperties []CvParameter `json:"fileProperties,omitempty"`
}

// AnalysisSoftware is a CV term for a program, with version and URI
type AnalysisSoftware struct {
	Accession   string `json:"accession"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
	Version     string `json:"version"`
	URI         string `json:"uri"`
}

// QualityMetric is a single QC measurement. Value can be any JSON value,
// numbers are kept as json.Number.
type QualityMetric struct {
	Accession   string `json:"accession"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
	Unit        Units  `json:"unit,omitempty"`
}

// Units of a metric value. In JSON this is either a single CV term
// or a list of CV terms.
type Units []CvParameter

// CvParameter is a controlled vocabulary term with optional value
type CvParameter struct {
	Accession   string `json:"accession"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
}

// ControlledVocabulary references an ontology used in the document
type ControlledVocabulary struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Version string `json:"version,omitempty"`
}

var (
	// ErrMultiRun is returned when a document with more than one run
	// quality is passed to a single run merge
	ErrMultiRun = errors.New("mzQC: merge not implemented for multi-run documents")
	// ErrNoDocuments is returned when there is nothing to merge
	ErrNoDocuments = errors.New("mzQC: no documents")
	// ErrNoContent means the input is not an mzQC document
	ErrNoContent = errors.New("mzQC: missing mzQC object")
)

// New creates an empty document with the given header fields. When no
// vocabulary is given, the PSI-MS vocabulary is used.
func New(contactName, contactAddress, description string,
	cvs ...ControlledVocabulary) *Document {
	if len(cvs) == 0 {
		cvs = []ControlledVocabulary{PSIMS()}
	}
	return &Document{
		Version:                DefaultVersion,
		CreationDate:           time.Now().UTC().Format(time.RFC3339),
		ContactName:            contactName,
		ContactAddress:         contactAddress,
		Description:            description,
		ControlledVocabularies: cvs,
	}
}

// PSIMS returns the default PSI-MS controlled vocabulary reference
func PSIMS() ControlledVocabulary {
	return ControlledVocabulary{
		Name:    DefaultCvName,
		URI:     DefaultCvURI,
		Version: DefaultCvVer,
	}
}

// AddVocabularies appends the vocabularies that are not yet present
func (d *Document) AddVocabularies(cvs []ControlledVocabulary) {
outer:
	for _, cv := range cvs {
		for _, have := range d.ControlledVocabularies {
			if have == cv {
				continue outer
			}
		}
		d.ControlledVocabularies = append(d.ControlledVocabularies, cv)
	}
}
