package mzml

import (
	"encoding/xml"
	"errors"
)

// MzML wraps the run level contents of an mzML file. Peak data is
// not decoded, only the spectrum descriptions are kept.
type MzML struct {
	content  mzMLContent
	index2id []string
	id2Index map[string]int
}

// The mzML content that we read. Only the parts needed to describe
// the run are parsed.
type mzMLContent struct {
	XMLName                     xml.Name                     `xml:"http://psi.hupo.org/ms/mzml mzML"`
	FileDescription             fileDescription              `xml:"fileDescription"`
	InstrumentConfigurationList *instrumentConfigurationList `xml:"instrumentConfigurationList"`
	Run                         run                          `xml:"run"`
}

type fileDescription struct {
	SourceFile []SourceFile `xml:"sourceFileList>sourceFile"`
}

// SourceFile describes a file from which the mzML was converted
type SourceFile struct {
	ID       string    `xml:"id,attr"`
	Name     string    `xml:"name,attr"`
	Location string    `xml:"location,attr"`
	CvPar    []CVParam `xml:"cvParam"`
}

type instrumentConfigurationList struct {
	Count                          int    `xml:"count,attr,omitempty"`
	InstrumentConfigurationListXML []byte `xml:",innerxml"`
}

type run struct {
	ID                                string       `xml:"id,attr,omitempty"`
	DefaultInstrumentConfigurationRef string       `xml:"defaultInstrumentConfigurationRef,attr,omitempty"`
	StartTimeStamp                    string       `xml:"startTimeStamp,attr,omitempty"`
	SpectrumList                      spectrumList `xml:"spectrumList,omitempty"`
}

type spectrumList struct {
	Count    int        `xml:"count,attr,omitempty"`
	Spectrum []spectrum `xml:"spectrum,omitempty"`
}

type spectrum struct {
	Index              int             `xml:"index,attr"`
	ID                 string          `xml:"id,attr"`
	DefaultArrayLength int64           `xml:"defaultArrayLength,attr"`
	CvPar              []CVParam       `xml:"cvParam,omitempty"`
	ScanList           scanList        `xml:"scanList"`
	PrecursorList      []precursorList `xml:"precursorList,omitempty"`
}

type scanList struct {
	Count int       `xml:"count,attr,omitempty"`
	CvPar []CVParam `xml:"cvParam,omitempty"`
	Scan  []scan    `xml:"scan"`
}

type scan struct {
	InstrConfRef string    `xml:"instrumentConfigurationRef,attr,omitempty"`
	CvPar        []CVParam `xml:"cvParam,omitempty"`
}

type precursorList struct {
	Count     int            `xml:"count,attr,omitempty"`
	Precursor []XMLprecursor `xml:"precursor"`
}

// XMLprecursor contains info for the correspondingly named tag in the mzML file
type XMLprecursor struct {
	SpectrumRef     string          `xml:"spectrumRef,attr,omitempty"`
	SelectedIonList selectedIonList `xml:"selectedIonList"`
}

type selectedIonList struct {
	Count       int           `xml:"count,attr,omitempty"`
	SelectedIon []selectedIon `xml:"selectedIon"`
}

type selectedIon struct {
	CvPar []CVParam `xml:"cvParam,omitempty"`
}

// CVParam contains values and attributes of a mzML Controlled Vocabulary term
// (http://www.peptideatlas.org/tmp/mzML1.1.0.html)
type CVParam struct {
	Accession     string `xml:"accession,attr,omitempty"`
	Name          string `xml:"name,attr,omitempty"`
	Value         string `xml:"value,attr,omitempty"`
	UnitCvRef     string `xml:"unitCvRef,attr,omitempty"`
	UnitAccession string `xml:"unitAccession,attr,omitempty"`
	UnitName      string `xml:"unitName,attr,omitempty"`
}

var (
	// ErrInvalidScanID means an invalid scan id is supplied
	ErrInvalidScanID = errors.New("MzML: invalid scan id")
	// ErrInvalidScanIndex means an invalid scan index is supplied
	ErrInvalidScanIndex = errors.New("MzML: invalid scan index")
	// ErrNoRetentionTime means a spectrum has no scan start time
	ErrNoRetentionTime = errors.New("MzML: no scan start time")
)
