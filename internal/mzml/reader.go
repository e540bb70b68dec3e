package mzml

import (
	"encoding/xml"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/net/html/charset"
)

// Read reads mzML file from an io.Reader
func Read(reader io.Reader) (MzML, error) {
	var mzML MzML

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	// We are only interested in mzML content, so skip over indexedmzML
	// and everything else
	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return mzML, tokenErr
		}
		if t, ok := t.(xml.StartElement); ok && t.Name.Local == "mzML" {
			if err := d.DecodeElement(&mzML.content, &t); err != nil {
				return mzML, err
			}
		}
	}

	err := mzML.traverseScan()
	return mzML, err
}

// NumSpecs returns the number of spectra
func (f *MzML) NumSpecs() int {
	return len(f.content.Run.SpectrumList.Spectrum)
}

// RunID returns the id attribute of the run
func (f *MzML) RunID() string {
	return f.content.Run.ID
}

// StartTimeStamp returns the start time of the run as written in the
// file (xs:dateTime), or an empty string
func (f *MzML) StartTimeStamp() string {
	return f.content.Run.StartTimeStamp
}

// SourceFiles returns the source files listed in the file description
func (f *MzML) SourceFiles() []SourceFile {
	return f.content.FileDescription.SourceFile
}

// RetentionTime returns the retention time of a spectrum in seconds
func (f *MzML) RetentionTime(scanIndex int) (float64, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return 0.0, ErrInvalidScanIndex
	}
	for _, scan := range f.content.Run.SpectrumList.Spectrum[scanIndex].ScanList.Scan {
		for _, cvParam := range scan.CvPar {
			if cvParam.Accession == "MS:1000016" {
				retentionTime, err := strconv.ParseFloat(cvParam.Value, 64)
				// Check if the retention time is in minutes, otherwise assume it's seconds
				if cvParam.UnitAccession == "UO:0000031" ||
					cvParam.UnitAccession == "MS:1000038" {
					retentionTime *= 60
				}

				return retentionTime, err
			}
		}
	}
	return -1.0, ErrNoRetentionTime
}

// MSLevel returns the MS level of a scan
func (f *MzML) MSLevel(scanIndex int) (int, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return 0, ErrInvalidScanIndex
	}

	for _, cvParam := range f.content.Run.SpectrumList.Spectrum[scanIndex].CvPar {
		if cvParam.Accession == "MS:1000511" { // ms level
			msLevel, err := strconv.ParseInt(cvParam.Value, 10, 64)
			return int(msLevel), err
		}
	}
	return 1, nil // If nothing else, guess it's MS1
}

// InstrumentConfiguration holds the CV terms of an instrument
// configuration and of its analyzers
type InstrumentConfiguration struct {
	ID        string
	CvPar     []CVParam
	Analyzers []CVParam
}

// Instruments returns the instrument configurations of the file
func (f *MzML) Instruments() ([]InstrumentConfiguration, error) {
	type analyzer struct {
		CvPar []CVParam `xml:"cvParam"`
	}
	type instrumentConfiguration struct {
		ID       string     `xml:"id,attr"`
		CvPar    []CVParam  `xml:"cvParam"`
		Analyzer []analyzer `xml:"componentList>analyzer"`
	}
	type configurations struct {
		Conf []instrumentConfiguration `xml:"instrumentConfiguration"`
	}

	if f.content.InstrumentConfigurationList == nil {
		return nil, nil
	}
	// The raw XML holds a sequence of elements, wrap it so it can be
	// parsed in one go
	XML := f.content.InstrumentConfigurationList.InstrumentConfigurationListXML
	wrapped := make([]byte, 0, len(XML)+7)
	wrapped = append(wrapped, "<l>"...)
	wrapped = append(wrapped, XML...)
	wrapped = append(wrapped, "</l>"...)
	var confs configurations
	if err := xml.Unmarshal(wrapped, &confs); err != nil {
		return nil, err
	}

	var instr []InstrumentConfiguration
	for _, c := range confs.Conf {
		ic := InstrumentConfiguration{ID: c.ID, CvPar: c.CvPar}
		for _, a := range c.Analyzer {
			ic.Analyzers = append(ic.Analyzers, a.CvPar...)
		}
		instr = append(instr, ic)
	}
	return instr, nil
}

// traverseScan traverses all scans,
// collects info of all scans and
// and fills the arrays f.index2id and f.id2Index to make scans accessible
func (f *MzML) traverseScan() error {

	f.index2id = make([]string, f.NumSpecs())
	f.id2Index = make(map[string]int, f.NumSpecs())

	for i := range f.content.Run.SpectrumList.Spectrum {
		if err := f.addSpecToIndex(i); err != nil {
			return err
		}
	}
	return nil
}

func (f *MzML) addSpecToIndex(i int) error {

	if i != f.content.Run.SpectrumList.Spectrum[i].Index {
		return ErrInvalidScanIndex
	}
	f.index2id[i] = f.content.Run.SpectrumList.Spectrum[i].ID
	f.id2Index[f.content.Run.SpectrumList.Spectrum[i].ID] = i
	return nil
}

// ScanIndex converts a scan identifier (the string used in the mzML file)
// into an index that is used to access the scans
func (f *MzML) ScanIndex(scanID string) (int, error) {
	if index, ok := f.id2Index[scanID]; ok {
		return index, nil
	}
	return 0, ErrInvalidScanID
}

// ScanID converts a scan index (used to access the scan data) into a scan id
// (used in the mzML file)
func (f *MzML) ScanID(scanIndex int) (string, error) {
	if scanIndex >= 0 && scanIndex < f.NumSpecs() {
		return f.index2id[scanIndex], nil
	}
	return "", ErrInvalidScanIndex
}

// GetPrecursors returns the mzML precursors for a given scanIndex.
// Only the first precursor list is used.
func (f *MzML) GetPrecursors(scanIndex int) ([]XMLprecursor, error) {
	if scanIndex >= 0 && scanIndex < f.NumSpecs() {
		var p []XMLprecursor
		if f.content.Run.SpectrumList.Spectrum[scanIndex].PrecursorList != nil {
			p = f.content.Run.SpectrumList.Spectrum[scanIndex].PrecursorList[0].Precursor
		}
		return p, nil
	}
	return nil, ErrInvalidScanIndex
}

// Summary holds counts over all spectra of a run
type Summary struct {
	NumSpecs       int
	MSLevelCount   map[int]int
	RetentionTimes []float64 // seconds, spectra without retention time are left out
}

// Summarize counts the spectra per MS level and collects retention
// times. Spectra without scan start time and MSn spectra with more than
// one precursor are logged as warnings.
func (f *MzML) Summarize(log *slog.Logger) (Summary, error) {
	s := Summary{
		NumSpecs:     f.NumSpecs(),
		MSLevelCount: make(map[int]int),
	}
	for i := 0; i < f.NumSpecs(); i++ {
		msLevel, err := f.MSLevel(i)
		if err != nil {
			return s, err
		}
		s.MSLevelCount[msLevel]++
		id, _ := f.ScanID(i)
		rt, err := f.RetentionTime(i)
		switch err {
		case nil:
			s.RetentionTimes = append(s.RetentionTimes, rt)
		case ErrNoRetentionTime:
			log.Warn("spectrum has no scan start time, skipped", "id", id)
		default:
			return s, err
		}
		if msLevel > 1 {
			p, _ := f.GetPrecursors(i)
			if len(p) > 1 {
				log.Warn("spectrum has more than one precursor, using the first",
					"id", id, "precursors", len(p))
			}
		}
	}
	return s, nil
}
