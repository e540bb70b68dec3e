package mzidentml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"
)

// Read reads mzIdentML content from io.reader
func Read(reader io.Reader) (MzIdentML, error) {
	var mzIdentML MzIdentML
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	err := d.Decode(&mzIdentML.content)
	if err != nil {
		return mzIdentML, err
	}
	mzIdentML.buildPepID2Sequence()
	mzIdentML.buildIdentList()
	return mzIdentML, err
}

func (m *MzIdentML) buildPepID2Sequence() {
	m.seqID2PepIdx = make(map[string]int, len(m.content.Peptide))
	for i, p := range m.content.Peptide {
		m.seqID2PepIdx[p.ID] = i
	}
}

func (m *MzIdentML) buildIdentList() {
	for i := range m.content.SpectrumIdentificationResult {
		for j := range m.content.SpectrumIdentificationResult[i].SpectrumIdentificationItem {
			var iRef identRef
			iRef.specIDIdx = i
			iRef.specResultIdx = j
			m.identList = append(m.identList, iRef)
		}
	}
}

// NumIdents returns the total number of identifications in the mzIdentML file
// Note that for some spectra, multiple identifications may be present
// The identifications can be accessed using the Ident() method, which takes
// an index as argument. The index runs from 0 to NumIdents()-1
func (m *MzIdentML) NumIdents() int {
	return len(m.identList)
}

// Ident returns a spectrum identification from the mzIdentML file.
// Parameter i is the index of the identification to return. The index runs
// from 0 to NumIdents()-1
// When the retention time can't be parsed, the identification is
// returned with RetentionTime -1 and an error wrapping
// ErrInvalidRetentionTime.
func (m *MzIdentML) Ident(i int) (Identification, error) {

	var ident Identification

	if i < 0 || i >= len(m.identList) {
		return ident, ErrInvalidIdentIndex
	}
	result := &m.content.SpectrumIdentificationResult[m.identList[i].specIDIdx]
	item := &result.SpectrumIdentificationItem[m.identList[i].specResultIdx]

	if pepIdx, ok := m.seqID2PepIdx[item.PeptideRef]; ok {
		ident.PepSeq = m.content.Peptide[pepIdx].PeptideSequence
		for _, mod := range m.content.Peptide[pepIdx].Modification {
			ident.ModMass += mod.MonoisotopicMassDelta
		}
	}
	ident.Rank = item.Rank
	ident.PassThreshold = item.PassThreshold
	ident.SpecID = result.SpectrumID
	ident.RetentionTime = float64(-1)
	prio := math.MaxInt32
	for _, cv := range result.CvPar {
		// There are multiple CV terms that can be used to report the
		// retention time. In order of decreasing preference we use:
		// 1. MS:1000016 - scan start time
		// 2. MS:1000894 - retention time
		// 3. MS:1000826 - elution time
		// 4. MS:1001114 - retention time (deprecated)
		p, isTime := timeTermPrio[cv.Accession]
		if !isTime || p >= prio {
			continue
		}
		prio = p
		retentionTime, err := strconv.ParseFloat(cv.Value, 64)
		if err != nil {
			ident.RetentionTime = -1
			return ident, fmt.Errorf("%w %q for spectrum %s", ErrInvalidRetentionTime, cv.Value, ident.SpecID)
		}
		// Check if the retention time is in minutes, otherwise assume it's seconds
		if cv.UnitAccession == "UO:0000031" || cv.UnitAccession == "MS:1000038" {
			retentionTime *= 60
		}
		ident.RetentionTime = retentionTime
	}

	return ident, nil
}

var timeTermPrio = map[string]int{
	"MS:1000016": 1,
	"MS:1000894": 2,
	"MS:1000826": 3,
	"MS:1001114": 4,
}

// IdentifiedSpectra returns the number of spectra with at least one
// accepted identification
func (m *MzIdentML) IdentifiedSpectra() int {
	n := 0
	for i := range m.content.SpectrumIdentificationResult {
		items := m.content.SpectrumIdentificationResult[i].SpectrumIdentificationItem
		for j := range items {
			if (Identification{Rank: items[j].Rank, PassThreshold: items[j].PassThreshold}).Accepted() {
				n++
				break
			}
		}
	}
	return n
}

// DistinctPeptides returns the number of different peptidoforms
// (sequence and modification mass) among the accepted identifications
func (m *MzIdentML) DistinctPeptides() int {
	seen := make(map[string]bool)
	for i := 0; i < m.NumIdents(); i++ {
		// A bad retention time doesn't affect the peptide
		ident, err := m.Ident(i)
		if err != nil && !errors.Is(err, ErrInvalidRetentionTime) {
			continue
		}
		if !ident.Accepted() || ident.PepSeq == "" {
			continue
		}
		seen[ident.PepSeq+"/"+strconv.FormatFloat(ident.ModMass, 'f', 4, 64)] = true
	}
	return len(seen)
}

// SpectraData returns the spectrum files referenced as search input
func (m *MzIdentML) SpectraData() []SpectraData {
	return m.content.SpectraData
}

// Software returns the analysis software listed in the file
func (m *MzIdentML) Software() []Software {
	var sw []Software
	for _, s := range m.content.AnalysisSoftware {
		e := Software{ID: s.ID, Name: s.Name, Version: s.Version, URI: s.URI}
		if len(s.SoftwareName) > 0 {
			e.Accession = s.SoftwareName[0].Accession
			if e.Name == "" {
				e.Name = s.SoftwareName[0].Name
			}
		}
		sw = append(sw, e)
	}
	return sw
}
