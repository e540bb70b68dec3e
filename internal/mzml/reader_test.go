package mzml

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Small indexed mzML with two MS1 and two MS2 spectra. The third
// spectrum has no scan start time, the fourth has two precursors.
const testMzML = `<?xml version="1.0" encoding="ISO-8859-1"?>
<indexedmzML xmlns="http://psi.hupo.org/ms/mzml">
<mzML xmlns="http://psi.hupo.org/ms/mzml" version="1.1.0">
  <fileDescription>
    <fileContent>
      <cvParam cvRef="MS" accession="MS:1000579" name="MS1 spectrum" value=""/>
    </fileContent>
    <sourceFileList count="1">
      <sourceFile id="RAW1" name="run1.raw" location="file:///C:/data">
        <cvParam cvRef="MS" accession="MS:1000569" name="SHA-1" value="71be39fb2700ab2f3c8b2234b91274968b6899b1"/>
      </sourceFile>
    </sourceFileList>
  </fileDescription>
  <instrumentConfigurationList count="1">
    <instrumentConfiguration id="IC1">
      <cvParam cvRef="MS" accession="MS:1001911" name="Q Exactive" value=""/>
      <componentList count="3">
        <source order="1"><cvParam cvRef="MS" accession="MS:1000073" name="electrospray ionization" value=""/></source>
        <analyzer order="2"><cvParam cvRef="MS" accession="MS:1000484" name="orbitrap" value=""/></analyzer>
        <detector order="3"><cvParam cvRef="MS" accession="MS:1000624" name="inductive detector" value=""/></detector>
      </componentList>
    </instrumentConfiguration>
  </instrumentConfigurationList>
  <run id="run1" defaultInstrumentConfigurationRef="IC1" startTimeStamp="2017-12-08T10:11:12Z">
    <spectrumList count="4">
      <spectrum index="0" id="scan=1" defaultArrayLength="0">
        <cvParam cvRef="MS" accession="MS:1000511" name="ms level" value="1"/>
        <cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/>
        <scanList count="1">
          <scan><cvParam cvRef="MS" accession="MS:1000016" name="scan start time" value="0.5" unitCvRef="UO" unitAccession="UO:0000031" unitName="minute"/></scan>
        </scanList>
      </spectrum>
      <spectrum index="1" id="scan=2" defaultArrayLength="0">
        <cvParam cvRef="MS" accession="MS:1000511" name="ms level" value="2"/>
        <scanList count="1">
          <scan><cvParam cvRef="MS" accession="MS:1000016" name="scan start time" value="31.25" unitCvRef="UO" unitAccession="UO:0000010" unitName="second"/></scan>
        </scanList>
        <precursorList count="1">
          <precursor spectrumRef="scan=1">
            <selectedIonList count="1"><selectedIon><cvParam cvRef="MS" accession="MS:1000744" name="selected ion m/z" value="445.12"/></selectedIon></selectedIonList>
          </precursor>
        </precursorList>
      </spectrum>
      <spectrum index="2" id="scan=3" defaultArrayLength="0">
        <cvParam cvRef="MS" accession="MS:1000511" name="ms level" value="1"/>
        <scanList count="1"><scan/></scanList>
      </spectrum>
      <spectrum index="3" id="scan=4" defaultArrayLength="0">
        <cvParam cvRef="MS" accession="MS:1000511" name="ms level" value="2"/>
        <scanList count="1">
          <scan><cvParam cvRef="MS" accession="MS:1000016" name="scan start time" value="120"/></scan>
        </scanList>
        <precursorList count="2">
          <precursor spectrumRef="scan=3"/>
          <precursor spectrumRef="scan=3"/>
        </precursorList>
      </spectrum>
    </spectrumList>
  </run>
</mzML>
<indexList count="0"/>
</indexedmzML>
`

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader(testMzML))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	if n := f.NumSpecs(); n != 4 {
		t.Errorf("NumSpecs: %d, should be 4", n)
	}
	if f.RunID() != "run1" {
		t.Errorf("RunID: %q", f.RunID())
	}
	if f.StartTimeStamp() != "2017-12-08T10:11:12Z" {
		t.Errorf("StartTimeStamp: %q", f.StartTimeStamp())
	}
	sf := f.SourceFiles()
	if len(sf) != 1 || sf[0].Name != "run1.raw" || sf[0].CvPar[0].Accession != "MS:1000569" {
		t.Errorf("SourceFiles: %+v", sf)
	}

	rt, err := f.RetentionTime(0)
	if err != nil {
		t.Errorf("RetentionTime: error return %v", err)
	}
	if math.Abs(rt-30.0) > 1e-9 {
		t.Errorf("RetentionTime: %f, should be 30 (0.5 minute)", rt)
	}
	_, err = f.RetentionTime(2)
	if err != ErrNoRetentionTime {
		t.Errorf("RetentionTime: error return %v, should be ErrNoRetentionTime", err)
	}
	_, err = f.RetentionTime(4)
	if err != ErrInvalidScanIndex {
		t.Errorf("RetentionTime: error return %v, should be ErrInvalidScanIndex", err)
	}

	msLevel, err := f.MSLevel(1)
	if err != nil || msLevel != 2 {
		t.Errorf("MSLevel: %d, %v, should be 2", msLevel, err)
	}

	scanIndex, err := f.ScanIndex(`scan=3`)
	if err != nil || scanIndex != 2 {
		t.Errorf("ScanIndex: %d, %v, should be 2", scanIndex, err)
	}
	_, err = f.ScanIndex(`scan=33`)
	if err != ErrInvalidScanID {
		t.Errorf("ScanIndex: error return %v, should be ErrInvalidScanID", err)
	}
	scanID, err := f.ScanID(3)
	if err != nil || scanID != `scan=4` {
		t.Errorf("ScanID: %s, %v, should be scan=4", scanID, err)
	}

	p, err := f.GetPrecursors(1)
	if err != nil || len(p) != 1 || p[0].SpectrumRef != "scan=1" {
		t.Errorf("GetPrecursors: %+v, %v", p, err)
	}
}

func TestInstruments(t *testing.T) {
	f, err := Read(strings.NewReader(testMzML))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	instr, err := f.Instruments()
	if err != nil {
		t.Fatalf("Instruments: error return %v", err)
	}
	if len(instr) != 1 || instr[0].ID != "IC1" {
		t.Fatalf("Instruments: %+v", instr)
	}
	if instr[0].CvPar[0].Accession != "MS:1001911" {
		t.Errorf("instrument model %+v", instr[0].CvPar)
	}
	var analyzers []string
	for _, a := range instr[0].Analyzers {
		analyzers = append(analyzers, a.Accession)
	}
	if diff := cmp.Diff([]string{"MS:1000484"}, analyzers); diff != "" {
		t.Errorf("analyzers mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize(t *testing.T) {
	f, err := Read(strings.NewReader(testMzML))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	var logBuf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logBuf, nil))
	s, err := f.Summarize(log)
	if err != nil {
		t.Fatalf("Summarize: error return %v", err)
	}
	want := Summary{
		NumSpecs:       4,
		MSLevelCount:   map[int]int{1: 2, 2: 2},
		RetentionTimes: []float64{30, 31.25, 120},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	out := logBuf.String()
	if !strings.Contains(out, "no scan start time") || !strings.Contains(out, "more than one precursor") {
		t.Errorf("missing warnings in log output:\n%s", out)
	}
}

func TestReadInvalidIndex(t *testing.T) {
	bad := strings.Replace(testMzML, `index="1"`, `index="7"`, 1)
	if _, err := Read(strings.NewReader(bad)); err != ErrInvalidScanIndex {
		t.Errorf("Read: error return %v, should be ErrInvalidScanIndex", err)
	}
}
