package mzqc

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testDoc = `{
  "mzQC": {
    "version": "1.0.0",
    "creationDate": "2023-01-20T11:33:40Z",
    "contactName": "mwalzer",
    "runQualities": [
      {
        "metadata": {
          "label": "implementation-case demo",
          "inputFiles": [
            {
              "location": "file:///data/run1.mzML",
              "name": "run1.mzML",
              "fileFormat": {"accession": "MS:1000584", "name": "mzML format"},
              "fileProperties": [
                {"accession": "MS:1000747", "name": "completion time", "value": "2017-12-08T00:00:00Z"}
              ]
            }
          ],
          "analysisSoftware": [
            {"accession": "MS:1003357", "name": "simple_qc_metric_calculator", "version": "0", "uri": "https://github.com/MS-Quality-Hub"}
          ]
        },
        "qualityMetrics": [
          // hand edited
          {"accession": "MS:4000059", "name": "number of MS1 spectra", "value": 13405},
          {"accession": "MS:4000053", "name": "chromatography duration", "value": 4189.12,
           "unit": {"accession": "UO:0000010", "name": "second"}},
          {"accession": "MS:4000069", "name": "m/z acquisition range", "value": [400.0, 2000.0],
           "unit": [{"accession": "MS:1000040", "name": "m/z"}, {"accession": "UO:0000221", "name": "dalton"}]},
          {"accession": "MS:4000063", "name": "MS2 known precursor charges fractions",
           "value": {"charge": [1, 2, 3], "fraction": [0.1, 0.6, 0.3]}},
        ]
      }
    ],
    "controlledVocabularies": [
      {"name": "Proteomics Standards Initiative Mass Spectrometry Ontology", "uri": "https://github.com/HUPO-PSI/psi-ms-CV/releases/download/v4.1.130/psi-ms.obo", "version": "4.1.130"}
    ]
  }
}`

func TestReadWrite(t *testing.T) {
	d, err := Read(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	if len(d.RunQualities) != 1 {
		t.Fatalf("got %d runs, expected 1", len(d.RunQualities))
	}
	r := d.RunQualities[0]
	if r.Metadata.Label != "implementation-case demo" {
		t.Errorf("label %q", r.Metadata.Label)
	}
	if len(r.QualityMetrics) != 4 {
		t.Fatalf("got %d metrics, expected 4", len(r.QualityMetrics))
	}
	if v, ok := r.QualityMetrics[0].Value.(json.Number); !ok || v != "13405" {
		t.Errorf("metric value %#v, expected json.Number 13405", r.QualityMetrics[0].Value)
	}
	if diff := cmp.Diff(Units{{Accession: "UO:0000010", Name: "second"}}, r.QualityMetrics[1].Unit); diff != "" {
		t.Errorf("single unit mismatch (-want +got):\n%s", diff)
	}
	if len(r.QualityMetrics[2].Unit) != 2 {
		t.Errorf("got %d units, expected 2", len(r.QualityMetrics[2].Unit))
	}

	var b bytes.Buffer
	if err := d.Write(&b); err != nil {
		t.Fatalf("Write: error return %v", err)
	}
	// Numbers must be written as they were read
	if !strings.Contains(b.String(), `"value": 4189.12`) {
		t.Errorf("value not preserved in output:\n%s", b.String())
	}
	if !strings.Contains(b.String(), `"unit": {`) {
		t.Errorf("single unit not written as object:\n%s", b.String())
	}
	again, err := Read(&b)
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	if !again.RunQualities[0].Equal(r) {
		t.Errorf("document changed after write and read: %s", cmp.Diff(r, again.RunQualities[0]))
	}
}

func TestReadErrors(t *testing.T) {
	_, err := Read(strings.NewReader(`{"notMzQC": {}}`))
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("Read: error %v, expected ErrNoContent", err)
	}
	_, err = Read(strings.NewReader(`{"mzQC": {"runQualities": 3}}`))
	if err == nil {
		t.Errorf("Read: expected error for invalid runQualities")
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{json.Number("1"), json.Number("1"), true},
		{json.Number("1"), json.Number("2"), false},
		{json.Number("1"), json.Number("1.0"), true},
		{json.Number("1e3"), json.Number("1000"), true},
		{json.Number("0.10"), json.Number("0.1"), true},
		{json.Number("9007199254740993"), json.Number("9007199254740992"), false},
		{json.Number("1.5"), 1.5, true},
		{2, json.Number("2"), true},
		{"a", "a", true},
		{"a", json.Number("1"), false},
		{nil, nil, true},
		{nil, "a", false},
		{[]any{"a", json.Number("1")}, []any{"a", json.Number("1")}, true},
		{[]any{"a"}, []any{"a", "b"}, false},
		{map[string]any{"k": []any{true}}, map[string]any{"k": []any{true}}, true},
		{map[string]any{"k": "v"}, map[string]any{"l": "v"}, false},
	}
	for _, tt := range tests {
		if got := valueEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("valueEqual(%#v, %#v) = %v, expected %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWriteRequiredArrays(t *testing.T) {
	d, err := Read(strings.NewReader(`{"mzQC": {"version": "1.0.0",
		"runQualities": [{"metadata": {"label": "bare"}}]}}`))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: error return %v", err)
	}
	for _, field := range []string{"inputFiles", "analysisSoftware", "qualityMetrics", "controlledVocabularies"} {
		if !strings.Contains(string(out), `"`+field+`": []`) {
			t.Errorf("%s not written as an empty array:\n%s", field, out)
		}
	}
	if strings.Contains(string(out), "null") {
		t.Errorf("null in output:\n%s", out)
	}
	// The document itself is left as it was read
	if d.RunQualities[0].QualityMetrics != nil || d.ControlledVocabularies != nil {
		t.Errorf("Write changed the document: %+v", d)
	}
}
