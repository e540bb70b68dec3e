package mzqc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
)

// The mzQC content is wrapped in a single "mzQC" object
type envelope struct {
	MzQC *Document `json:"mzQC"`
}

// Read reads an mzQC document from an io.Reader. Comments and trailing
// commas, as often found in hand edited files, are accepted.
func Read(reader io.Reader) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	d := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	// Keep numbers as written, so values are not altered by a merge
	d.UseNumber()
	var env envelope
	if err := d.Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding mzQC: %w", err)
	}
	if env.MzQC == nil {
		return nil, ErrNoContent
	}
	return env.MzQC, nil
}

// Write writes the document as indented JSON. Lists that mzQC requires
// are written as empty arrays when missing.
func (d *Document) Write(writer io.Writer) error {
	e := json.NewEncoder(writer)
	e.SetIndent(``, `  `) // Make output easier to read for humans
	e.SetEscapeHTML(false)
	return e.Encode(envelope{MzQC: d.withArrays()})
}

// withArrays returns a shallow copy of d without nil required lists
func (d *Document) withArrays() *Document {
	c := *d
	c.ControlledVocabularies = nonNil(c.ControlledVocabularies)
	if d.RunQualities != nil {
		c.RunQualities = make([]RunQuality, len(d.RunQualities))
		for i, r := range d.RunQualities {
			c.RunQualities[i] = r.withArrays()
		}
	}
	if d.SetQualities != nil {
		c.SetQualities = make([]SetQuality, len(d.SetQualities))
		for i, s := range d.SetQualities {
			c.SetQualities[i] = SetQuality(RunQuality(s).withArrays())
		}
	}
	return &c
}

func (r RunQuality) withArrays() RunQuality {
	r.Metadata.InputFiles = nonNil(r.Metadata.InputFiles)
	r.Metadata.AnalysisSoftware = nonNil(r.Metadata.AnalysisSoftware)
	r.QualityMetrics = nonNil(r.QualityMetrics)
	return r
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

// Bytes returns the JSON encoding of the document
func (d *Document) Bytes() ([]byte, error) {
	var b bytes.Buffer
	if err := d.Write(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalJSON accepts a single CV term or a list of CV terms
func (u *Units) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`null`)) {
		*u = nil
		return nil
	}
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	if len(data) > 0 && data[0] == '[' {
		var list []CvParameter
		if err := d.Decode(&list); err != nil {
			return err
		}
		*u = list
		return nil
	}
	var single CvParameter
	if err := d.Decode(&single); err != nil {
		return err
	}
	*u = Units{single}
	return nil
}

// MarshalJSON writes a single unit as an object, and more as a list
func (u Units) MarshalJSON() ([]byte, error) {
	switch len(u) {
	case 0:
		return []byte(`null`), nil
	case 1:
		return json.Marshal(u[0])
	}
	return json.Marshal([]CvParameter(u))
}
