package mzqc

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := *d
	c.RunQualities = cloneSlice(d.RunQualities, RunQuality.Clone)
	c.SetQualities = cloneSlice(d.SetQualities, func(s SetQuality) SetQuality {
		return SetQuality(RunQuality(s).Clone())
	})
	c.ControlledVocabularies = cloneSlice(d.ControlledVocabularies,
		func(cv ControlledVocabulary) ControlledVocabulary { return cv })
	return &c
}

// Clone returns a deep copy of the run quality
func (r RunQuality) Clone() RunQuality {
	return RunQuality{
		Metadata:       r.Metadata.Clone(),
		QualityMetrics: cloneSlice(r.QualityMetrics, QualityMetric.Clone),
	}
}

// Clone returns a deep copy of the metadata
func (m Metadata) Clone() Metadata {
	return Metadata{
		Label:            m.Label,
		InputFiles:       cloneSlice(m.InputFiles, InputFile.Clone),
		AnalysisSoftware: cloneSlice(m.AnalysisSoftware, AnalysisSoftware.Clone),
		CvParameters:     cloneSlice(m.CvParameters, CvParameter.Clone),
	}
}

func (f InputFile) Clone() InputFile {
	f.FileFormat = f.FileFormat.Clone()
	f.FileProperties = cloneSlice(f.FileProperties, CvParameter.Clone)
	return f
}

func (s AnalysisSoftware) Clone() AnalysisSoftware {
	s.Value = cloneValue(s.Value)
	return s
}

func (c CvParameter) Clone() CvParameter {
	c.Value = cloneValue(c.Value)
	return c
}

func (q QualityMetric) Clone() QualityMetric {
	q.Value = cloneValue(q.Value)
	q.Unit = cloneSlice(q.Unit, CvParameter.Clone)
	return q
}

// cloneSlice keeps nil and empty slices apart, so a clone compares
// equal to the original with cmp
func cloneSlice[S ~[]E, E any](s S, clone func(E) E) S {
	if s == nil {
		return nil
	}
	c := make(S, len(s))
	for i, e := range s {
		c[i] = clone(e)
	}
	return c
}

// cloneValue copies the containers of a decoded JSON value, scalars
// are immutable and shared
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = cloneValue(e)
		}
		return c
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, e := range t {
			c[k] = cloneValue(e)
		}
		return c
	}
	return v
}
