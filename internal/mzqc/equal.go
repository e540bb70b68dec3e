package mzqc

import (
	"encoding/json"
	"reflect"
)

// Equal reports whether two metadata records describe the same
// input files, software, label and parameters
func (m Metadata) Equal(o Metadata) bool {
	if m.Label != o.Label ||
		len(m.InputFiles) != len(o.InputFiles) ||
		len(m.AnalysisSoftware) != len(o.AnalysisSoftware) ||
		len(m.CvParameters) != len(o.CvParameters) {
		return false
	}
	for i := range m.InputFiles {
		if !m.InputFiles[i].Equal(o.InputFiles[i]) {
			return false
		}
	}
	for i := range m.AnalysisSoftware {
		if !m.AnalysisSoftware[i].Equal(o.AnalysisSoftware[i]) {
			return false
		}
	}
	return cvParamsEqual(m.CvParameters, o.CvParameters)
}

// Equal compares all fields of the input file
func (f InputFile) Equal(o InputFile) bool {
	return f.Location == o.Location &&
		f.Name == o.Name &&
		f.FileFormat.Equal(o.FileFormat) &&
		cvParamsEqual(f.FileProperties, o.FileProperties)
}

// SameFile reports whether both describe the same file by format and
// name, and by location unless ignoreLocation is set
func (f InputFile) SameFile(o InputFile, ignoreLocation bool) bool {
	if f.FileFormat.Accession != o.FileFormat.Accession || f.Name != o.Name {
		return false
	}
	return ignoreLocation || f.Location == o.Location
}

func (s AnalysisSoftware) Equal(o AnalysisSoftware) bool {
	return s.Accession == o.Accession &&
		s.Name == o.Name &&
		s.Description == o.Description &&
		s.Version == o.Version &&
		s.URI == o.URI &&
		valueEqual(s.Value, o.Value)
}

func (c CvParameter) Equal(o CvParameter) bool {
	return c.Accession == o.Accession &&
		c.Name == o.Name &&
		c.Description == o.Description &&
		valueEqual(c.Value, o.Value)
}

// Equal compares accession, value and unit of two metrics
func (q QualityMetric) Equal(o QualityMetric) bool {
	return q.Accession == o.Accession &&
		q.Name == o.Name &&
		q.Description == o.Description &&
		valueEqual(q.Value, o.Value) &&
		cvParamsEqual(q.Unit, o.Unit)
}

// Equal compares metadata and all metrics, in order
func (r RunQuality) Equal(o RunQuality) bool {
	if !r.Metadata.Equal(o.Metadata) || len(r.QualityMetrics) != len(o.QualityMetrics) {
		return false
	}
	for i := range r.QualityMetrics {
		if !r.QualityMetrics[i].Equal(o.QualityMetrics[i]) {
			return false
		}
	}
	return true
}

func cvParamsEqual(a, b []CvParameter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// valueEqual compares decoded JSON values. Numbers compare by value,
// so 1 and 1.0 are equal.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case json.Number:
		if bv, ok := b.(json.Number); ok {
			return numberEqual(av, bv)
		}
		af, err := av.Float64()
		if err != nil {
			return false
		}
		bf, ok := toFloat(b)
		return ok && af == bf
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, exists := bv[k]
			if !exists || !valueEqual(v, w) {
				return false
			}
		}
		return true
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// numberEqual compares two JSON numbers. Integers are compared exactly,
// others as float64.
func numberEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	if ai, err := a.Int64(); err == nil {
		if bi, err := b.Int64(); err == nil {
			return ai == bi
		}
	}
	af, errA := a.Float64()
	bf, errB := b.Float64()
	return errA == nil && errB == nil && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
