package geo

import (
	"bytes"
	"encoding/json"
)

const (
	// ExportMediaType is the content type of exported documents.
	ExportMediaType = "application/geo+json"
	// ExportFileName is the suggested download name.
	ExportFileName = "filtered.geojson"
)

// ExportJSON re-serializes fc with its features array replaced by features.
// Every other top-level member is written back unchanged and in order, and
// features decoded from a document are written exactly as they were read.
func ExportJSON(fc *FeatureCollection, features []*Feature) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range fc.members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if m.Key != featuresKey {
			buf.Write(m.Value)
			continue
		}
		buf.WriteByte('[')
		for n, f := range features {
			if n > 0 {
				buf.WriteByte(',')
			}
			b, err := f.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ExportFiltered filters fc and exports the matches. It returns the
// document and the number of exported features.
func ExportFiltered(fc *FeatureCollection, spec FilterSpec) ([]byte, int, error) {
	features, err := spec.Apply(fc.Features)
	if err != nil {
		return nil, 0, err
	}
	b, err := ExportJSON(fc, features)
	if err != nil {
		return nil, 0, err
	}
	return b, len(features), nil
}
