package geo

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern is returned when a filter pattern is not a valid regex.
var ErrInvalidPattern = errors.New("invalid filter pattern")

// FilterSpec selects features whose Attribute matches Pattern. An empty
// pattern selects everything.
type FilterSpec struct {
	Attribute string `json:"attribute" doc:"Property to match against" example:"name"`
	Pattern   string `json:"pattern" doc:"Case-insensitive regular expression" example:"helvetia"`
}

// Apply filters features on s.Attribute with s.Pattern.
func (s FilterSpec) Apply(features []*Feature) ([]*Feature, error) {
	return Filter(features, s.Attribute, s.Pattern)
}

// Filter returns the features whose attribute value contains a
// case-insensitive match of pattern. An empty pattern returns features
// unchanged. An attribute that no feature carries yields an empty result.
func Filter(features []*Feature, attribute, pattern string) ([]*Feature, error) {
	if pattern == "" {
		return features, nil
	}
	if !hasAttribute(features, attribute) {
		return []*Feature{}, nil
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	out := make([]*Feature, 0, len(features))
	for _, f := range features {
		if re.MatchString(f.Properties.String(attribute)) {
			out = append(out, f)
		}
	}
	return out, nil
}

// SelectByName returns the features whose attribute string value is one of
// names, in input order.
func SelectByName(features []*Feature, attribute string, names []string) []*Feature {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	out := make([]*Feature, 0, len(names))
	for _, f := range features {
		v, ok := f.Properties.Get(attribute)
		if !ok {
			continue
		}
		if _, ok := want[StringValue(v)]; ok {
			out = append(out, f)
		}
	}
	return out
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

func hasAttribute(features []*Feature, attribute string) bool {
	for _, f := range features {
		if _, ok := f.Properties.Get(attribute); ok {
			return true
		}
	}
	return false
}
