package extract

import (
	"github.com/joseph-ayodele/wildsync/constants"
)

// Fields is the flat map an extractor produces before reconciliation.
// Values are float64, int64 or string depending on the field; absent keys mean "not recovered".
type Fields map[constants.Field]any

// Has reports whether f was recovered.
func (fs Fields) Has(f constants.Field) bool {
	_, ok := fs[f]
	return ok
}

// Float returns a numeric field as float64.
func (fs Fields) Float(f constants.Field) (float64, bool) {
	v, ok := fs[f]
	if !ok {
		return 0, false
	}
	return ToNumeric(v)
}

// Int returns a numeric field truncated to an integer.
func (fs Fields) Int(f constants.Field) (int64, bool) {
	v, ok := fs[f]
	if !ok {
		return 0, false
	}
	return ToInteger(v)
}

// Text returns a text field.
func (fs Fields) Text(f constants.Field) (string, bool) {
	v, ok := fs[f].(string)
	return v, ok
}

// Merge copies every key of other into fs, overwriting existing values.
func (fs Fields) Merge(other Fields) {
	for k, v := range other {
		fs[k] = v
	}
}

// Set stores raw under f using the field's value kind. Values that fail coercion are dropped.
func (fs Fields) Set(f constants.Field, raw any) bool {
	switch {
	case constants.IsTextField(f):
		s, ok := textValue(raw)
		if !ok {
			return false
		}
		fs[f] = s
	case constants.IsIntegerField(f):
		n, ok := ToInteger(raw)
		if !ok {
			return false
		}
		fs[f] = n
	default:
		n, ok := ToNumeric(raw)
		if !ok {
			return false
		}
		fs[f] = n
	}
	return true
}
