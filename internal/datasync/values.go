package datasync

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// BasicFieldSource exposes named scalar attributes for reading. Both the
// personal profile and the employee datamodels satisfy it.
type BasicFieldSource interface {
	FieldValue(name string) (interface{}, bool)
}

// BasicFieldSink additionally accepts writes. The engine needs to read the
// current destination value for change detection, so the sink includes the
// source capability.
type BasicFieldSink interface {
	BasicFieldSource
	SetFieldValue(name string, value interface{}) error
}

// SerializeValue turns a field value into its audit-log string form:
// primitives via strconv, dates as RFC 3339, anything else as JSON. A nil
// value stays nil so the log can distinguish null from empty string.
func SerializeValue(v interface{}) *string {
	if v == nil {
		return nil
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case time.Time:
		s = val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return nil
		}
		s = val.Format(time.RFC3339)
	case bool:
		s = strconv.FormatBool(val)
	case int:
		s = strconv.Itoa(val)
	case int32:
		s = strconv.FormatInt(int64(val), 10)
	case int64:
		s = strconv.FormatInt(val, 10)
	case float32:
		s = strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprintf("%v", val)
		} else {
			s = string(b)
		}
	}
	return &s
}

// valuesEqual compares two field values by serialized form. Null and empty
// string are distinct values: a null-to-blank edit is a real change and gets
// logged as one.
func valuesEqual(a, b interface{}) bool {
	sa := SerializeValue(a)
	sb := SerializeValue(b)
	if sa == nil || sb == nil {
		return sa == nil && sb == nil
	}
	return *sa == *sb
}
