package signature

import (
	"fmt"
	"math"
	"time"
)

// Field keys of a Fields mapping.
const (
	KeyName       = "name"
	KeyEmail      = "email"
	KeyTime       = "time"
	KeyTimeOffset = "time_offset"
)

// Fields is the loosely typed form of a signature record, as decoded from
// YAML or JSON documents.
type Fields map[string]any

// Record is a signature request with optional time fields.
// A nil *Record asks for the repository default identity.
type Record struct {
	// Time is nil to stamp the signature with the current time.
	Time *time.Time
	// TimeOffset overrides the zone offset of Time, in seconds east of UTC.
	TimeOffset *int
	Name       string
	Email      string
}

// NewRecord returns a record stamped at t.
func NewRecord(name, email string, t time.Time) *Record {
	return &Record{Name: name, Email: email, Time: &t}
}

// WithOffset returns a copy of r whose offset is forced to seconds east of UTC.
func (r Record) WithOffset(seconds int) *Record {
	r.TimeOffset = &seconds

	return &r
}

// Parse checks the structural types of v and returns the typed record.
// v may be nil, a Record, a *Record, Fields or a map[string]any.
// A nil result with a nil error selects the default identity.
func Parse(v any) (*Record, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil //nolint:nilnil // nil record selects the default identity.
	case *Record:
		if val == nil {
			return nil, nil //nolint:nilnil // nil record selects the default identity.
		}

		rec := *val

		return &rec, nil
	case Record:
		return &val, nil
	case Fields:
		return parseFields(val)
	case map[string]any:
		return parseFields(Fields(val))
	default:
		return nil, mismatch("record", v, "map")
	}
}

func parseFields(fields Fields) (*Record, error) {
	name, ok := fields[KeyName].(string)
	if !ok {
		return nil, mismatch(KeyName, fields[KeyName], "string")
	}

	email, ok := fields[KeyEmail].(string)
	if !ok {
		return nil, mismatch(KeyEmail, fields[KeyEmail], "string")
	}

	rec := &Record{Name: name, Email: email}

	when, err := parseTime(fields[KeyTime])
	if err != nil {
		return nil, err
	}

	rec.Time = when

	offset, err := parseOffset(fields[KeyTimeOffset])
	if err != nil {
		return nil, err
	}

	rec.TimeOffset = offset

	return rec, nil
}

func parseTime(v any) (*time.Time, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil //nolint:nilnil // absent time means "now".
	case time.Time:
		return &val, nil
	case *time.Time:
		if val == nil {
			return nil, nil //nolint:nilnil // absent time means "now".
		}

		t := *val

		return &t, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T", ErrTimeType, KeyTime, v)
	}
}

func parseOffset(v any) (*int, error) {
	var offset int

	switch val := v.(type) {
	case nil:
		return nil, nil //nolint:nilnil // absent offset defers to the time value.
	case int:
		offset = val
	case int8:
		offset = int(val)
	case int16:
		offset = int(val)
	case int32:
		offset = int(val)
	case int64:
		if int64(int(val)) != val {
			return nil, mismatch(KeyTimeOffset, v, "integer")
		}

		offset = int(val)
	case uint8:
		offset = int(val)
	case uint16:
		offset = int(val)
	case uint32:
		offset = int(val)
	case uint:
		if val > math.MaxInt {
			return nil, mismatch(KeyTimeOffset, v, "integer")
		}

		offset = int(val)
	case uint64:
		if val > math.MaxInt {
			return nil, mismatch(KeyTimeOffset, v, "integer")
		}

		offset = int(val)
	default:
		return nil, mismatch(KeyTimeOffset, v, "integer")
	}

	return &offset, nil
}
