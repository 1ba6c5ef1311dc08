package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

// ErrIncompleteIdentity is returned when only one of --name and --email is set.
var ErrIncompleteIdentity = errors.New("--name and --email must be given together")

// readRecordFile decodes a YAML (or JSON) signature record from path.
// An empty document selects the default identity and yields nil.
//
// Unquoted timestamps are decoded as strings by yaml.v3; strings under the
// time key are parsed as RFC 3339 and left as strings when they do not parse,
// so the conversion reports them as a time type error.
func readRecordFile(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer file.Close()

	var doc any

	err = yaml.NewDecoder(file).Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode record file %s: %w", path, err)
	}

	if doc == nil {
		return nil, nil //nolint:nilnil // nil selects the default identity.
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		// Non-mapping documents are handed on so the conversion reports the mismatch.
		return doc, nil
	}

	if raw, isString := fields[signature.KeyTime].(string); isString {
		parsed, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr == nil {
			fields[signature.KeyTime] = parsed
		}
	}

	return signature.Fields(fields), nil
}

// recordFlags are the identity flags shared by commands that build a record.
type recordFlags struct {
	name       string
	email      string
	timeValue  string
	timeOffset int
	offsetSet  bool
}

// record returns the record described by the flags, or nil when neither
// name nor email is set.
func (f *recordFlags) record() (any, error) {
	if f.name == "" && f.email == "" {
		if f.timeValue != "" || f.offsetSet {
			return nil, ErrIncompleteIdentity
		}

		return nil, nil //nolint:nilnil // nil selects the default identity.
	}

	if f.name == "" || f.email == "" {
		return nil, ErrIncompleteIdentity
	}

	fields := signature.Fields{
		signature.KeyName:  f.name,
		signature.KeyEmail: f.email,
	}

	if f.timeValue != "" {
		parsed, err := time.Parse(time.RFC3339, f.timeValue)
		if err != nil {
			return nil, fmt.Errorf("parse --time: %w", err)
		}

		fields[signature.KeyTime] = parsed
	}

	if f.offsetSet {
		fields[signature.KeyTimeOffset] = f.timeOffset
	}

	return fields, nil
}
