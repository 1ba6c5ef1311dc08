package gitlib

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerMinute = 60
	minutesPerHour   = 60

	// MaxOffsetMinutes is the largest offset the "+hhmm" header field can hold.
	MaxOffsetMinutes = 99*minutesPerHour + 59

	offsetFieldLen = 5
)

// ErrMalformedSignature is returned when a signature header line cannot be parsed.
var ErrMalformedSignature = errors.New("malformed signature")

// Signature represents a git signature (author/committer).
// Time is in seconds since the Unix epoch and Offset in minutes east of UTC.
type Signature struct {
	Name   string
	Email  string
	Time   int64
	Offset int
}

// When returns the signature time in a fixed zone at the signature offset.
func (s Signature) When() time.Time {
	return time.Unix(s.Time, 0).In(time.FixedZone("", s.Offset*secondsPerMinute))
}

// String renders the signature the way it appears in commit and tag headers.
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time, FormatOffset(s.Offset))
}

// FormatOffset renders an offset in minutes as "+hhmm" or "-hhmm".
func FormatOffset(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}

	return fmt.Sprintf("%c%02d%02d", sign, offset/minutesPerHour, offset%minutesPerHour)
}

// ParseSignature parses a header line of the form "Name <email> 1700000000 +0100".
// The timestamp part is optional; hasTime reports whether it was present.
func ParseSignature(line string) (sig Signature, hasTime bool, err error) {
	line = strings.TrimSpace(line)

	emailStart := strings.LastIndexByte(line, '<')
	emailEnd := strings.LastIndexByte(line, '>')

	if emailStart < 0 || emailEnd < emailStart {
		return Signature{}, false, fmt.Errorf("%w: missing <email> in %q", ErrMalformedSignature, line)
	}

	sig = Signature{
		Name:  strings.TrimSpace(line[:emailStart]),
		Email: line[emailStart+1 : emailEnd],
	}

	rest := strings.Fields(line[emailEnd+1:])
	if len(rest) == 0 {
		return sig, false, nil
	}

	const timeFields = 2
	if len(rest) != timeFields {
		return Signature{}, false, fmt.Errorf("%w: expected timestamp and offset in %q", ErrMalformedSignature, line)
	}

	seconds, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, false, fmt.Errorf("%w: timestamp %q", ErrMalformedSignature, rest[0])
	}

	offset, err := parseOffset(rest[1])
	if err != nil {
		return Signature{}, false, err
	}

	sig.Time = seconds
	sig.Offset = offset

	return sig, true, nil
}

func parseOffset(field string) (int, error) {
	if len(field) != offsetFieldLen || (field[0] != '+' && field[0] != '-') {
		return 0, fmt.Errorf("%w: offset %q", ErrMalformedSignature, field)
	}

	hours, hoursErr := strconv.Atoi(field[1:3])
	minutes, minutesErr := strconv.Atoi(field[3:])

	if hoursErr != nil || minutesErr != nil || minutes >= minutesPerHour {
		return 0, fmt.Errorf("%w: offset %q", ErrMalformedSignature, field)
	}

	offset := hours*minutesPerHour + minutes
	if field[0] == '-' {
		offset = -offset
	}

	return offset, nil
}

// NormalizeIdentity validates a name/email pair against the header format and
// returns them with surrounding crud removed, matching git_signature_new.
func NormalizeIdentity(name, email string) (string, string, error) {
	for _, field := range [...]struct{ label, value string }{{"name", name}, {"email", email}} {
		if strings.ContainsAny(field.value, "<>") {
			return "", "", invalidf("Neither `name` nor `email` should contain angle brackets chars.")
		}

		if strings.ContainsAny(field.value, "\n\x00") {
			return "", "", invalidf("signature %s must not contain newlines or NUL bytes", field.label)
		}
	}

	name = trimCrud(name)
	email = trimCrud(email)

	if name == "" || email == "" {
		return "", "", invalidf("Signature cannot have an empty name or email")
	}

	return name, email, nil
}

// isCrud reports whether c is stripped from the edges of a name or email.
// The set is the one libgit2 and git use.
func isCrud(c rune) bool {
	return c <= ' ' || strings.ContainsRune(`.,:;<>"\'`, c)
}

func trimCrud(s string) string {
	return strings.TrimFunc(s, isCrud)
}

// ValidateOffset checks that an offset in minutes fits the header format.
func ValidateOffset(offset int) error {
	if offset < -MaxOffsetMinutes || offset > MaxOffsetMinutes {
		return invalidf("signature offset %d minutes is out of range", offset)
	}

	return nil
}

// zoneOffsetMinutes returns the UTC offset of t in minutes, truncated toward zero.
func zoneOffsetMinutes(t time.Time) int {
	_, offset := t.Zone()

	return offset / secondsPerMinute
}

// SignatureFromTime builds a signature for name and email at t, using the zone of t.
func SignatureFromTime(name, email string, t time.Time) Signature {
	return Signature{
		Name:   name,
		Email:  email,
		Time:   t.Unix(),
		Offset: zoneOffsetMinutes(t),
	}
}
