package signature

import (
	"time"
)

// Entry is a signature converted back into record form.
// Time carries the signature offset as a fixed zone.
type Entry struct {
	Time  time.Time
	Name  string
	Email string
}

// Fields renders the entry with exactly the name, email and time keys.
func (e Entry) Fields() Fields {
	return Fields{
		KeyName:  e.Name,
		KeyEmail: e.Email,
		KeyTime:  e.Time,
	}
}

// Record returns the entry as a record, so it can be converted again.
func (e Entry) Record() *Record {
	return NewRecord(e.Name, e.Email, e.Time)
}
