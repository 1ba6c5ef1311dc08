package gitlib

import (
	"time"
)

// TestSignature creates a signature for testing, stamped with the current time
// in the local zone.
func TestSignature(name, email string) Signature {
	return SignatureFromTime(name, email, time.Now())
}
