// Package gogit provides a pure-Go signature engine and repository on top of
// go-git. It mirrors the libgit2 behavior of pkg/gitlib so either can back the
// signature converter.
package gogit

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
)

// Engine builds signatures without cgo.
type Engine struct {
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// NewSignature validates name and email the way libgit2 does and returns a
// signature at the given epoch seconds and offset in minutes.
func (e Engine) NewSignature(name, email string, unix int64, offset int) (gitlib.Signature, error) {
	name, email, err := gitlib.NormalizeIdentity(name, email)
	if err != nil {
		return gitlib.Signature{}, err
	}

	err = gitlib.ValidateOffset(offset)
	if err != nil {
		return gitlib.Signature{}, err
	}

	return gitlib.Signature{Name: name, Email: email, Time: unix, Offset: offset}, nil
}

// NowSignature returns a signature stamped with the current time and local offset.
func (e Engine) NowSignature(name, email string) (gitlib.Signature, error) {
	name, email, err := gitlib.NormalizeIdentity(name, email)
	if err != nil {
		return gitlib.Signature{}, err
	}

	return gitlib.SignatureFromTime(name, email, e.now()), nil
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}

	return time.Now()
}

// FromObject converts a go-git signature into the shared record.
func FromObject(sig object.Signature) gitlib.Signature {
	return gitlib.SignatureFromTime(sig.Name, sig.Email, sig.When)
}

// ToObject converts the shared record into a go-git signature.
func ToObject(sig gitlib.Signature) *object.Signature {
	return &object.Signature{
		Name:  sig.Name,
		Email: sig.Email,
		When:  sig.When(),
	}
}
