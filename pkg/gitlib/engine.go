package gitlib

// Engine builds signatures through libgit2.
type Engine struct{}

// NewSignature calls git_signature_new.
func (Engine) NewSignature(name, email string, unix int64, offset int) (Signature, error) {
	return NewSignature(name, email, unix, offset)
}

// NowSignature calls git_signature_now.
func (Engine) NowSignature(name, email string) (Signature, error) {
	return NowSignature(name, email)
}
