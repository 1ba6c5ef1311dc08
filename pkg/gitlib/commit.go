package gitlib

import (
	git2go "github.com/libgit2/git2go/v34"
)

// DefaultEncoding is the encoding git assumes when a commit has no encoding header.
const DefaultEncoding = "UTF-8"

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the commit hash.
func (c *Commit) Hash() Hash {
	return HashFromOid(c.commit.Id())
}

// Author returns the commit author.
func (c *Commit) Author() Signature {
	return fromNative(c.commit.Author())
}

// Committer returns the commit committer.
func (c *Commit) Committer() Signature {
	return fromNative(c.commit.Committer())
}

// Message returns the commit message.
func (c *Commit) Message() string {
	return c.commit.Message()
}

// MessageEncoding returns the value of the commit's encoding header,
// or DefaultEncoding when the header is absent.
func (c *Commit) MessageEncoding() string {
	enc := string(c.commit.MessageEncoding())
	if enc == "" {
		return DefaultEncoding
	}

	return enc
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}

// Native returns the underlying libgit2 commit.
func (c *Commit) Native() *git2go.Commit {
	return c.commit
}
