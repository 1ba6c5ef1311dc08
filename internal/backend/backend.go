// Package backend selects the git engine behind the gitsig commands.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitsig/pkg/gogit"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

// Kinds.
const (
	KindLibgit2 = "libgit2"
	KindGoGit   = "gogit"
)

// ErrUnknownBackend is returned by Open for an unsupported kind.
var ErrUnknownBackend = errors.New("unknown backend")

// Commit is the part of a commit the CLI reads signatures from.
type Commit struct {
	Hash      gitlib.Hash
	Author    gitlib.Signature
	Committer gitlib.Signature
	Message   string
	Encoding  string
}

// Backend is an open repository on one git engine.
type Backend interface {
	// Kind returns KindLibgit2 or KindGoGit.
	Kind() string
	// Factory returns the signature factory of the engine.
	Factory() signature.Factory
	// DefaultSignature resolves the configured identity at the current time.
	DefaultSignature() (gitlib.Signature, error)
	// Signatures reads the author and committer of the commit rev resolves to.
	Signatures(ctx context.Context, rev string) (Commit, error)
	// Log returns up to limit commits reachable from rev, newest first.
	// A non-positive limit returns the whole history.
	Log(ctx context.Context, rev string, limit int) ([]Commit, error)
	// CreateCommit stages the working tree and commits it on HEAD.
	CreateCommit(ctx context.Context, message string, author, committer gitlib.Signature) (gitlib.Hash, error)
	// Close releases engine resources.
	Close()
}

// Open opens the repository containing path with the engine named by kind.
// scopes only applies to the go-git engine; nil means the git defaults.
func Open(kind, path string, scopes []string) (Backend, error) {
	if path == "" {
		path = "."
	}

	var (
		b   Backend
		err error
	)

	switch kind {
	case KindLibgit2:
		b, err = openLibgit2(path)
	case KindGoGit:
		b, err = openGoGit(path, scopes)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}

	if err != nil {
		return nil, err
	}

	return b, nil
}

// FactoryFor returns the signature factory of the engine named by kind,
// for conversions that do not need a repository.
func FactoryFor(kind string) (signature.Factory, error) {
	switch kind {
	case KindLibgit2:
		return gitlib.Engine{}, nil
	case KindGoGit:
		return gogit.Engine{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
