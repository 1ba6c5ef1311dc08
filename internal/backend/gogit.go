package backend

import (
	"context"

	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitsig/pkg/gogit"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

type goGitBackend struct {
	repo   *gogit.Repository
	engine gogit.Engine
}

func openGoGit(path string, scopeNames []string) (*goGitBackend, error) {
	engine := gogit.Engine{}
	opts := []gogit.Option{gogit.WithEngine(engine)}

	if scopeNames != nil {
		scopes, err := gogit.ParseScopes(scopeNames)
		if err != nil {
			return nil, err
		}

		opts = append(opts, gogit.WithScopes(scopes...))
	}

	repo, err := gogit.Open(path, opts...)
	if err != nil {
		return nil, err
	}

	return &goGitBackend{repo: repo, engine: engine}, nil
}

func (b *goGitBackend) Kind() string { return KindGoGit }

func (b *goGitBackend) Factory() signature.Factory { return b.engine }

func (b *goGitBackend) DefaultSignature() (gitlib.Signature, error) {
	return b.repo.DefaultSignature()
}

func (b *goGitBackend) Signatures(ctx context.Context, rev string) (Commit, error) {
	commit, err := b.repo.ResolveCommit(ctx, rev)
	if err != nil {
		return Commit{}, err
	}

	return Commit(commit), nil
}

func (b *goGitBackend) Log(ctx context.Context, rev string, limit int) ([]Commit, error) {
	var commits []Commit

	err := b.repo.Walk(ctx, rev, limit, func(commit gogit.Commit) bool {
		commits = append(commits, Commit(commit))

		return true
	})
	if err != nil {
		return nil, err
	}

	return commits, nil
}

func (b *goGitBackend) CreateCommit(
	ctx context.Context, message string, author, committer gitlib.Signature,
) (gitlib.Hash, error) {
	return b.repo.CreateCommit(ctx, message, author, committer)
}

// Close is a no-op; go-git holds no native resources.
func (b *goGitBackend) Close() {}
