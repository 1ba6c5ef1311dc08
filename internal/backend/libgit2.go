package backend

import (
	"context"

	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

type libgit2Backend struct {
	repo *gitlib.Repository
}

func openLibgit2(path string) (*libgit2Backend, error) {
	repo, err := gitlib.OpenRepository(path)
	if err != nil {
		return nil, err
	}

	return &libgit2Backend{repo: repo}, nil
}

func (b *libgit2Backend) Kind() string { return KindLibgit2 }

func (b *libgit2Backend) Factory() signature.Factory { return gitlib.Engine{} }

func (b *libgit2Backend) DefaultSignature() (gitlib.Signature, error) {
	return b.repo.DefaultSignature()
}

func (b *libgit2Backend) Signatures(ctx context.Context, rev string) (Commit, error) {
	commit, err := b.repo.ResolveCommit(ctx, rev)
	if err != nil {
		return Commit{}, err
	}
	defer commit.Free()

	return Commit{
		Hash:      commit.Hash(),
		Author:    commit.Author(),
		Committer: commit.Committer(),
		Message:   commit.Message(),
		Encoding:  commit.MessageEncoding(),
	}, nil
}

func (b *libgit2Backend) Log(ctx context.Context, rev string, limit int) ([]Commit, error) {
	var commits []Commit

	err := b.repo.Walk(ctx, rev, limit, func(commit *gitlib.Commit) bool {
		commits = append(commits, Commit{
			Hash:      commit.Hash(),
			Author:    commit.Author(),
			Committer: commit.Committer(),
			Message:   commit.Message(),
			Encoding:  commit.MessageEncoding(),
		})

		return true
	})
	if err != nil {
		return nil, err
	}

	return commits, nil
}

func (b *libgit2Backend) CreateCommit(
	ctx context.Context, message string, author, committer gitlib.Signature,
) (gitlib.Hash, error) {
	return b.repo.CreateCommit(ctx, message, author, committer)
}

func (b *libgit2Backend) Close() {
	b.repo.Free()
}
