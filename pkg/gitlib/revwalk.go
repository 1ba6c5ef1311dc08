package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Walk visits the commits reachable from rev, newest first by commit time.
// It stops when fn returns false, after limit commits when limit is positive,
// or when ctx is done. Commits passed to fn are valid only during the call.
func (r *Repository) Walk(ctx context.Context, rev string, limit int, fn func(*Commit) bool) error {
	start, err := r.ResolveCommit(ctx, rev)
	if err != nil {
		return err
	}

	from := start.Hash()
	start.Free()

	walk, err := r.repo.Walk()
	if err != nil {
		return fmt.Errorf("create revwalk: %w", fromGit2go(err))
	}
	defer walk.Free()

	walk.Sorting(git2go.SortTime)

	err = walk.Push(from.ToOid())
	if err != nil {
		return fmt.Errorf("push to revwalk: %w", fromGit2go(err))
	}

	visited := 0

	err = walk.Iterate(func(commit *git2go.Commit) bool {
		if ctx.Err() != nil {
			return false
		}

		wrapped := &Commit{commit: commit, repo: r}
		defer wrapped.Free()

		visited++

		return fn(wrapped) && (limit <= 0 || visited < limit)
	})
	if err != nil {
		return fmt.Errorf("revwalk iterate: %w", fromGit2go(err))
	}

	return ctx.Err()
}
