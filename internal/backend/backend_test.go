package backend_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitsig/internal/backend"
	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitsig/pkg/gogit"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "backend-config")
	if err != nil {
		panic(err)
	}

	for _, level := range []git2go.ConfigLevel{
		git2go.ConfigLevelGlobal,
		git2go.ConfigLevelXDG,
		git2go.ConfigLevelSystem,
	} {
		setErr := git2go.SetSearchPath(level, dir)
		if setErr != nil {
			panic(setErr)
		}
	}

	code := m.Run()

	_ = os.RemoveAll(dir)

	os.Exit(code)
}

var kinds = []string{backend.KindLibgit2, backend.KindGoGit}

// initRepo creates a repository with a local identity and one file to commit.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	repo, err := gitlib.InitRepository(dir)
	require.NoError(t, err)

	defer repo.Free()

	require.NoError(t, repo.SetIdentity("Config User", "config@example.com"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("hello\n"), 0o644))

	return dir
}

func open(t *testing.T, kind, dir string) backend.Backend {
	t.Helper()

	b, err := backend.Open(kind, dir, []string{"local"})
	require.NoError(t, err)

	t.Cleanup(b.Close)

	return b
}

func TestOpenKinds(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			b := open(t, kind, dir)
			assert.Equal(t, kind, b.Kind())
			assert.NotNil(t, b.Factory())
		})
	}
}

func TestOpenUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := backend.Open("svn", t.TempDir(), nil)
	require.ErrorIs(t, err, backend.ErrUnknownBackend)
}

func TestOpenBadScope(t *testing.T) {
	t.Parallel()

	_, err := backend.Open(backend.KindGoGit, initRepo(t), []string{"worktree"})
	require.ErrorIs(t, err, gogit.ErrUnknownScope)
}

func TestOpenNotARepository(t *testing.T) {
	t.Parallel()

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			b, err := backend.Open(kind, t.TempDir(), nil)
			require.ErrorIs(t, err, gitlib.ErrNotFound)
			assert.Nil(t, b)
		})
	}
}

func TestDefaultSignature(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			before := time.Now().Add(-time.Second).Unix()

			sig, err := open(t, kind, dir).DefaultSignature()
			require.NoError(t, err)

			assert.Equal(t, "Config User", sig.Name)
			assert.Equal(t, "config@example.com", sig.Email)
			assert.GreaterOrEqual(t, sig.Time, before)
		})
	}
}

func TestCreateCommitAndSignatures(t *testing.T) {
	t.Parallel()

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			b := open(t, kind, initRepo(t))
			ctx := context.Background()

			author, err := b.Factory().NewSignature("Jane Doe", "jane@example.com", 1700000000, 60)
			require.NoError(t, err)

			committer, err := b.Factory().NewSignature("John Roe", "john@example.com", 1700000100, -330)
			require.NoError(t, err)

			hash, err := b.CreateCommit(ctx, "initial\n", author, committer)
			require.NoError(t, err)
			assert.False(t, hash.IsZero())

			commit, err := b.Signatures(ctx, "HEAD")
			require.NoError(t, err)

			assert.Equal(t, hash, commit.Hash)
			assert.Equal(t, author, commit.Author)
			assert.Equal(t, committer, commit.Committer)
			assert.Equal(t, "initial\n", commit.Message)
			assert.Equal(t, gitlib.DefaultEncoding, commit.Encoding)
		})
	}
}

func TestSignaturesUnknownRevision(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			_, err := open(t, kind, dir).Signatures(context.Background(), "no-such-branch")
			require.Error(t, err)
		})
	}
}

func TestFactoryFor(t *testing.T) {
	t.Parallel()

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			factory, err := backend.FactoryFor(kind)
			require.NoError(t, err)

			sig, err := factory.NewSignature("Jane Doe", "jane@example.com", 1700000000, 60)
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe <jane@example.com> 1700000000 +0100", sig.String())
		})
	}

	_, err := backend.FactoryFor("svn")
	require.ErrorIs(t, err, backend.ErrUnknownBackend)
}

func TestFactoryForTrimsAlike(t *testing.T) {
	t.Parallel()

	sigs := make(map[string]gitlib.Signature, len(kinds))

	for _, kind := range kinds {
		factory, err := backend.FactoryFor(kind)
		require.NoError(t, err)

		sig, err := factory.NewSignature(" Jane Doe Jr.", "\"jane@example.com.\";", 1700000000, 60)
		require.NoError(t, err)

		sigs[kind] = sig
	}

	assert.Equal(t, "Jane Doe Jr", sigs[backend.KindLibgit2].Name)
	assert.Equal(t, "jane@example.com", sigs[backend.KindLibgit2].Email)
	assert.Equal(t, sigs[backend.KindLibgit2], sigs[backend.KindGoGit])
}

func TestLog(t *testing.T) {
	t.Parallel()

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			b := open(t, kind, initRepo(t))
			ctx := context.Background()

			var hashes []gitlib.Hash

			for idx := range 3 {
				sig, err := b.Factory().NewSignature("Jane Doe", "jane@example.com", int64(1700000000+idx*60), 0)
				require.NoError(t, err)

				hash, err := b.CreateCommit(ctx, fmt.Sprintf("commit %d\n", idx), sig, sig)
				require.NoError(t, err)

				hashes = append(hashes, hash)
			}

			all, err := b.Log(ctx, "HEAD", 0)
			require.NoError(t, err)
			require.Len(t, all, 3)

			assert.Equal(t, hashes[2], all[0].Hash)
			assert.Equal(t, hashes[1], all[1].Hash)
			assert.Equal(t, hashes[0], all[2].Hash)
			assert.Equal(t, int64(1700000000), all[2].Author.Time)

			limited, err := b.Log(ctx, "HEAD~1", 1)
			require.NoError(t, err)
			require.Len(t, limited, 1)
			assert.Equal(t, hashes[1], limited[0].Hash)
		})
	}
}

func TestLogCanceled(t *testing.T) {
	t.Parallel()

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			b := open(t, kind, initRepo(t))

			sig, err := b.Factory().NewSignature("Jane Doe", "jane@example.com", 1700000000, 0)
			require.NoError(t, err)

			_, err = b.CreateCommit(context.Background(), "initial\n", sig, sig)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err = b.Log(ctx, "HEAD", 0)
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}
