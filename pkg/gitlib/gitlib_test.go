package gitlib_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
)

// TestMain points libgit2 at empty global/system config directories so the
// developer's own ~/.gitconfig cannot leak an identity into the tests.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gitlib-config")
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

func newRepo(t *testing.T) *gitlib.Repository {
	t.Helper()

	repo, err := gitlib.InitRepository(t.TempDir())
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return repo
}

func writeFile(t *testing.T, repo *gitlib.Repository, name, content string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(repo.Path(), name), []byte(content), 0o644)
	require.NoError(t, err)
}

// Repository Tests.

func TestOpenRepository(t *testing.T) {
	dir := t.TempDir()

	created, err := gitlib.InitRepository(dir)
	require.NoError(t, err)
	created.Free()

	repo, err := gitlib.OpenRepository(dir)
	require.NoError(t, err)

	defer repo.Free()

	assert.Equal(t, dir, repo.Path())
	assert.NotNil(t, repo.Native())
}

func TestOpenRepositoryNotFound(t *testing.T) {
	repo, err := gitlib.OpenRepository("/nonexistent/path/to/repo")

	assert.Nil(t, repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open repository")
	require.ErrorIs(t, err, gitlib.ErrNotFound)
}

func TestRepositoryFree(t *testing.T) {
	repo, err := gitlib.InitRepository(t.TempDir())
	require.NoError(t, err)

	// Free multiple times should be safe.
	repo.Free()
	repo.Free()
}

// Default identity Tests.

func TestDefaultSignatureMissingIdentity(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.DefaultSignature()
	require.Error(t, err)

	var gitErr *gitlib.Error

	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, gitlib.ErrorCodeNotFound, gitErr.Code)
	assert.Contains(t, gitErr.Message, "user.name")
}

func TestDefaultSignatureConfigured(t *testing.T) {
	repo := newRepo(t)

	require.NoError(t, repo.SetIdentity("Ada Lovelace", "ada@example.com"))

	before := time.Now().Unix()

	sig, err := repo.DefaultSignature()
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", sig.Name)
	assert.Equal(t, "ada@example.com", sig.Email)
	assert.InDelta(t, before, sig.Time, 5)
}

// Signature construction Tests.

func TestNewSignature(t *testing.T) {
	sig, err := gitlib.NewSignature("Ada", "ada@example.com", 1700000000, 60)
	require.NoError(t, err)

	assert.Equal(t, gitlib.Signature{
		Name:   "Ada",
		Email:  "ada@example.com",
		Time:   1700000000,
		Offset: 60,
	}, sig)
}

func TestNewSignatureNegativeOffset(t *testing.T) {
	sig, err := gitlib.NewSignature("Ada", "ada@example.com", 1700000000, -330)
	require.NoError(t, err)

	assert.Equal(t, -330, sig.Offset)
	assert.Equal(t, "Ada <ada@example.com> 1700000000 -0530", sig.String())
}

func TestNewSignatureTrimsWhitespace(t *testing.T) {
	sig, err := gitlib.NewSignature("  Ada ", " ada@example.com\t", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "Ada", sig.Name)
	assert.Equal(t, "ada@example.com", sig.Email)
}

func TestNewSignatureRejected(t *testing.T) {
	tests := []struct {
		name  string
		sname string
		email string
	}{
		{"empty name", "", "ada@example.com"},
		{"blank email", "Ada", "   "},
		{"newline in name", "Ada\nEvil", "ada@example.com"},
		{"newline in email", "Ada", "ada@example.com\n"},
		{"angle bracket", "Ada <x>", "ada@example.com"},
		{"nul byte", "Ada\x00", "ada@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gitlib.NewSignature(tt.sname, tt.email, 1700000000, 0)
			require.Error(t, err)
			require.ErrorIs(t, err, gitlib.ErrInvalid)
		})
	}
}

func TestNewSignatureOffsetOutOfRange(t *testing.T) {
	_, err := gitlib.NewSignature("Ada", "ada@example.com", 0, gitlib.MaxOffsetMinutes+1)
	require.ErrorIs(t, err, gitlib.ErrInvalid)
}

func TestNowSignature(t *testing.T) {
	before := time.Now()

	sig, err := gitlib.NowSignature("Ada", "ada@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Ada", sig.Name)
	assert.InDelta(t, before.Unix(), sig.Time, 5)

	_, localOffset := before.Zone()
	assert.Equal(t, localOffset/60, sig.Offset)
}

func TestEngine(t *testing.T) {
	var engine gitlib.Engine

	sig, err := engine.NewSignature("Ada", "ada@example.com", 42, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sig.Time)

	_, err = engine.NowSignature("", "ada@example.com")
	require.Error(t, err)
}

// Commit Tests.

func TestCreateAndLookupCommit(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	writeFile(t, repo, "README", "hello")

	author := gitlib.Signature{Name: "Ada", Email: "ada@example.com", Time: 1700000000, Offset: 60}
	committer := gitlib.Signature{Name: "Grace", Email: "grace@example.com", Time: 1700000100, Offset: -300}

	hash, err := repo.CreateCommit(ctx, "initial", author, committer)
	require.NoError(t, err)
	assert.False(t, hash.IsZero())

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head)

	commit, err := repo.LookupCommit(ctx, hash)
	require.NoError(t, err)

	defer commit.Free()

	assert.Equal(t, hash, commit.Hash())
	assert.Equal(t, author, commit.Author())
	assert.Equal(t, committer, commit.Committer())
	assert.Contains(t, commit.Message(), "initial")
	assert.Equal(t, gitlib.DefaultEncoding, commit.MessageEncoding())
	assert.NotNil(t, commit.Native())
}

func TestResolveCommit(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	sig := gitlib.TestSignature("Ada", "ada@example.com")

	writeFile(t, repo, "a.txt", "a")
	first, err := repo.CreateCommit(ctx, "first", sig, sig)
	require.NoError(t, err)

	writeFile(t, repo, "b.txt", "b")
	second, err := repo.CreateCommit(ctx, "second", sig, sig)
	require.NoError(t, err)

	commit, err := repo.ResolveCommit(ctx, "HEAD~1")
	require.NoError(t, err)

	defer commit.Free()

	assert.Equal(t, first, commit.Hash())
	assert.NotEqual(t, second, commit.Hash())
	assert.Equal(t, sig, commit.Author())

	_, err = repo.ResolveCommit(ctx, "does-not-exist")
	require.Error(t, err)
}

func TestWalk(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	var hashes []gitlib.Hash

	for idx, name := range []string{"a.txt", "b.txt", "c.txt"} {
		sig := gitlib.Signature{Name: "Ada", Email: "ada@example.com", Time: int64(1700000000 + idx*60)}

		writeFile(t, repo, name, name)

		hash, err := repo.CreateCommit(ctx, name, sig, sig)
		require.NoError(t, err)

		hashes = append(hashes, hash)
	}

	var visited []gitlib.Hash

	err := repo.Walk(ctx, "HEAD", 0, func(commit *gitlib.Commit) bool {
		visited = append(visited, commit.Hash())

		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []gitlib.Hash{hashes[2], hashes[1], hashes[0]}, visited)

	visited = visited[:0]

	err = repo.Walk(ctx, "HEAD", 2, func(commit *gitlib.Commit) bool {
		visited = append(visited, commit.Hash())

		return true
	})
	require.NoError(t, err)
	assert.Len(t, visited, 2)

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	err = repo.Walk(canceled, "HEAD", 0, func(*gitlib.Commit) bool { return true })
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewSignatureTrimsCrud(t *testing.T) {
	sig, err := gitlib.NewSignature(" Ada Jr.", "'ada@example.com.';", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "Ada Jr", sig.Name)
	assert.Equal(t, "ada@example.com", sig.Email)

	_, err = gitlib.NewSignature("...", "ada@example.com", 0, 0)
	require.ErrorIs(t, err, gitlib.ErrInvalid)
}

// Header Tests.

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    gitlib.Signature
		hasTime bool
		wantErr bool
	}{
		{
			name:    "full header",
			line:    "Ada Lovelace <ada@example.com> 1700000000 +0100",
			want:    gitlib.Signature{Name: "Ada Lovelace", Email: "ada@example.com", Time: 1700000000, Offset: 60},
			hasTime: true,
		},
		{
			name: "no timestamp",
			line: "Ada <ada@example.com>",
			want: gitlib.Signature{Name: "Ada", Email: "ada@example.com"},
		},
		{
			name:    "negative offset under an hour",
			line:    "Ada <ada@example.com> 1700000000 -0030",
			want:    gitlib.Signature{Name: "Ada", Email: "ada@example.com", Time: 1700000000, Offset: -30},
			hasTime: true,
		},
		{
			name:    "name with angle bracket",
			line:    "Ada <x> <ada@example.com> 0 +0000",
			want:    gitlib.Signature{Name: "Ada <x>", Email: "ada@example.com"},
			hasTime: true,
		},
		{name: "missing email", line: "Ada ada@example.com", wantErr: true},
		{name: "timestamp without offset", line: "Ada <ada@example.com> 1700000000", wantErr: true},
		{name: "minutes out of range", line: "Ada <ada@example.com> 1700000000 +0560", wantErr: true},
		{name: "non-numeric timestamp", line: "Ada <ada@example.com> soon +0100", wantErr: true},
		{name: "offset without sign", line: "Ada <ada@example.com> 1700000000 01000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, hasTime, err := gitlib.ParseSignature(tt.line)
			if tt.wantErr {
				require.ErrorIs(t, err, gitlib.ErrMalformedSignature)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, sig)
			assert.Equal(t, tt.hasTime, hasTime)
		})
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{0, "+0000"},
		{60, "+0100"},
		{-30, "-0030"},
		{-330, "-0530"},
		{gitlib.MaxOffsetMinutes, "+9959"},
		{-gitlib.MaxOffsetMinutes, "-9959"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, gitlib.FormatOffset(tt.offset))
	}
}

// Hash Tests.

func TestParseHash(t *testing.T) {
	const hexID = "0123456789abcdef0123456789abcdef01234567"

	hash, err := gitlib.ParseHash(hexID)
	require.NoError(t, err)
	assert.Equal(t, hexID, hash.String())
	assert.Equal(t, hash, gitlib.HashFromOid(hash.ToOid()))

	_, err = gitlib.ParseHash("xyz")
	require.ErrorIs(t, err, gitlib.ErrInvalidHash)

	assert.True(t, gitlib.Hash{}.IsZero())
}
