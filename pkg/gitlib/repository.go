package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

const (
	configUserName  = "user.name"
	configUserEmail = "user.email"
	headRef         = "HEAD"
)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens the git repository containing path, searching parent
// directories like git does.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepositoryExtended(path, 0, "")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", fromGit2go(err))
	}

	return &Repository{repo: repo, path: path}, nil
}

// InitRepository creates a non-bare repository at path.
func InitRepository(path string) (*Repository, error) {
	repo, err := git2go.InitRepository(path, false)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", fromGit2go(err))
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Native returns the underlying libgit2 repository for advanced operations.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}

// DefaultSignature resolves user.name and user.email from the repository
// configuration and stamps them with the current time.
func (r *Repository) DefaultSignature() (Signature, error) {
	sig, err := r.repo.DefaultSignature()
	if err != nil {
		return Signature{}, fromGit2go(err)
	}

	return fromNative(sig), nil
}

// SetIdentity writes user.name and user.email to the repository configuration.
func (r *Repository) SetIdentity(name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("open config: %w", fromGit2go(err))
	}
	defer cfg.Free()

	err = cfg.SetString(configUserName, name)
	if err != nil {
		return fmt.Errorf("set %s: %w", configUserName, fromGit2go(err))
	}

	err = cfg.SetString(configUserEmail, email)
	if err != nil {
		return fmt.Errorf("set %s: %w", configUserEmail, fromGit2go(err))
	}

	return nil
}

// Head returns the HEAD reference target.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", fromGit2go(err))
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(_ context.Context, hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", fromGit2go(err))
	}

	return &Commit{commit: commit, repo: r}, nil
}

// ResolveCommit resolves a revision expression such as "HEAD~1" to a commit.
func (r *Repository) ResolveCommit(_ context.Context, rev string) (*Commit, error) {
	obj, err := r.repo.RevparseSingle(rev)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", rev, fromGit2go(err))
	}
	defer obj.Free()

	commit, err := obj.AsCommit()
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", rev, fromGit2go(err))
	}

	return &Commit{commit: commit, repo: r}, nil
}

// CreateCommit stages the whole working tree and commits it on HEAD.
func (r *Repository) CreateCommit(_ context.Context, message string, author, committer Signature) (Hash, error) {
	index, err := r.repo.Index()
	if err != nil {
		return Hash{}, fmt.Errorf("open index: %w", fromGit2go(err))
	}
	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	if err != nil {
		return Hash{}, fmt.Errorf("stage files: %w", fromGit2go(err))
	}

	err = index.Write()
	if err != nil {
		return Hash{}, fmt.Errorf("write index: %w", fromGit2go(err))
	}

	treeID, err := index.WriteTree()
	if err != nil {
		return Hash{}, fmt.Errorf("write tree: %w", fromGit2go(err))
	}

	tree, err := r.repo.LookupTree(treeID)
	if err != nil {
		return Hash{}, fmt.Errorf("lookup tree: %w", fromGit2go(err))
	}
	defer tree.Free()

	parents, err := r.headParents()
	if err != nil {
		return Hash{}, err
	}

	defer func() {
		for _, parent := range parents {
			parent.Free()
		}
	}()

	oid, err := r.repo.CreateCommit(headRef, toNative(author), toNative(committer), message, tree, parents...)
	if err != nil {
		return Hash{}, fmt.Errorf("create commit: %w", fromGit2go(err))
	}

	return HashFromOid(oid), nil
}

func (r *Repository) headParents() ([]*git2go.Commit, error) {
	unborn, err := r.repo.IsHeadUnborn()
	if err != nil {
		return nil, fmt.Errorf("check HEAD: %w", fromGit2go(err))
	}

	if unborn {
		return nil, nil
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("get HEAD: %w", fromGit2go(err))
	}
	defer ref.Free()

	head, err := r.repo.LookupCommit(ref.Target())
	if err != nil {
		return nil, fmt.Errorf("lookup HEAD commit: %w", fromGit2go(err))
	}

	return []*git2go.Commit{head}, nil
}

func fromNative(sig *git2go.Signature) Signature {
	return Signature{
		Name:   sig.Name,
		Email:  sig.Email,
		Time:   sig.When.Unix(),
		Offset: sig.Offset(),
	}
}

func toNative(sig Signature) *git2go.Signature {
	return &git2go.Signature{
		Name:  sig.Name,
		Email: sig.Email,
		When:  sig.When(),
	}
}
