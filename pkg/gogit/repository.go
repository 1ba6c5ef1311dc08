package gogit

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
)

// ErrUnknownScope is returned for a config scope name other than local, global or system.
var ErrUnknownScope = errors.New("unknown config scope")

// DefaultScopes is the lookup order git uses for user.name and user.email.
var DefaultScopes = []config.Scope{config.LocalScope, config.GlobalScope, config.SystemScope}

// ParseScopes converts scope names to go-git scopes, keeping their order.
func ParseScopes(names []string) ([]config.Scope, error) {
	scopes := make([]config.Scope, 0, len(names))

	for _, name := range names {
		switch name {
		case "local":
			scopes = append(scopes, config.LocalScope)
		case "global":
			scopes = append(scopes, config.GlobalScope)
		case "system":
			scopes = append(scopes, config.SystemScope)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownScope, name)
		}
	}

	return scopes, nil
}

// Commit carries the identity fields of a go-git commit.
type Commit struct {
	Hash      gitlib.Hash
	Author    gitlib.Signature
	Committer gitlib.Signature
	Message   string
	Encoding  string
}

// Repository wraps a go-git repository.
type Repository struct {
	repo   *git.Repository
	path   string
	scopes []config.Scope
	engine Engine
}

// Option configures a Repository.
type Option func(*Repository)

// WithScopes sets the config scopes searched by DefaultSignature.
func WithScopes(scopes ...config.Scope) Option {
	return func(r *Repository) {
		r.scopes = scopes
	}
}

// WithEngine sets the engine used to stamp default signatures.
func WithEngine(engine Engine) Option {
	return func(r *Repository) {
		r.engine = engine
	}
}

// Open opens the repository containing path.
func Open(path string, opts ...Option) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", convertError(err))
	}

	return newRepository(repo, path, opts), nil
}

// Init creates a non-bare repository at path.
func Init(path string, opts ...Option) (*Repository, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", convertError(err))
	}

	return newRepository(repo, path, opts), nil
}

func newRepository(repo *git.Repository, path string, opts []Option) *Repository {
	r := &Repository{repo: repo, path: path, scopes: DefaultScopes}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Native returns the underlying go-git repository.
func (r *Repository) Native() *git.Repository {
	return r.repo
}

// DefaultSignature resolves user.name and user.email from the configured
// scopes, highest priority first, and stamps them with the current time.
func (r *Repository) DefaultSignature() (gitlib.Signature, error) {
	var name, email string

	for _, scope := range r.scopes {
		cfg, err := r.loadScope(scope)
		if err != nil {
			return gitlib.Signature{}, err
		}

		if name == "" {
			name = cfg.User.Name
		}

		if email == "" {
			email = cfg.User.Email
		}
	}

	if name == "" {
		return gitlib.Signature{}, notFoundf("config value 'user.name' was not found")
	}

	if email == "" {
		return gitlib.Signature{}, notFoundf("config value 'user.email' was not found")
	}

	return r.engine.NowSignature(name, email)
}

func (r *Repository) loadScope(scope config.Scope) (*config.Config, error) {
	if scope == config.LocalScope {
		cfg, err := r.repo.Config()
		if err != nil {
			return nil, configError(err)
		}

		return cfg, nil
	}

	cfg, err := config.LoadConfig(scope)
	if err != nil {
		return nil, configError(err)
	}

	return cfg, nil
}

// SetIdentity writes user.name and user.email to the repository configuration.
func (r *Repository) SetIdentity(name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("open config: %w", configError(err))
	}

	cfg.User.Name = name
	cfg.User.Email = email

	err = r.repo.SetConfig(cfg)
	if err != nil {
		return fmt.Errorf("write config: %w", configError(err))
	}

	return nil
}

// Head returns the hash HEAD points at.
func (r *Repository) Head() (gitlib.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return gitlib.Hash{}, fmt.Errorf("get HEAD: %w", convertError(err))
	}

	return gitlib.Hash(ref.Hash()), nil
}

// ResolveCommit resolves a revision expression such as "HEAD~1" to a commit.
func (r *Repository) ResolveCommit(_ context.Context, rev string) (Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return Commit{}, fmt.Errorf("resolve %q: %w", rev, convertError(err))
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return Commit{}, fmt.Errorf("resolve %q: %w", rev, convertError(err))
	}

	return commitFromObject(commit), nil
}

// Walk visits the commits reachable from rev, newest first by committer time.
// It stops when fn returns false, after limit commits when limit is positive,
// or when ctx is done.
func (r *Repository) Walk(ctx context.Context, rev string, limit int, fn func(Commit) bool) error {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("resolve %q: %w", rev, convertError(err))
	}

	iter, err := r.repo.Log(&git.LogOptions{From: *hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("log %q: %w", rev, convertError(err))
	}
	defer iter.Close()

	visited := 0

	err = iter.ForEach(func(commit *object.Commit) error {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		visited++

		if !fn(commitFromObject(commit)) || (limit > 0 && visited >= limit) {
			return storer.ErrStop
		}

		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		return fmt.Errorf("walk %q: %w", rev, convertError(err))
	}

	return nil
}

func commitFromObject(commit *object.Commit) Commit {
	encoding := string(commit.Encoding)
	if encoding == "" {
		encoding = gitlib.DefaultEncoding
	}

	return Commit{
		Hash:      gitlib.Hash(commit.Hash),
		Author:    FromObject(commit.Author),
		Committer: FromObject(commit.Committer),
		Message:   commit.Message,
		Encoding:  encoding,
	}
}

// CreateCommit stages the whole working tree and commits it on HEAD.
func (r *Repository) CreateCommit(_ context.Context, message string, author, committer gitlib.Signature) (gitlib.Hash, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return gitlib.Hash{}, fmt.Errorf("open worktree: %w", convertError(err))
	}

	err = worktree.AddWithOptions(&git.AddOptions{All: true})
	if err != nil {
		return gitlib.Hash{}, fmt.Errorf("stage files: %w", convertError(err))
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author:            ToObject(author),
		Committer:         ToObject(committer),
		AllowEmptyCommits: true,
	})
	if err != nil {
		return gitlib.Hash{}, fmt.Errorf("create commit: %w", convertError(err))
	}

	return gitlib.Hash(hash), nil
}

func notFoundf(format string, args ...any) *gitlib.Error {
	return &gitlib.Error{
		Message: fmt.Sprintf(format, args...),
		Code:    gitlib.ErrorCodeNotFound,
		Class:   gitlib.ErrorClassConfig,
	}
}

func configError(err error) *gitlib.Error {
	return &gitlib.Error{
		Message: err.Error(),
		Code:    gitlib.ErrorCodeGeneric,
		Class:   gitlib.ErrorClassConfig,
	}
}

// convertError maps go-git failures onto the libgit2 codes used by gitlib.
func convertError(err error) error {
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists),
		errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound):
		return &gitlib.Error{Message: err.Error(), Code: gitlib.ErrorCodeNotFound, Class: gitlib.ErrorClassRepository}
	case errors.Is(err, git.ErrRepositoryAlreadyExists):
		return &gitlib.Error{Message: err.Error(), Code: gitlib.ErrorCodeExists, Class: gitlib.ErrorClassRepository}
	default:
		return &gitlib.Error{Message: err.Error(), Code: gitlib.ErrorCodeGeneric, Class: gitlib.ErrorClassRepository}
	}
}
