// Package sourcesync mirrors the git repository that holds submitted resource
// descriptors into the local resources directory.
package sourcesync

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/catalogbuilder/internal/config"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
	"git.home.luguber.info/inful/catalogbuilder/internal/retry"
)

// Result describes the state of the mirror after a sync.
type Result struct {
	Path    string
	Branch  string
	Commit  string
	Cloned  bool
	Changed bool
}

// Syncer keeps a working copy of a source repository up to date.
type Syncer struct {
	src    config.SourceConfig
	policy retry.Policy
}

// New returns a Syncer for src. The branch defaults to main.
func New(src config.SourceConfig) *Syncer {
	if src.Branch == "" {
		src.Branch = "main"
	}
	return &Syncer{
		src:    src,
		policy: retry.NewPolicy(retry.Backoff(src.RetryBackoff), src.RetryDelay, 30*time.Second, src.MaxRetries),
	}
}

// Sync clones the source into dir, or fetches and hard-resets an existing
// clone to the remote branch. The directory is owned by the tool; local
// edits are discarded.
func (s *Syncer) Sync(ctx context.Context, dir string) (Result, error) {
	if strings.TrimSpace(s.src.URL) == "" {
		return Result{}, errors.ConfigError("resources.source.url is required").Build()
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return s.update(ctx, dir)
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return Result{}, errors.NewError(errors.CategoryGit, "resources directory exists and is not a git clone").
			WithContext("path", dir).Build()
	}
	return s.clone(ctx, dir)
}

func (s *Syncer) clone(ctx context.Context, dir string) (Result, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o750); err != nil {
		return Result{}, errors.FileSystemError("failed to create resources parent").WithCause(err).
			WithContext("path", dir).Build()
	}
	opts := &git.CloneOptions{
		URL:           s.src.URL,
		ReferenceName: plumbing.NewBranchReferenceName(s.src.Branch),
		SingleBranch:  true,
		Tags:          git.NoTags,
		Auth:          s.auth(),
	}
	var repo *git.Repository
	err := s.policy.Do(ctx, "clone", permanent, func() error {
		var cloneErr error
		repo, cloneErr = git.PlainCloneContext(ctx, dir, false, opts)
		if cloneErr != nil {
			_ = os.RemoveAll(dir)
		}
		return cloneErr
	})
	if err != nil {
		return Result{}, s.classify("clone", err)
	}
	head, err := repo.Head()
	if err != nil {
		return Result{}, s.classify("clone", err)
	}
	slog.Info("Cloned resource source", logfields.URL(s.src.URL), logfields.Branch(s.src.Branch),
		logfields.Path(dir), slog.String("commit", short(head.Hash())))
	return Result{Path: dir, Branch: s.src.Branch, Commit: head.Hash().String(), Cloned: true, Changed: true}, nil
}

func (s *Syncer) update(ctx context.Context, dir string) (Result, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return Result{}, s.classify("open", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, s.classify("worktree", err)
	}

	spec := ggitcfg.RefSpec("+refs/heads/" + s.src.Branch + ":refs/remotes/origin/" + s.src.Branch)
	err = s.policy.Do(ctx, "fetch", permanent, func() error {
		fetchErr := repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: "origin",
			RefSpecs:   []ggitcfg.RefSpec{spec},
			Tags:       git.NoTags,
			Auth:       s.auth(),
			Force:      true,
		})
		if stderrors.Is(fetchErr, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fetchErr
	})
	if err != nil {
		return Result{}, s.classify("fetch", err)
	}

	remote, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", s.src.Branch), true)
	if err != nil {
		return Result{}, s.classify("fetch", err)
	}
	var before plumbing.Hash
	if head, headErr := repo.Head(); headErr == nil {
		before = head.Hash()
	}

	local := plumbing.NewBranchReferenceName(s.src.Branch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(local, remote.Hash())); err != nil {
		return Result{}, s.classify("update", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Force: true}); err != nil {
		return Result{}, s.classify("checkout", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remote.Hash(), Mode: git.HardReset}); err != nil {
		return Result{}, s.classify("reset", err)
	}

	changed := before != remote.Hash()
	if changed {
		slog.Info("Updated resource source", logfields.URL(s.src.URL), logfields.Branch(s.src.Branch),
			slog.String("from", short(before)), slog.String("to", short(remote.Hash())))
	} else {
		slog.Debug("Resource source already up-to-date", logfields.URL(s.src.URL), logfields.Branch(s.src.Branch))
	}
	return Result{Path: dir, Branch: s.src.Branch, Commit: remote.Hash().String(), Changed: changed}, nil
}

// auth uses token basic auth, which GitHub, GitLab and Forgejo all accept over https.
func (s *Syncer) auth() transport.AuthMethod {
	if s.src.Token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "token", Password: s.src.Token}
}

// permanent reports failures that retrying cannot fix.
func permanent(err error) bool {
	if stderrors.Is(err, transport.ErrAuthenticationRequired) ||
		stderrors.Is(err, transport.ErrAuthorizationFailed) ||
		stderrors.Is(err, transport.ErrRepositoryNotFound) {
		return true
	}
	l := strings.ToLower(err.Error())
	return strings.Contains(l, "authentication") ||
		strings.Contains(l, "couldn't find remote ref") ||
		strings.Contains(l, "reference not found") ||
		strings.Contains(l, "repository not found")
}

func (s *Syncer) classify(op string, err error) error {
	msg := "git " + op + " failed"
	l := strings.ToLower(err.Error())
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired),
		stderrors.Is(err, transport.ErrAuthorizationFailed),
		strings.Contains(l, "authentication"):
		msg = "git " + op + " failed: authentication"
	case stderrors.Is(err, transport.ErrRepositoryNotFound),
		strings.Contains(l, "couldn't find remote ref"),
		strings.Contains(l, "reference not found"):
		msg = "git " + op + " failed: repository or branch not found"
	}
	return errors.WrapError(err, errors.CategoryGit, msg).
		WithContext("url", s.src.URL).
		WithContext("branch", s.src.Branch).
		Build()
}

func short(h plumbing.Hash) string {
	if h.IsZero() {
		return "none"
	}
	return h.String()[:8]
}
