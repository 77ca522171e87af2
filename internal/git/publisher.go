// Package git commits and pushes the rendered README after a run that
// changed it. The scheduler external to this process guarantees at most one
// run at a time, so no locking beyond go-git's own is needed.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/dashboard/internal/config"
	apperrors "git.home.luguber.info/inful/dashboard/internal/errors"
	"git.home.luguber.info/inful/dashboard/internal/logfields"
)

// Publisher stages, commits, and pushes the dashboard README.
type Publisher struct {
	cfg config.GitPublishConfig
}

// NewPublisher builds a publisher; returns nil when publishing is disabled.
func NewPublisher(cfg *config.GitPublishConfig) *Publisher {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Publisher{cfg: *cfg}
}

// Publish commits readmePath and pushes to the configured remote/branch.
// A clean worktree (nothing to commit) is not an error; it simply means the
// run's change was already recorded.
func (p *Publisher) Publish(ctx context.Context, readmePath string) error {
	repoPath := p.cfg.RepoPath
	if repoPath == "" {
		repoPath = filepath.Dir(readmePath)
	}

	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return apperrors.GitPublishError("open", err).WithContext("path", repoPath)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return apperrors.GitPublishError("worktree", err)
	}

	rel, err := filepath.Rel(repoPath, readmePath)
	if err != nil {
		rel = filepath.Base(readmePath)
	}
	if _, err := wt.Add(rel); err != nil {
		return apperrors.GitPublishError("add", err).WithContext("file", rel)
	}

	status, err := wt.Status()
	if err != nil {
		return apperrors.GitPublishError("status", err)
	}
	if status.IsClean() {
		slog.Debug("Worktree clean, nothing to commit", logfields.Path(readmePath))
		return nil
	}

	commit, err := wt.Commit(p.cfg.CommitMessage, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  p.authorName(),
			Email: p.authorEmail(),
			When:  time.Now(),
		},
	})
	if err != nil {
		return apperrors.GitPublishError("commit", err)
	}
	slog.Info("Dashboard committed", slog.String("commit", commit.String()[:8]))

	auth, err := p.auth()
	if err != nil {
		return err
	}
	pushOpts := &gogit.PushOptions{RemoteName: p.cfg.Remote, Auth: auth}
	if err := repo.PushContext(ctx, pushOpts); err != nil {
		if err == gogit.NoErrAlreadyUpToDate {
			return nil
		}
		return apperrors.GitPublishError("push", err).WithContext("remote", p.cfg.Remote)
	}
	slog.Info("Dashboard pushed", slog.String("remote", p.cfg.Remote), slog.String("branch", p.cfg.Branch))
	return nil
}

func (p *Publisher) authorName() string {
	if p.cfg.AuthorName != "" {
		return p.cfg.AuthorName
	}
	return "dashboard"
}

func (p *Publisher) authorEmail() string {
	if p.cfg.AuthorEmail != "" {
		return p.cfg.AuthorEmail
	}
	return "dashboard@localhost"
}

// auth maps the configured auth block onto a go-git transport method.
func (p *Publisher) auth() (transport.AuthMethod, error) {
	a := p.cfg.Auth
	if a.IsZero() {
		return nil, nil
	}
	switch a.Type {
	case config.AuthTypeToken:
		// Token auth over HTTPS uses the token as password with any username.
		username := a.Username
		if username == "" {
			username = "git"
		}
		return &githttp.BasicAuth{Username: username, Password: a.Token}, nil
	case config.AuthTypeBasic:
		return &githttp.BasicAuth{Username: a.Username, Password: a.Password}, nil
	case config.AuthTypeSSH:
		keys, err := gitssh.NewPublicKeysFromFile("git", a.KeyPath, a.Password)
		if err != nil {
			return nil, apperrors.GitPublishError("ssh-auth", fmt.Errorf("load key %s: %w", a.KeyPath, err))
		}
		return keys, nil
	default:
		return nil, apperrors.GitPublishError("auth", fmt.Errorf("unsupported auth type %q", a.Type))
	}
}
