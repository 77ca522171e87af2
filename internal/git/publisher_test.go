package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dashboard/internal/config"
)

func TestNewPublisherDisabled(t *testing.T) {
	require.Nil(t, NewPublisher(nil))
	require.Nil(t, NewPublisher(&config.GitPublishConfig{Enabled: false}))
	require.NotNil(t, NewPublisher(&config.GitPublishConfig{Enabled: true}))
}

// initRepo creates a worktree repo with one initial commit and a local bare
// remote it can push to.
func initRepo(t *testing.T) (workPath, barePath string) {
	t.Helper()
	workPath = t.TempDir()
	barePath = t.TempDir()

	_, err := gogit.PlainInit(barePath, true)
	require.NoError(t, err)

	repo, err := gogit.PlainInit(workPath, false)
	require.NoError(t, err)

	readme := filepath.Join(workPath, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# Jane Doe\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@localhost", When: time.Now()},
	})
	require.NoError(t, err)

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{barePath}})
	require.NoError(t, err)
	return workPath, barePath
}

func TestPublishCommitsAndPushes(t *testing.T) {
	workPath, barePath := initRepo(t)
	readme := filepath.Join(workPath, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# Jane Doe\n\nupdated\n"), 0644))

	pub := NewPublisher(&config.GitPublishConfig{
		Enabled:       true,
		Remote:        "origin",
		CommitMessage: "Update dashboard",
	})
	require.NoError(t, pub.Publish(context.Background(), readme))

	// The commit must have landed in the remote.
	bare, err := gogit.PlainOpen(barePath)
	require.NoError(t, err)
	head, err := bare.Head()
	require.NoError(t, err)
	commit, err := bare.CommitObject(head.Hash())
	require.NoError(t, err)
	require.Equal(t, "Update dashboard", commit.Message)
	require.Equal(t, "dashboard", commit.Author.Name)
}

func TestPublishCleanWorktreeIsNoop(t *testing.T) {
	workPath, _ := initRepo(t)
	readme := filepath.Join(workPath, "README.md")

	pub := NewPublisher(&config.GitPublishConfig{Enabled: true, Remote: "origin", CommitMessage: "Update dashboard"})
	require.NoError(t, pub.Publish(context.Background(), readme))

	repo, err := gogit.PlainOpen(workPath)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	require.Equal(t, "initial", commit.Message, "a clean worktree must not produce a commit")
}

func TestPublishOutsideRepositoryFails(t *testing.T) {
	readme := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("x"), 0644))

	pub := NewPublisher(&config.GitPublishConfig{Enabled: true})
	require.Error(t, pub.Publish(context.Background(), readme))
}

func TestAuthMapping(t *testing.T) {
	p := &Publisher{cfg: config.GitPublishConfig{Auth: &config.AuthConfig{Type: config.AuthTypeToken, Token: "tok"}}}
	auth, err := p.auth()
	require.NoError(t, err)
	basic, ok := auth.(*githttp.BasicAuth)
	require.True(t, ok)
	require.Equal(t, "git", basic.Username, "token auth defaults the username")
	require.Equal(t, "tok", basic.Password)

	p = &Publisher{cfg: config.GitPublishConfig{Auth: &config.AuthConfig{Type: config.AuthTypeBasic, Username: "jane", Password: "pw"}}}
	auth, err = p.auth()
	require.NoError(t, err)
	basic, ok = auth.(*githttp.BasicAuth)
	require.True(t, ok)
	require.Equal(t, "jane", basic.Username)

	p = &Publisher{cfg: config.GitPublishConfig{}}
	auth, err = p.auth()
	require.NoError(t, err)
	require.Nil(t, auth, "no auth block means anonymous transport")

	p = &Publisher{cfg: config.GitPublishConfig{Auth: &config.AuthConfig{Type: "kerberos"}}}
	_, err = p.auth()
	require.Error(t, err)
}
