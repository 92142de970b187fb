// Package gitstore layers snapshot history on top of the filesystem
// inventory layout: the base directory is a git repository and every
// snapshot run can be committed as one revision.
package gitstore

import (
	"context"
	"errors"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rackfish/rackfish/config"
	"github.com/rackfish/rackfish/faults"
	"github.com/rackfish/rackfish/internal/providers/inventory/fsstore"
	"github.com/rackfish/rackfish/inventory"
	"github.com/rackfish/rackfish/payload"
)

var _ inventory.Store = (*GitInventoryStore)(nil)
var _ inventory.Lifecycle = (*GitInventoryStore)(nil)
var _ inventory.Committer = (*GitInventoryStore)(nil)

const (
	defaultCommitterName  = "rackfish"
	defaultCommitterEmail = "rackfish@local"
)

type GitInventoryStore struct {
	local          *fsstore.FilesystemInventoryStore
	baseDir        string
	autoInit       bool
	committerName  string
	committerEmail string
}

func NewGitInventoryStore(cfg config.GitInventory) *GitInventoryStore {
	committerName := strings.TrimSpace(cfg.CommitterName)
	if committerName == "" {
		committerName = defaultCommitterName
	}
	committerEmail := strings.TrimSpace(cfg.CommitterEmail)
	if committerEmail == "" {
		committerEmail = defaultCommitterEmail
	}

	return &GitInventoryStore{
		local:          fsstore.NewFilesystemInventoryStore(cfg.BaseDir),
		baseDir:        cfg.BaseDir,
		autoInit:       cfg.AutoInitEnabled(),
		committerName:  committerName,
		committerEmail: committerEmail,
	}
}

func (s *GitInventoryStore) Save(ctx context.Context, address string, value payload.Value) error {
	if err := s.ensureInitializedForOperation(ctx); err != nil {
		return err
	}
	return s.local.Save(ctx, address, value)
}

func (s *GitInventoryStore) Get(ctx context.Context, address string) (payload.Value, error) {
	if err := s.ensureInitializedForOperation(ctx); err != nil {
		return nil, err
	}
	return s.local.Get(ctx, address)
}

func (s *GitInventoryStore) Delete(ctx context.Context, address string) error {
	if err := s.ensureInitializedForOperation(ctx); err != nil {
		return err
	}
	return s.local.Delete(ctx, address)
}

func (s *GitInventoryStore) List(ctx context.Context) ([]string, error) {
	if err := s.ensureInitializedForOperation(ctx); err != nil {
		return nil, err
	}
	return s.local.List(ctx)
}

func (s *GitInventoryStore) Exists(ctx context.Context, address string) (bool, error) {
	if err := s.ensureInitializedForOperation(ctx); err != nil {
		return false, err
	}
	return s.local.Exists(ctx, address)
}

func (s *GitInventoryStore) Init(ctx context.Context) error {
	if err := s.local.Init(ctx); err != nil {
		return err
	}

	_, err := gogit.PlainOpen(s.baseDir)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gogit.ErrRepositoryNotExists) {
		return internalError("failed to open inventory repository", err)
	}

	if _, err := gogit.PlainInit(s.baseDir, false); err != nil {
		return internalError("failed to initialize inventory repository", err)
	}
	return nil
}

func (s *GitInventoryStore) Check(ctx context.Context) error {
	if err := s.local.Check(ctx); err != nil {
		if !faults.IsCategory(err, faults.NotFoundError) {
			return err
		}
	}

	_, err := s.openRepositoryForOperation(ctx)
	return err
}

// Commit records the current snapshot state as one revision. A clean
// worktree commits nothing and reports false.
func (s *GitInventoryStore) Commit(ctx context.Context, message string) (bool, error) {
	repo, err := s.openRepositoryForOperation(ctx)
	if err != nil {
		return false, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, internalError("failed to open inventory worktree", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, internalError("failed to inspect inventory worktree status", err)
	}
	if status.IsClean() {
		return false, nil
	}

	if err := worktree.AddGlob("."); err != nil {
		return false, internalError("failed to stage snapshot changes", err)
	}

	commitMessage := strings.TrimSpace(message)
	if commitMessage == "" {
		commitMessage = "rackfish: update inventory snapshots"
	}

	if _, err := worktree.Commit(commitMessage, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  s.committerName,
			Email: s.committerEmail,
			When:  time.Now(),
		},
	}); err != nil {
		return false, internalError("failed to commit snapshot changes", err)
	}

	return true, nil
}

// HistoryEntry is one recorded snapshot revision.
type HistoryEntry struct {
	Hash    string
	Author  string
	Date    time.Time
	Subject string
}

// History lists snapshot revisions, newest first. maxCount of zero
// means unbounded.
func (s *GitInventoryStore) History(ctx context.Context, maxCount int) ([]HistoryEntry, error) {
	repo, err := s.openRepositoryForOperation(ctx)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&gogit.LogOptions{Order: gogit.LogOrderCommitterTime})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []HistoryEntry{}, nil
		}
		return nil, internalError("failed to read snapshot history", err)
	}
	defer iter.Close()

	entries := []HistoryEntry{}
	iterErr := iter.ForEach(func(commit *object.Commit) error {
		subject := commit.Message
		if idx := strings.IndexAny(subject, "\r\n"); idx >= 0 {
			subject = subject[:idx]
		}
		entries = append(entries, HistoryEntry{
			Hash:    commit.Hash.String(),
			Author:  strings.TrimSpace(commit.Author.Name),
			Date:    commit.Author.When,
			Subject: strings.TrimSpace(subject),
		})
		if maxCount > 0 && len(entries) >= maxCount {
			return errStopIteration
		}
		return nil
	})
	if iterErr != nil && !errors.Is(iterErr, errStopIteration) {
		return nil, internalError("failed to iterate snapshot history", iterErr)
	}

	return entries, nil
}

var errStopIteration = errors.New("stop iteration")

func (s *GitInventoryStore) ensureInitializedForOperation(ctx context.Context) error {
	_, err := s.openRepositoryForOperation(ctx)
	return err
}

func (s *GitInventoryStore) openRepositoryForOperation(ctx context.Context) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(s.baseDir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, internalError("failed to open inventory repository", err)
	}

	if !s.autoInit {
		return nil, notFoundError("inventory repository is not initialized and inventory.git.auto-init is false")
	}

	if initErr := s.Init(ctx); initErr != nil {
		return nil, initErr
	}

	repo, err = gogit.PlainOpen(s.baseDir)
	if err != nil {
		return nil, internalError("failed to open inventory repository after initialization", err)
	}
	return repo, nil
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
