package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Vault keeps a git-backed copy of every note so edits and deletions stay
// recoverable. Each note lives at notes/<owner>/<id>.md inside a plain
// repository; every save or removal is one commit.
type Vault struct {
	repo *git.Repository
	dir  string
}

type Revision struct {
	Hash    string    `json:"hash"`
	When    time.Time `json:"when"`
	Summary string    `json:"summary"`
}

func Open(dir string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create vault directory: %w", err)
	}

	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open vault repository: %w", err)
	}

	return &Vault{repo: repo, dir: dir}, nil
}

func notePath(ownerID, noteID string) string {
	return filepath.Join("notes", ownerID, noteID+".md")
}

// SaveNote writes the note file and commits it.
func (v *Vault) SaveNote(ownerID, noteID, title, content string) error {
	rel := notePath(ownerID, noteID)
	abs := filepath.Join(v.dir, rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("create note directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte("# "+title+"\n\n"+content+"\n"), 0644); err != nil {
		return fmt.Errorf("write note file: %w", err)
	}

	return v.commit(rel, fmt.Sprintf("Save note %q", title))
}

// RemoveNote deletes the note file and commits the removal. Removing a note
// that was never saved is a no-op.
func (v *Vault) RemoveNote(ownerID, noteID string) error {
	rel := notePath(ownerID, noteID)
	if _, err := os.Stat(filepath.Join(v.dir, rel)); os.IsNotExist(err) {
		return nil
	}

	wt, err := v.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := wt.Remove(rel); err != nil {
		return fmt.Errorf("stage note removal: %w", err)
	}
	_, err = wt.Commit("Delete note "+noteID, commitOptions())
	if errors.Is(err, git.ErrEmptyCommit) {
		return nil
	}
	return err
}

// History lists the commits that touched the note, newest first.
func (v *Vault) History(ownerID, noteID string) ([]Revision, error) {
	rel := notePath(ownerID, noteID)

	iter, err := v.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return nil, fmt.Errorf("read note history: %w", err)
	}
	defer iter.Close()

	var revisions []Revision
	err = iter.ForEach(func(c *object.Commit) error {
		revisions = append(revisions, Revision{
			Hash:    c.Hash.String()[:8],
			When:    c.Author.When,
			Summary: c.Message,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

func (v *Vault) commit(rel, message string) error {
	wt, err := v.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := wt.Add(rel); err != nil {
		return fmt.Errorf("stage note: %w", err)
	}
	_, err = wt.Commit(message, commitOptions())
	if errors.Is(err, git.ErrEmptyCommit) {
		return nil
	}
	return err
}

func commitOptions() *git.CommitOptions {
	return &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Butler",
			Email: "butler@localhost",
			When:  time.Now(),
		},
	}
}
