package allowlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
)

// FileRepository keeps the allow-list as an indented JSON array, e.g.
//
//	[
//	  { "id": 42, "username": "alice" },
//	  { "username": "bob" }
//	]
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load returns an empty set when the file does not exist yet.
func (r *FileRepository) Load(ctx context.Context) ([]models.AuthorizedUser, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.AuthorizedUser{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	users := []models.AuthorizedUser{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}
	return users, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so a crash never leaves a truncated allow-list behind.
func (r *FileRepository) Save(ctx context.Context, users []models.AuthorizedUser) error {
	if users == nil {
		users = []models.AuthorizedUser{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode allow-list: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".allowlist-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", r.path, err)
	}
	return nil
}
