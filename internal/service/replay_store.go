package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yourusername/score-api/internal/domain/entity"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// ReplayStore хранит сырые тела реплеев по ID скора.
type ReplayStore interface {
	Save(scoreID uint64, variant entity.Variant, data []byte) error
	Load(scoreID uint64, variant entity.Variant) ([]byte, error)
	Exists(scoreID uint64, variant entity.Variant) bool
}

// FSReplayStore — файловое хранилище реплеев: по подкаталогу на вариант.
type FSReplayStore struct {
	dir string
}

// NewFSReplayStore создает хранилище и подкаталоги вариантов
func NewFSReplayStore(dir string) (*FSReplayStore, error) {
	for v := entity.VariantVanilla; v <= entity.VariantAutopilot; v++ {
		if err := os.MkdirAll(filepath.Join(dir, v.String()), 0o755); err != nil {
			return nil, fmt.Errorf("create replay dir: %w", err)
		}
	}
	return &FSReplayStore{dir: dir}, nil
}

func (s *FSReplayStore) path(scoreID uint64, variant entity.Variant) string {
	return filepath.Join(s.dir, variant.String(), fmt.Sprintf("replay_%d.osr", scoreID))
}

// Save записывает тело реплея.
func (s *FSReplayStore) Save(scoreID uint64, variant entity.Variant, data []byte) error {
	return os.WriteFile(s.path(scoreID, variant), data, 0o644)
}

// Load читает тело реплея; отсутствие файла — ErrNotFound.
func (s *FSReplayStore) Load(scoreID uint64, variant entity.Variant) ([]byte, error) {
	data, err := os.ReadFile(s.path(scoreID, variant))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Exists проверяет наличие реплея.
func (s *FSReplayStore) Exists(scoreID uint64, variant entity.Variant) bool {
	_, err := os.Stat(s.path(scoreID, variant))
	return err == nil
}
