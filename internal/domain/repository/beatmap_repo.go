package repository

import (
	"github.com/yourusername/score-api/internal/domain/entity"
)

// BeatmapRepository определяет операции с локальными метаданными карт.
type BeatmapRepository interface {
	// GetByMD5 возвращает карту по контрольной сумме файла, либо ErrNotFound.
	GetByMD5(md5 string) (*entity.Beatmap, error)

	// IncrementCounts атомарно увеличивает playcount карты и, если passed,
	// её passcount.
	IncrementCounts(md5 string, passed bool) error

	// IncrementUserPlaycount увеличивает счётчик плеев игрока на карте
	// (upsert по составному ключу).
	IncrementUserPlaycount(userID uint, md5 string, mode entity.Mode) error
}
