package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/score-api/internal/domain/entity"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// BeatmapRepo реализует repository.BeatmapRepository
type BeatmapRepo struct {
	db *gorm.DB
}

// NewBeatmapRepo создает новый репозиторий карт
func NewBeatmapRepo(db *gorm.DB) *BeatmapRepo {
	return &BeatmapRepo{db: db}
}

// GetByMD5 возвращает карту по контрольной сумме
func (r *BeatmapRepo) GetByMD5(md5 string) (*entity.Beatmap, error) {
	var b entity.Beatmap
	err := r.db.First(&b, "md5 = ?", md5).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// IncrementCounts атомарно увеличивает счётчики плеев карты
func (r *BeatmapRepo) IncrementCounts(md5 string, passed bool) error {
	updates := map[string]interface{}{
		"playcount": gorm.Expr("playcount + 1"),
	}
	if passed {
		updates["passcount"] = gorm.Expr("passcount + 1")
	}
	return r.db.Model(&entity.Beatmap{}).
		Where("md5 = ?", md5).
		Updates(updates).Error
}

// IncrementUserPlaycount увеличивает счётчик плеев игрока на карте
func (r *BeatmapRepo) IncrementUserPlaycount(userID uint, md5 string, mode entity.Mode) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "beatmap_md5"}, {Name: "mode"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"playcount": gorm.Expr("user_beatmaps.playcount + 1"),
		}),
	}).Create(&entity.UserBeatmap{
		UserID:     userID,
		BeatmapMD5: md5,
		Mode:       mode,
		Playcount:  1,
	}).Error
}
