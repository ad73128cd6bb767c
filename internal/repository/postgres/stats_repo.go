package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/score-api/internal/domain/entity"
)

// StatsRepo реализует repository.StatsRepository
type StatsRepo struct {
	db *gorm.DB
}

// NewStatsRepo создает новый репозиторий статистики
func NewStatsRepo(db *gorm.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Fetch возвращает статистику игрока; отсутствующая строка — нулевая
// статистика, а не ошибка: запись появится при первом сохранении.
func (r *StatsRepo) Fetch(userID uint, mode entity.Mode, variant entity.Variant) (*entity.Stats, error) {
	var s entity.Stats
	err := r.db.
		Where("user_id = ? AND mode = ? AND variant = ?", userID, mode, variant).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.Stats{UserID: userID, Mode: mode, Variant: variant}, nil
		}
		return nil, err
	}
	return &s, nil
}

// Save перезаписывает статистику (upsert по составному ключу)
func (r *StatsRepo) Save(s *entity.Stats) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "mode"}, {Name: "variant"}},
		UpdateAll: true,
	}).Create(s).Error
}
