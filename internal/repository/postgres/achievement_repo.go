package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/score-api/internal/domain/entity"
)

// AchievementRepo реализует repository.AchievementRepository
type AchievementRepo struct {
	db *gorm.DB
}

// NewAchievementRepo создает новый репозиторий ачивок
func NewAchievementRepo(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// GetAll возвращает все ачивки вместе с условиями
func (r *AchievementRepo) GetAll() ([]entity.Achievement, error) {
	var achievements []entity.Achievement
	err := r.db.Preload("Conditions").Find(&achievements).Error
	return achievements, err
}

// UnlockedIDs возвращает ID ачивок, уже открытых игроком
func (r *AchievementRepo) UnlockedIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	return ids, err
}

// Unlock отмечает ачивку открытой; повторное открытие — no-op
func (r *AchievementRepo) Unlock(userID uint, achievementID uint) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.UserAchievement{
			UserID:        userID,
			AchievementID: achievementID,
			UnlockedAt:    time.Now().Unix(),
		}).Error
}
