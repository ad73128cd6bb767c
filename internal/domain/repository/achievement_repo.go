package repository

import (
	"github.com/yourusername/score-api/internal/domain/entity"
)

// AchievementRepository определяет операции с ачивками.
type AchievementRepository interface {
	// GetAll возвращает все ачивки вместе с их условиями.
	GetAll() ([]entity.Achievement, error)

	// UnlockedIDs возвращает ID ачивок, уже открытых игроком.
	UnlockedIDs(userID uint) ([]uint, error)

	// Unlock отмечает ачивку открытой; повторный вызов не является ошибкой.
	Unlock(userID uint, achievementID uint) error
}
