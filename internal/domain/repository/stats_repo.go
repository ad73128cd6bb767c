package repository

import (
	"github.com/yourusername/score-api/internal/domain/entity"
)

// StatsRepository определяет операции с агрегатной статистикой игроков.
type StatsRepository interface {
	// Fetch возвращает статистику игрока в (режим, вариант). Если строки ещё
	// нет, возвращается нулевая статистика без ошибки.
	Fetch(userID uint, mode entity.Mode, variant entity.Variant) (*entity.Stats, error)

	// Save перезаписывает статистику (upsert по составному ключу).
	Save(s *entity.Stats) error
}
