package repository

import (
	"context"

	"github.com/yourusername/score-api/internal/domain/entity"
)

// RankIndexRepository определяет операции глобального рейтингового индекса.
// Индекс — упорядоченная структура в Redis; БД остаётся источником истины,
// индекс можно перестроить с нуля.
type RankIndexRepository interface {
	// Set записывает значение pp игрока в глобальный индекс и индекс его страны.
	Set(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string, pp float64) error

	// GlobalRank возвращает глобальное место игрока (с единицы).
	// Для отсутствующего игрока возвращает 0.
	GlobalRank(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant) (int, error)

	// CountryRank возвращает место игрока внутри страны (с единицы).
	CountryRank(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string) (int, error)

	// Remove убирает игрока из глобального индекса и индекса страны.
	// Применяется при ограничении аккаунта.
	Remove(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string) error
}
