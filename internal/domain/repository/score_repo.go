package repository

import (
	"strconv"

	"github.com/yourusername/score-api/internal/domain/entity"
)

// FilterKind — закрытый набор видов фильтрации лидерборда. Логика ранжирования
// и кеширования одна и та же, отличается только эквивалент WHERE-условия.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterMods
	FilterCountry
	FilterFriends
)

// LeaderboardFilter конфигурирует выборку лидерборда.
// RequesterID всегда видит собственные скоры, даже будучи ограниченным.
type LeaderboardFilter struct {
	Kind        FilterKind
	Mods        entity.Mods
	Country     string
	FriendsOfID uint
	RequesterID uint
}

// CacheKey возвращает каноническое строковое представление фильтра для
// использования в составном ключе кеша. Запрашивающий входит в ключ только
// для видов, где выборка от него зависит.
func (f LeaderboardFilter) CacheKey() string {
	switch f.Kind {
	case FilterMods:
		return "mods:" + strconv.FormatInt(int64(f.Mods), 10)
	case FilterCountry:
		return "country:" + f.Country
	case FilterFriends:
		return "friends:" + strconv.FormatUint(uint64(f.FriendsOfID), 10)
	default:
		return "all"
	}
}

// BestValue — пара (pp, accuracy) одного BEST-скора, участвующего
// во взвешенном пересчёте агрегата.
type BestValue struct {
	PP       float64
	Accuracy float64
}

// ScoreRepository определяет операции хранилища рейтингов (RankingStore).
type ScoreRepository interface {
	// GetByID возвращает скор по ID.
	GetByID(id uint64) (*entity.Score, error)

	// FindBest возвращает текущий BEST-скор игрока на карте, либо ErrNotFound.
	FindBest(userID uint, beatmapMD5 string, mode entity.Mode, variant entity.Variant) (*entity.Score, error)

	// DuplicateExists проверяет, был ли уже отправлен идентичный кортеж
	// (игрок, карта, очки, режим, моды) либо скор с той же чексуммой.
	DuplicateExists(s *entity.Score) (bool, error)

	// Submit сохраняет скор, назначая ему ID. Если скор классифицирован как
	// BEST, предыдущий BEST перетегивается в SUBMITTED в той же транзакции:
	// окна, где оба или ни один не BEST, не существует.
	Submit(s *entity.Score) error

	// TopN возвращает до n строк лидерборда карты по убыванию ключа
	// ранжирования (тай-брейк — более ранний timestamp) и общее количество
	// BEST-скоров, попадающих под фильтр.
	TopN(beatmapMD5 string, mode entity.Mode, variant entity.Variant, n int, f LeaderboardFilter) ([]entity.LeaderboardRow, int64, error)

	// UserBest возвращает строку лучшего скора игрока на карте под фильтром.
	UserBest(userID uint, beatmapMD5 string, mode entity.Mode, variant entity.Variant, f LeaderboardFilter) (*entity.LeaderboardRow, error)

	// RankOf возвращает место скора на лидерборде: количество BEST-скоров
	// со строго большим ключом (или равным ключом и более ранним timestamp)
	// плюс один. Ограниченные игроки не учитываются.
	RankOf(s *entity.Score) (int, error)

	// TopBestValues возвращает до limit пар (pp, accuracy) BEST-скоров игрока
	// на рейтинговых картах по убыванию pp. Используется пересчётом агрегата.
	TopBestValues(userID uint, mode entity.Mode, variant entity.Variant, limit int) ([]BestValue, error)

	// CountRankedBest возвращает число BEST-скоров игрока на рейтинговых
	// картах, ограниченное cap (для бонусного слагаемого).
	CountRankedBest(userID uint, mode entity.Mode, variant entity.Variant, cap int) (int64, error)

	// UpdatePP перезаписывает performance-значение скора (пересчёт извне).
	UpdatePP(scoreID uint64, pp float64) error
}
