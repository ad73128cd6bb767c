package service

import (
	"errors"
	"log"
	"time"

	"github.com/yourusername/score-api/internal/cache"
	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// snapshotLimit — сколько строк лидерборда читается из БД и кешируется.
// Клиенту отдается не больше serveLimit верхних строк; запас позволяет
// пережить несколько инвалидаций подряд без похода в БД.
const (
	snapshotLimit = 150
	serveLimit    = 100
)

// LeaderboardService обслуживает чтение лидербордов: кеш -> БД -> заполнение
// кеша. Ограниченные игроки на общих бордах не видны, но собственный лучший
// результат им показывается через персональный путь.
type LeaderboardService struct {
	scoreRepo   repository.ScoreRepository
	beatmapRepo repository.BeatmapRepository
	caches      *cache.Registry
	kv          repository.CacheRepository
}

// NewLeaderboardService создает новый сервис лидербордов
func NewLeaderboardService(
	scoreRepo repository.ScoreRepository,
	beatmapRepo repository.BeatmapRepository,
	caches *cache.Registry,
	kv repository.CacheRepository,
) *LeaderboardService {
	return &LeaderboardService{
		scoreRepo:   scoreRepo,
		beatmapRepo: beatmapRepo,
		caches:      caches,
		kv:          kv,
	}
}

// unknownMapTTL — как долго помнить, что карты нет в БД. Клиенты запрашивают
// несабмиченные карты очень настойчиво.
const unknownMapTTL = time.Hour

// Beatmap возвращает карту, на которой запрошен лидерборд. Неизвестный md5 —
// это ErrUnsubmitted; отсутствующие карты мемоизируются в общем KV, чтобы
// повторные запросы не ходили в БД.
func (s *LeaderboardService) Beatmap(md5 string) (*entity.Beatmap, error) {
	missKey := "nomap:" + md5
	if _, err := s.kv.Get(missKey); err == nil {
		return nil, apperrors.ErrUnsubmitted
	}

	beatmap, err := s.beatmapRepo.GetByMD5(md5)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if kvErr := s.kv.Set(missKey, 1, unknownMapTTL); kvErr != nil {
				log.Printf("[LeaderboardService] Не удалось запомнить отсутствующую карту %s: %v", md5, kvErr)
			}
			return nil, apperrors.ErrUnsubmitted
		}
		return nil, err
	}
	return beatmap, nil
}

// ServeLimit возвращает максимум строк, отдаваемых клиенту.
func (s *LeaderboardService) ServeLimit() int {
	return serveLimit
}

// Get возвращает снимок лидерборда. Снимки кешируются без учета
// запрашивающего: скрытые скоры ограниченных игроков в них не попадают.
func (s *LeaderboardService) Get(md5 string, mode entity.Mode, variant entity.Variant, f repository.LeaderboardFilter) (*cache.BoardSnapshot, error) {
	// кешируемая выборка не зависит от запрашивающего
	f.RequesterID = 0

	if snap, ok := s.caches.Leaderboards.GetBoard(md5, mode, variant, f); ok {
		return snap, nil
	}

	rows, total, err := s.scoreRepo.TopN(md5, mode, variant, snapshotLimit, f)
	if err != nil {
		return nil, err
	}

	snap := &cache.BoardSnapshot{Rows: rows, Total: total}
	s.caches.Leaderboards.PutBoard(md5, mode, variant, f, snap)
	return snap, nil
}

// Top возвращает верхние строки снимка, не больше serveLimit.
func (s *LeaderboardService) Top(snap *cache.BoardSnapshot) []entity.LeaderboardRow {
	if len(snap.Rows) > serveLimit {
		return snap.Rows[:serveLimit]
	}
	return snap.Rows
}

// PersonalBest возвращает лучший результат игрока на карте и его место.
// Здесь запрашивающий учитывается: игрок видит собственные скрытые скоры.
func (s *LeaderboardService) PersonalBest(md5 string, mode entity.Mode, variant entity.Variant, userID uint, f repository.LeaderboardFilter) (*entity.LeaderboardRow, int, error) {
	f.RequesterID = userID

	if row, ok := s.caches.Leaderboards.GetPersonalBest(md5, mode, variant, userID, f); ok {
		rank, err := s.scoreRepo.RankOf(&row.Score)
		if err != nil {
			return nil, 0, err
		}
		return row, rank, nil
	}

	row, err := s.scoreRepo.UserBest(userID, md5, mode, variant, f)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, 0, apperrors.ErrNotFound
		}
		return nil, 0, err
	}

	rank, err := s.scoreRepo.RankOf(&row.Score)
	if err != nil {
		return nil, 0, err
	}

	s.caches.Leaderboards.PutPersonalBest(md5, mode, variant, userID, f, row)
	return row, rank, nil
}

// Invalidate сбрасывает кеш одного (карта, режим, вариант).
func (s *LeaderboardService) Invalidate(md5 string, mode entity.Mode, variant entity.Variant) {
	s.caches.Leaderboards.DropBoard(md5, mode, variant)
}
