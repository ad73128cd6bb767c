package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/score-api/internal/cache"
	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// ==========================================================================
// Общие моки репозиториев для тестов пакета service
// ==========================================================================

// MockUserRepository - мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetBySafeName(safeName string) (*entity.User, error) {
	args := m.Called(safeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetPrivileges(id uint) (entity.Privileges, error) {
	args := m.Called(id)
	return args.Get(0).(entity.Privileges), args.Error(1)
}

func (m *MockUserRepository) UpdateLatestActivity(id uint, ts int64) error {
	args := m.Called(id, ts)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePrivileges(id uint, privs entity.Privileges) error {
	args := m.Called(id, privs)
	return args.Error(0)
}

func (m *MockUserRepository) GetClanTag(clanID uint) (string, error) {
	args := m.Called(clanID)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetFriendIDs(userID uint) ([]uint, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockUserRepository) AllIDs() ([]uint, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockScoreRepository - мок для ScoreRepository
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) GetByID(id uint64) (*entity.Score, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Score), args.Error(1)
}

func (m *MockScoreRepository) FindBest(userID uint, beatmapMD5 string, mode entity.Mode, variant entity.Variant) (*entity.Score, error) {
	args := m.Called(userID, beatmapMD5, mode, variant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Score), args.Error(1)
}

func (m *MockScoreRepository) DuplicateExists(s *entity.Score) (bool, error) {
	args := m.Called(s)
	return args.Bool(0), args.Error(1)
}

func (m *MockScoreRepository) Submit(s *entity.Score) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockScoreRepository) TopN(beatmapMD5 string, mode entity.Mode, variant entity.Variant, n int, f repository.LeaderboardFilter) ([]entity.LeaderboardRow, int64, error) {
	args := m.Called(beatmapMD5, mode, variant, n, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.LeaderboardRow), args.Get(1).(int64), args.Error(2)
}

func (m *MockScoreRepository) UserBest(userID uint, beatmapMD5 string, mode entity.Mode, variant entity.Variant, f repository.LeaderboardFilter) (*entity.LeaderboardRow, error) {
	args := m.Called(userID, beatmapMD5, mode, variant, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeaderboardRow), args.Error(1)
}

func (m *MockScoreRepository) RankOf(s *entity.Score) (int, error) {
	args := m.Called(s)
	return args.Int(0), args.Error(1)
}

func (m *MockScoreRepository) TopBestValues(userID uint, mode entity.Mode, variant entity.Variant, limit int) ([]repository.BestValue, error) {
	args := m.Called(userID, mode, variant, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BestValue), args.Error(1)
}

func (m *MockScoreRepository) CountRankedBest(userID uint, mode entity.Mode, variant entity.Variant, limit int) (int64, error) {
	args := m.Called(userID, mode, variant, limit)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScoreRepository) UpdatePP(scoreID uint64, pp float64) error {
	args := m.Called(scoreID, pp)
	return args.Error(0)
}

// MockBeatmapRepository - мок для BeatmapRepository
type MockBeatmapRepository struct {
	mock.Mock
}

func (m *MockBeatmapRepository) GetByMD5(md5 string) (*entity.Beatmap, error) {
	args := m.Called(md5)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Beatmap), args.Error(1)
}

func (m *MockBeatmapRepository) IncrementCounts(md5 string, passed bool) error {
	args := m.Called(md5, passed)
	return args.Error(0)
}

func (m *MockBeatmapRepository) IncrementUserPlaycount(userID uint, md5 string, mode entity.Mode) error {
	args := m.Called(userID, md5, mode)
	return args.Error(0)
}

// MockStatsRepository - мок для StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Fetch(userID uint, mode entity.Mode, variant entity.Variant) (*entity.Stats, error) {
	args := m.Called(userID, mode, variant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Stats), args.Error(1)
}

func (m *MockStatsRepository) Save(s *entity.Stats) error {
	args := m.Called(s)
	return args.Error(0)
}

// MockRankIndexRepository - мок для RankIndexRepository
type MockRankIndexRepository struct {
	mock.Mock
}

func (m *MockRankIndexRepository) Set(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string, pp float64) error {
	args := m.Called(ctx, userID, mode, variant, country, pp)
	return args.Error(0)
}

func (m *MockRankIndexRepository) GlobalRank(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant) (int, error) {
	args := m.Called(ctx, userID, mode, variant)
	return args.Int(0), args.Error(1)
}

func (m *MockRankIndexRepository) CountryRank(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string) (int, error) {
	args := m.Called(ctx, userID, mode, variant, country)
	return args.Int(0), args.Error(1)
}

func (m *MockRankIndexRepository) Remove(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string) error {
	args := m.Called(ctx, userID, mode, variant, country)
	return args.Error(0)
}

// MockAchievementRepository - мок для AchievementRepository
type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) GetAll() ([]entity.Achievement, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) UnlockedIDs(userID uint) ([]uint, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockAchievementRepository) Unlock(userID uint, achievementID uint) error {
	args := m.Called(userID, achievementID)
	return args.Error(0)
}

// MockCacheRepository - мок для CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockPerformanceCalculator - мок для PerformanceCalculator
type MockPerformanceCalculator struct {
	mock.Mock
}

func (m *MockPerformanceCalculator) Calculate(ctx context.Context, req PerformanceRequest) (PerformanceResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(PerformanceResult), args.Error(1)
}

// ==========================================================================
// Легкие фейки: хранилище реплеев и блокировка отправки
// ==========================================================================

// memReplayStore - хранилище реплеев в памяти
type memReplayStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemReplayStore() *memReplayStore {
	return &memReplayStore{data: make(map[string][]byte)}
}

func replayStoreKey(scoreID uint64, variant entity.Variant) string {
	return fmt.Sprintf("%d:%d", scoreID, variant)
}

func (s *memReplayStore) Save(scoreID uint64, variant entity.Variant, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[replayStoreKey(scoreID, variant)] = data
	return nil
}

func (s *memReplayStore) Load(scoreID uint64, variant entity.Variant) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[replayStoreKey(scoreID, variant)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return data, nil
}

func (s *memReplayStore) Exists(scoreID uint64, variant entity.Variant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[replayStoreKey(scoreID, variant)]
	return ok
}

// noopLocker - блокировка отправки, которая всегда свободна
type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

// ==========================================================================
// Общие помощники
// ==========================================================================

func newTestRegistry() *cache.Registry {
	return cache.NewRegistry(cache.RegistryOptions{
		BoardCapacity:    64,
		PBCapacity:       64,
		IdentityCapacity: 64,
		MaxAge:           time.Minute,
	})
}
