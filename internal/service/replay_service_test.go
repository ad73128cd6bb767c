package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/score-api/internal/domain/entity"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
	"github.com/yourusername/score-api/internal/wire"
)

func createTestReplayService() (*ReplayService, *MockScoreRepository, *MockUserRepository, *memReplayStore) {
	mockScoreRepo := new(MockScoreRepository)
	mockUserRepo := new(MockUserRepository)
	store := newMemReplayStore()
	svc := NewReplayService(mockScoreRepo, mockUserRepo, store, newTestRegistry())
	return svc, mockScoreRepo, mockUserRepo, store
}

func createReplayScore() *entity.Score {
	return &entity.Score{
		ID:         55,
		BeatmapMD5: testMapMD5,
		UserID:     7,
		Score:      1234567,
		MaxCombo:   700,
		FullCombo:  true,
		Mods:       entity.ModHidden,
		Count300:   500,
		Count100:   20,
		Count50:    3,
		CountMiss:  2,
		PlayMode:   entity.ModeStd,
		Variant:    entity.VariantVanilla,
		Completed:  entity.StateBest,
		Timestamp:  1600000000,
	}
}

func TestReplayService_Raw(t *testing.T) {
	// Arrange
	replayService, mockScoreRepo, _, store := createTestReplayService()

	score := createReplayScore()
	body := []byte("raw-replay-frames")
	require.NoError(t, store.Save(score.ID, score.Variant, body))
	mockScoreRepo.On("GetByID", uint64(55)).Return(score, nil)

	// Act
	got, err := replayService.Raw(55)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, body, got)
	mockScoreRepo.AssertExpectations(t)
}

func TestReplayService_Raw_MissingBody(t *testing.T) {
	// Arrange
	replayService, mockScoreRepo, _, _ := createTestReplayService()
	mockScoreRepo.On("GetByID", uint64(55)).Return(createReplayScore(), nil)

	// Act
	_, err := replayService.Raw(55)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReplayService_Full(t *testing.T) {
	// Arrange
	replayService, mockScoreRepo, mockUserRepo, store := createTestReplayService()

	score := createReplayScore()
	body := []byte("raw-replay-frames")
	require.NoError(t, store.Save(score.ID, score.Variant, body))
	mockScoreRepo.On("GetByID", uint64(55)).Return(score, nil)
	mockUserRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7, Username: "Player One"}, nil)

	// Act
	full, err := replayService.Full(55)

	// Assert: файл разбирается обратно и несет данные скора
	require.NoError(t, err)
	header, raw, err := wire.DecodeReplay(full)
	require.NoError(t, err)

	assert.Equal(t, body, raw)
	assert.Equal(t, "Player One", header.Username)
	assert.Equal(t, testMapMD5, header.BeatmapMD5)
	assert.Equal(t, int32(1234567), header.Score)
	assert.Equal(t, int64(55), header.ScoreID)
	assert.Equal(t, int32(wire.ClientVersion), header.Version)
	assert.Equal(t, wire.UnixToTicks(score.Timestamp), header.Ticks)
	assert.Equal(t, wire.ReplayChecksum(header), header.ReplayMD5,
		"Чексумма заголовка должна сходиться после раунд-трипа")

	mockScoreRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestReplayService_Full_UsernameFromCache(t *testing.T) {
	// Arrange: имя уже в справочном кеше после аутентификации
	mockScoreRepo := new(MockScoreRepository)
	mockUserRepo := new(MockUserRepository)
	store := newMemReplayStore()
	caches := newTestRegistry()
	replayService := NewReplayService(mockScoreRepo, mockUserRepo, store, caches)

	caches.Identity.PutUsername(7, "Player One")

	score := createReplayScore()
	require.NoError(t, store.Save(score.ID, score.Variant, []byte("raw-replay-frames")))
	mockScoreRepo.On("GetByID", uint64(55)).Return(score, nil)

	// Act
	full, err := replayService.Full(55)

	// Assert: имя взято из кеша, БД игроков не опрашивается
	require.NoError(t, err)
	header, _, err := wire.DecodeReplay(full)
	require.NoError(t, err)
	assert.Equal(t, "Player One", header.Username)
	mockUserRepo.AssertNotCalled(t, "GetByID")
}
