package service

import (
	"github.com/yourusername/score-api/internal/cache"
	"github.com/yourusername/score-api/internal/domain/repository"
	"github.com/yourusername/score-api/internal/wire"
)

// ReplayService отдает реплеи: сырое тело для внутриигрового просмотра
// и полный файл .osr с заголовком для скачивания с сайта.
type ReplayService struct {
	scoreRepo repository.ScoreRepository
	userRepo  repository.UserRepository
	replays   ReplayStore
	caches    *cache.Registry
}

// NewReplayService создает новый сервис реплеев
func NewReplayService(
	scoreRepo repository.ScoreRepository,
	userRepo repository.UserRepository,
	replays ReplayStore,
	caches *cache.Registry,
) *ReplayService {
	return &ReplayService{
		scoreRepo: scoreRepo,
		userRepo:  userRepo,
		replays:   replays,
		caches:    caches,
	}
}

// username читает имя игрока через справочный кеш; в него попадают имена
// после аутентификации и событий переименования.
func (s *ReplayService) username(userID uint) (string, error) {
	if name, ok := s.caches.Identity.Username(userID); ok {
		return name, nil
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	s.caches.Identity.PutUsername(user.ID, user.Username)
	return user.Username, nil
}

// Raw возвращает сырое тело реплея скора (внутриигровой формат).
func (s *ReplayService) Raw(scoreID uint64) ([]byte, error) {
	score, err := s.scoreRepo.GetByID(scoreID)
	if err != nil {
		return nil, err
	}
	return s.replays.Load(score.ID, score.Variant)
}

// Full собирает полный файл реплея с заголовком .osr для скачивания.
func (s *ReplayService) Full(scoreID uint64) ([]byte, error) {
	score, err := s.scoreRepo.GetByID(scoreID)
	if err != nil {
		return nil, err
	}

	raw, err := s.replays.Load(score.ID, score.Variant)
	if err != nil {
		return nil, err
	}

	username, err := s.username(score.UserID)
	if err != nil {
		return nil, err
	}

	fc := uint8(0)
	if score.FullCombo {
		fc = 1
	}

	header := &wire.ReplayHeader{
		Mode:       uint8(score.PlayMode),
		Version:    wire.ClientVersion,
		BeatmapMD5: score.BeatmapMD5,
		Username:   username,
		Count300:   int16(score.Count300),
		Count100:   int16(score.Count100),
		Count50:    int16(score.Count50),
		CountGeki:  int16(score.CountGeki),
		CountKatu:  int16(score.CountKatu),
		CountMiss:  int16(score.CountMiss),
		Score:      int32(score.Score),
		MaxCombo:   int16(score.MaxCombo),
		FullCombo:  fc,
		Mods:       int32(score.Mods),
		Ticks:      wire.UnixToTicks(score.Timestamp),
		ScoreID:    int64(score.ID),
	}
	header.ReplayMD5 = wire.ReplayChecksum(header)

	return wire.EncodeReplay(header, raw), nil
}
