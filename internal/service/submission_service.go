package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/yourusername/score-api/internal/cache"
	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
	"github.com/yourusername/score-api/internal/pkg/tasks"
	"github.com/yourusername/score-api/internal/pubsub"
	"github.com/yourusername/score-api/internal/wire"
)

// Ответы клиенту. Пустой ответ заставляет клиент повторить отправку позже;
// "error: no" — терминальный отказ; "error: beatmap" — карта не сабмичена.
const (
	respRetry       = ""
	respReject      = "error: no"
	respUnsubmitted = "error: beatmap"
)

// минимальный размер валидного тела реплея; пас без реплея такого размера
// невозможен на настоящем клиенте
const minReplaySize = 24

// SubmissionLocker сериализует конкурирующие отправки одного кортежа.
type SubmissionLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// SubmitRequest — разобранная форма отправки скора.
type SubmitRequest struct {
	ScoreData  []byte // base64-шифротекст
	IV         []byte // base64-вектор инициализации
	OsuVersion string
	Password   string // md5 пароля
	UserAgent  string
	Token      string
	ExitedOut  bool
	FailTime   int // мс, для незавершенных плеев
	ScoreTime  int // мс, для завершенных
	Replay     []byte
}

// PPCapFunc возвращает потолок pp для (режим, вариант); 0 — потолка нет.
type PPCapFunc func(mode entity.Mode, variant entity.Variant) float64

// SubmissionService — пайплайн приема скора: декодирование, аутентификация,
// античит-гейты, проверка дубликатов, классификация, персист, пересчет
// статистики, обновление индексов и кешей, фоновые побочные эффекты.
type SubmissionService struct {
	userRepo    repository.UserRepository
	scoreRepo   repository.ScoreRepository
	beatmapRepo repository.BeatmapRepository

	authSvc  *AuthService
	statsSvc *StatsService
	lbSvc    *LeaderboardService
	achSvc   *AchievementService

	perf    PerformanceCalculator
	replays ReplayStore
	locks   SubmissionLocker
	bus     *pubsub.Bus
	tasks   *tasks.Runner
	caches  *cache.Registry

	ppCap PPCapFunc
}

// NewSubmissionService создает новый пайплайн отправки скоров
func NewSubmissionService(
	userRepo repository.UserRepository,
	scoreRepo repository.ScoreRepository,
	beatmapRepo repository.BeatmapRepository,
	authSvc *AuthService,
	statsSvc *StatsService,
	lbSvc *LeaderboardService,
	achSvc *AchievementService,
	perf PerformanceCalculator,
	replays ReplayStore,
	locks SubmissionLocker,
	bus *pubsub.Bus,
	taskRunner *tasks.Runner,
	caches *cache.Registry,
	ppCap PPCapFunc,
) *SubmissionService {
	return &SubmissionService{
		userRepo:    userRepo,
		scoreRepo:   scoreRepo,
		beatmapRepo: beatmapRepo,
		authSvc:     authSvc,
		statsSvc:    statsSvc,
		lbSvc:       lbSvc,
		achSvc:      achSvc,
		perf:        perf,
		replays:     replays,
		locks:       locks,
		bus:         bus,
		tasks:       taskRunner,
		caches:      caches,
		ppCap:       ppCap,
	}
}

// Submit проводит отправку через весь пайплайн и возвращает тело ответа
// клиенту. Инфраструктурные сбои до персиста дают пустой ответ (клиент
// повторит); после персиста сабмит уже необратим и ответ строится из того,
// что успело посчитаться.
func (s *SubmissionService) Submit(ctx context.Context, req *SubmitRequest) string {
	// Шаг 1: декодирование. Всё или ничего.
	fields, err := wire.DecodeSubmission(req.ScoreData, req.IV, req.OsuVersion)
	if err != nil {
		log.Printf("[SubmissionService] Отклонена нечитаемая отправка: %v", err)
		return respReject
	}
	sub, err := wire.ParseSubmission(fields)
	if err != nil {
		log.Printf("[SubmissionService] Отклонена битая отправка: %v", err)
		return respReject
	}

	mode := entity.Mode(sub.Mode)
	if !mode.Valid() {
		return respReject
	}
	mods := entity.Mods(sub.Mods)
	variant := entity.VariantFromMods(mods)

	// Шаг 2: карта и игрок. Отсутствующие карты мемоизируются сервисом
	// лидербордов, настойчивые ресабмиты не ходят в БД.
	beatmap, err := s.lbSvc.Beatmap(sub.BeatmapMD5)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnsubmitted) {
			return respUnsubmitted
		}
		log.Printf("[SubmissionService] Ошибка чтения карты %s: %v", sub.BeatmapMD5, err)
		return respRetry
	}

	user, err := s.authSvc.Authenticate(sub.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuth) {
			return respRetry // клиент повторит и переспросит пароль
		}
		log.Printf("[SubmissionService] Ошибка аутентификации %q: %v", sub.Username, err)
		return respRetry
	}

	if err := s.userRepo.UpdateLatestActivity(user.ID, time.Now().Unix()); err != nil {
		log.Printf("[SubmissionService] Не удалось отметить активность игрока %d: %v", user.ID, err)
	}

	// Шаг 3: гейты.
	if !mods.Rankable() {
		return respReject
	}
	if err := s.integrityGate(user, mods, req.UserAgent); err != nil {
		log.Printf("[SubmissionService] Отправка игрока %d отклонена: %v", user.ID, err)
		return respReject
	}

	score := s.buildScore(sub, user, mode, variant, req)

	// Шаг 4: сериализация кортежа + проверка дубликатов.
	lockKey := fmt.Sprintf("score-api:locks:submit:%d:%s:%d:%d",
		user.ID, sub.BeatmapMD5, mode, variant)
	release, err := s.locks.Acquire(ctx, lockKey)
	if err != nil {
		log.Printf("[SubmissionService] Не удалось взять блокировку отправки: %v", err)
		return respRetry
	}
	defer release()

	if err := s.duplicateGate(score); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			log.Printf("[SubmissionService] Повторная отправка игрока %d на %s отклонена",
				user.ID, sub.BeatmapMD5)
			return respReject
		}
		log.Printf("[SubmissionService] Ошибка проверки дубликата: %v", err)
		return respRetry
	}

	// Performance-значение: внешний калькулятор с деградацией до нуля.
	if beatmap.GivesPP() {
		res, err := s.perf.Calculate(ctx, PerformanceRequest{
			BeatmapID: beatmap.BeatmapID,
			Mode:      mode,
			Mods:      mods,
			MaxCombo:  score.MaxCombo,
			Accuracy:  score.Accuracy,
			CountMiss: score.CountMiss,
		})
		if err != nil {
			log.Printf("[SubmissionService] Калькулятор недоступен, скор %d играется с pp=0: %v",
				user.ID, err)
		} else {
			score.PP = res.PP
		}
	}

	// Шаг 5: классификация. Обязана случиться до персиста: демоут старого
	// BEST и вставка нового — одна транзакция.
	var oldBest *entity.Score
	oldBestRank := 0
	if sub.Passed && !req.ExitedOut {
		oldBest, err = s.findOldBest(user.ID, sub.BeatmapMD5, mode, variant)
		if err != nil {
			log.Printf("[SubmissionService] Ошибка чтения предыдущего BEST: %v", err)
			return respRetry
		}
		score.Completed = classify(score, oldBest)
		if oldBest != nil {
			if r, err := s.scoreRepo.RankOf(oldBest); err == nil {
				oldBestRank = r
			}
		}
	} else if req.ExitedOut {
		score.Completed = entity.StateQuit
	} else {
		score.Completed = entity.StateFailed
	}

	// Шаг 6: персист.
	if err := s.scoreRepo.Submit(score); err != nil {
		log.Printf("[SubmissionService] Ошибка сохранения скора: %v", err)
		return respRetry
	}

	// PP-гейт: подозрительно высокое значение на рейтинговой карте.
	if limit := s.ppCap(mode, variant); limit > 0 &&
		beatmap.GivesPP() && sub.Passed &&
		score.PP > limit && user.Privileges&entity.PrivWhitelist == 0 {
		s.scheduleRestrict(user, fmt.Sprintf(
			"score %d exceeds pp cap: %.2fpp on %s +%s",
			score.ID, score.PP, beatmap.SongName, mods.Readable()))
	}

	// Пас без реплея невозможен на настоящем клиенте.
	if sub.Passed && len(req.Replay) < minReplaySize {
		s.scheduleRestrict(user, fmt.Sprintf(
			"passed score %d submitted without replay data", score.ID))
	} else if sub.Passed {
		replay := req.Replay
		scoreID := score.ID
		s.tasks.Go("replay-save", func(ctx context.Context) error {
			return s.replays.Save(scoreID, variant, replay)
		})
	}

	// Шаги 7-8: статистика, индекс, инвалидация.
	stats, oldStats, err := s.applyToStats(ctx, user, beatmap, score, oldBest)
	if err != nil {
		log.Printf("[SubmissionService] Ошибка пересчета статистики игрока %d: %v", user.ID, err)
		// скор уже закоммичен; отвечаем тем, что есть
		stats, _ = s.statsSvc.Fetch(ctx, user, mode, variant)
		if stats == nil {
			return respReject
		}
		oldStats = *stats
	}

	s.publishInvalidation(score)

	rank := 0
	if score.Completed == entity.StateBest {
		if r, err := s.scoreRepo.RankOf(score); err == nil {
			rank = r
		}
	}

	// Шаг 9: побочные эффекты, не влияющие на ответ.
	s.scheduleSideEffects(user, beatmap, score, rank)

	// Ачивки участвуют в ответе, поэтому проверяются синхронно.
	var fresh []entity.Achievement
	if sub.Passed && beatmap.HasLeaderboard() && !user.Privileges.IsRestricted() {
		fresh, err = s.achSvc.CheckOnSubmit(score, stats)
		if err != nil {
			log.Printf("[SubmissionService] Ошибка проверки ачивок игрока %d: %v", user.ID, err)
		}
	}

	return buildCharts(beatmap, user, score, oldBest, oldBestRank, rank, &oldStats, stats, fresh)
}

func (s *SubmissionService) buildScore(sub *wire.Submission, user *entity.User, mode entity.Mode, variant entity.Variant, req *SubmitRequest) *entity.Score {
	playtime := req.ScoreTime
	if !sub.Passed {
		playtime = req.FailTime
	}

	return &entity.Score{
		BeatmapMD5: sub.BeatmapMD5,
		UserID:     user.ID,
		Score:      sub.Score,
		MaxCombo:   sub.MaxCombo,
		FullCombo:  sub.FullCombo,
		Mods:       entity.Mods(sub.Mods),
		Count300:   sub.Count300,
		Count100:   sub.Count100,
		Count50:    sub.Count50,
		CountGeki:  sub.CountGeki,
		CountKatu:  sub.CountKatu,
		CountMiss:  sub.CountMiss,
		PlayMode:   mode,
		Variant:    variant,
		Accuracy: CalculateAccuracy(mode,
			sub.Count300, sub.Count100, sub.Count50,
			sub.CountGeki, sub.CountKatu, sub.CountMiss),
		Timestamp: time.Now().Unix(),
		Playtime:  playtime,
		Checksum:  sub.Checksum,
	}
}

// integrityGate проверяет признаки подмены отправки. Чужой user-agent не
// отклоняет скор: данные посчитаны честно, игрок ограничивается со следующих
// чтений. Противоречивые моды отклоняют — такой скор не собрать на клиенте.
func (s *SubmissionService) integrityGate(user *entity.User, mods entity.Mods, userAgent string) error {
	if userAgent != "osu!" {
		s.scheduleRestrict(user, fmt.Sprintf(
			"unexpected user-agent %q at score submission", userAgent))
	}
	if mods.Conflict() {
		s.scheduleRestrict(user, fmt.Sprintf(
			"mutually exclusive mod combination +%s at score submission", mods.Readable()))
		return fmt.Errorf("%w: mod combination +%s", apperrors.ErrIntegrity, mods.Readable())
	}
	return nil
}

// duplicateGate отклоняет ретрансмиссию уже принятого скора.
func (s *SubmissionService) duplicateGate(score *entity.Score) error {
	dup, err := s.scoreRepo.DuplicateExists(score)
	if err != nil {
		return err
	}
	if dup {
		return apperrors.ErrDuplicate
	}
	return nil
}

func (s *SubmissionService) findOldBest(userID uint, md5 string, mode entity.Mode, variant entity.Variant) (*entity.Score, error) {
	best, err := s.scoreRepo.FindBest(userID, md5, mode, variant)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return best, nil
}

// classify определяет состояние завершенного плея относительно предыдущего
// BEST: больше pp — новый BEST; равный pp при большем счете — тоже.
func classify(score *entity.Score, oldBest *entity.Score) entity.CompletionState {
	if oldBest == nil {
		return entity.StateBest
	}
	if score.PP > oldBest.PP {
		return entity.StateBest
	}
	if score.PP == oldBest.PP && score.Score > oldBest.Score {
		return entity.StateBest
	}
	return entity.StateSubmitted
}

// applyToStats применяет скор к агрегатной статистике игрока и обновляет
// глобальный индекс, если взвешенный агрегат изменился.
func (s *SubmissionService) applyToStats(ctx context.Context, user *entity.User, beatmap *entity.Beatmap, score *entity.Score, oldBest *entity.Score) (*entity.Stats, entity.Stats, error) {
	stats, err := s.statsSvc.Fetch(ctx, user, score.PlayMode, score.Variant)
	if err != nil {
		return nil, entity.Stats{}, err
	}
	oldStats := *stats

	stats.Playcount++
	stats.Playtime += int64(score.Playtime / 1000)
	stats.TotalScore += score.Score
	stats.TotalHits += int64(score.Count300 + score.Count100 + score.Count50)

	passed := score.Completed.Passed()
	if passed && beatmap.HasLeaderboard() {
		if stats.MaxCombo < score.MaxCombo {
			stats.MaxCombo = score.MaxCombo
		}

		if score.Completed == entity.StateBest {
			if score.PP > 0 {
				if err := s.statsSvc.RecalcPerformance(stats, score.PP, oldBest != nil); err != nil {
					return nil, oldStats, err
				}
			}
			if beatmap.Status == entity.StatusRanked {
				stats.RankedScore += score.Score
				if oldBest != nil {
					stats.RankedScore -= oldBest.Score
				}
			}
		}
	}

	if err := s.statsSvc.Save(stats); err != nil {
		return nil, oldStats, err
	}

	if score.Completed == entity.StateBest &&
		!user.Privileges.IsRestricted() &&
		oldStats.PP != stats.PP {
		if err := s.statsSvc.UpdateRankIndex(ctx, user, stats); err != nil {
			log.Printf("[SubmissionService] Не удалось обновить рейтинговый индекс игрока %d: %v",
				user.ID, err)
		}
	}

	s.bus.Publish(pubsub.ChannelStatsRefresh, []byte(strconv.FormatUint(uint64(user.ID), 10)))
	return stats, oldStats, nil
}

// publishInvalidation сообщает всем процессам (включая этот), что лидерборд
// карты изменился.
func (s *SubmissionService) publishInvalidation(score *entity.Score) {
	payload := fmt.Sprintf("%s:%d:%d", score.BeatmapMD5, score.PlayMode, score.Variant)
	s.bus.Publish(pubsub.ChannelLBRefresh, []byte(payload))
}

// scheduleRestrict асинхронно ограничивает игрока и оповещает экосистему.
func (s *SubmissionService) scheduleRestrict(user *entity.User, reason string) {
	if user.Privileges.IsRestricted() {
		return
	}

	userID := user.ID
	newPrivs := user.Privileges &^ entity.PrivPublic
	user.Privileges = newPrivs

	log.Printf("[SubmissionService] Игрок %d ограничен: %s", userID, reason)

	s.tasks.Go("restrict-user", func(ctx context.Context) error {
		if err := s.userRepo.UpdatePrivileges(userID, newPrivs); err != nil {
			return err
		}
		return s.bus.Publish(pubsub.ChannelBan,
			[]byte(strconv.FormatUint(uint64(userID), 10)))
	})
}

// scheduleSideEffects запускает фоновые эффекты сабмита: счетчики карты,
// most played, анонс первого места.
func (s *SubmissionService) scheduleSideEffects(user *entity.User, beatmap *entity.Beatmap, score *entity.Score, rank int) {
	userID := user.ID
	md5 := beatmap.MD5
	mode := score.PlayMode
	passed := score.Completed.Passed()

	s.tasks.Go("beatmap-counts", func(ctx context.Context) error {
		return s.beatmapRepo.IncrementCounts(md5, passed)
	})
	s.tasks.Go("most-played", func(ctx context.Context) error {
		return s.beatmapRepo.IncrementUserPlaycount(userID, md5, mode)
	})

	if rank == 1 && score.Completed == entity.StateBest &&
		beatmap.HasLeaderboard() && !user.Privileges.IsRestricted() {
		username := user.Username
		songName := beatmap.SongName
		scoreID := score.ID
		variant := score.Variant
		pp := score.PP

		s.tasks.Go("first-place", func(ctx context.Context) error {
			log.Printf("[SubmissionService] Первое место: %s на %s (%.2fpp, скор %d)",
				username, songName, pp, scoreID)
			payload, err := json.Marshal(map[string]interface{}{
				"user_id":     userID,
				"beatmap_md5": md5,
				"mode":        int(mode),
				"variant":     int(variant),
				"score_id":    scoreID,
			})
			if err != nil {
				return err
			}
			return s.bus.Publish(pubsub.ChannelFirstPlace, payload)
		})
	}
}
