package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/yourusername/score-api/internal/cache"
	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
	"github.com/yourusername/score-api/internal/pubsub"
)

// Invalidator связывает каналы шины с локальными кешами: каждое событие
// переводится в сброс или точечную правку закешированных данных. Обработчики
// идемпотентны и не возвращают ошибок наружу — битое событие логируется
// и пропускается.
type Invalidator struct {
	userRepo repository.UserRepository
	stats    *StatsService
	boards   *LeaderboardService
	caches   *cache.Registry
	kv       repository.CacheRepository
}

// NewInvalidator создает новый обработчик событий инвалидации
func NewInvalidator(
	userRepo repository.UserRepository,
	stats *StatsService,
	boards *LeaderboardService,
	caches *cache.Registry,
	kv repository.CacheRepository,
) *Invalidator {
	return &Invalidator{
		userRepo: userRepo,
		stats:    stats,
		boards:   boards,
		caches:   caches,
		kv:       kv,
	}
}

// Register регистрирует обработчики всех каналов каталога. Вызывается до
// Bus.Start.
func (i *Invalidator) Register(bus *pubsub.Bus) {
	bus.Handle(pubsub.ChannelBan, i.onBan)
	bus.Handle(pubsub.ChannelRename, i.onRename)
	bus.Handle(pubsub.ChannelPassChange, i.onPassChange)
	bus.Handle(pubsub.ChannelClanUpdate, i.onClanUpdate)
	bus.Handle(pubsub.ChannelMapDecache, i.onMapDecache)
	bus.Handle(pubsub.ChannelLBRefresh, i.onBoardRefresh)
	bus.Handle(pubsub.ChannelRecalcPP, i.onRecalcPP)
}

// onBan обрабатывает изменение статуса ограничения игрока: справочные кеши
// сбрасываются, и если игрок теперь ограничен, он убирается из рейтинговых
// индексов и из закешированных лидербордов.
func (i *Invalidator) onBan(ctx context.Context, payload []byte) {
	userID, ok := parseUserID(payload)
	if !ok {
		log.Printf("[Invalidator] ban: некорректная полезная нагрузка %q", payload)
		return
	}

	i.caches.Identity.DropUser(userID)

	user, err := i.userRepo.GetByID(userID)
	if err != nil {
		log.Printf("[Invalidator] ban: игрок %d не найден: %v", userID, err)
		return
	}

	if user.Privileges.IsRestricted() {
		i.stats.RemoveFromRankIndex(ctx, user)
		i.caches.Leaderboards.DropUser(userID)
		log.Printf("[Invalidator] Игрок %d ограничен, убран из индексов и кешей", userID)
		return
	}

	// снятие ограничения: скоры снова видимы, снимки с участием игрока
	// пересоберутся при следующем чтении
	i.caches.Leaderboards.DropUser(userID)
	log.Printf("[Invalidator] С игрока %d снято ограничение", userID)
}

// onRename подменяет имя игрока в закешированных строках лидербордов,
// не сбрасывая сами снимки.
func (i *Invalidator) onRename(ctx context.Context, payload []byte) {
	var msg struct {
		UserID uint `json:"userID"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil || msg.UserID == 0 {
		log.Printf("[Invalidator] rename: некорректная полезная нагрузка %q", payload)
		return
	}

	i.caches.Identity.DropUser(msg.UserID)

	user, err := i.userRepo.GetByID(msg.UserID)
	if err != nil {
		log.Printf("[Invalidator] rename: игрок %d не найден: %v", msg.UserID, err)
		return
	}

	i.caches.Identity.PutUsername(user.ID, user.Username)
	i.caches.Leaderboards.RenameUser(user.ID, user.Username)
	log.Printf("[Invalidator] Игрок %d переименован в %s", user.ID, user.Username)
}

// onPassChange сбрасывает мемо пароля: следующая аутентификация пройдет
// через bcrypt заново.
func (i *Invalidator) onPassChange(ctx context.Context, payload []byte) {
	var msg struct {
		UserID uint `json:"user_id"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil || msg.UserID == 0 {
		log.Printf("[Invalidator] change_pass: некорректная полезная нагрузка %q", payload)
		return
	}
	i.caches.Identity.DropPassword(msg.UserID)
}

// onClanUpdate переписывает тег клана игрока в закешированных строках
// лидербордов. В событии приходит ID игрока; актуальный тег читается из БД.
func (i *Invalidator) onClanUpdate(ctx context.Context, payload []byte) {
	userID, ok := parseUserID(payload)
	if !ok {
		log.Printf("[Invalidator] clan_update: некорректная полезная нагрузка %q", payload)
		return
	}

	user, err := i.userRepo.GetByID(userID)
	if err != nil {
		log.Printf("[Invalidator] clan_update: игрок %d не найден: %v", userID, err)
		return
	}

	tag := ""
	if user.ClanID != 0 {
		tag, err = i.userRepo.GetClanTag(user.ClanID)
		if err != nil {
			log.Printf("[Invalidator] clan_update: не удалось прочитать тег клана %d: %v", user.ClanID, err)
			return
		}
	}

	i.caches.Leaderboards.RetagUser(userID, tag)
	log.Printf("[Invalidator] Игрок %d: тег клана обновлен на %q", userID, tag)
}

// onMapDecache сбрасывает все снимки карты по всем режимам и вариантам.
func (i *Invalidator) onMapDecache(ctx context.Context, payload []byte) {
	md5 := strings.TrimSpace(string(payload))
	if len(md5) != 32 {
		log.Printf("[Invalidator] bmap_decache: некорректный md5 %q", payload)
		return
	}
	i.caches.Leaderboards.DropMap(md5)
	if err := i.kv.Delete("nomap:" + md5); err != nil {
		log.Printf("[Invalidator] bmap_decache: не удалось сбросить мемо карты %s: %v", md5, err)
	}
}

// onBoardRefresh сбрасывает один лидерборд. Формат: "md5:mode:variant".
func (i *Invalidator) onBoardRefresh(ctx context.Context, payload []byte) {
	parts := strings.Split(string(payload), ":")
	if len(parts) != 3 || len(parts[0]) != 32 {
		log.Printf("[Invalidator] lb_refresh: некорректная полезная нагрузка %q", payload)
		return
	}

	mode, err := strconv.Atoi(parts[1])
	if err != nil || !entity.Mode(mode).Valid() {
		log.Printf("[Invalidator] lb_refresh: некорректный режим %q", parts[1])
		return
	}
	variant, err := strconv.Atoi(parts[2])
	if err != nil || variant < int(entity.VariantVanilla) || variant > int(entity.VariantAutopilot) {
		log.Printf("[Invalidator] lb_refresh: некорректный вариант %q", parts[2])
		return
	}

	i.boards.Invalidate(parts[0], entity.Mode(mode), entity.Variant(variant))
}

// onRecalcPP точечно подменяет performance-значение скора в закешированных
// снимках карты и пересортировывает их. Значение в БД меняет публикующая
// сторона до отправки события.
func (i *Invalidator) onRecalcPP(ctx context.Context, payload []byte) {
	var msg struct {
		BeatmapMD5 string  `json:"beatmap_md5"`
		UserID     uint    `json:"user_id"`
		ScoreID    uint64  `json:"score_id"`
		NewPP      float64 `json:"new_pp"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil || msg.ScoreID == 0 || len(msg.BeatmapMD5) != 32 {
		log.Printf("[Invalidator] recalc_pp: некорректная полезная нагрузка %q", payload)
		return
	}

	i.caches.Leaderboards.UpdateScorePP(msg.BeatmapMD5, msg.ScoreID, msg.NewPP)
	log.Printf("[Invalidator] Скор %d на карте %s: pp обновлено до %.2f",
		msg.ScoreID, msg.BeatmapMD5, msg.NewPP)
}

func parseUserID(payload []byte) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(string(payload)), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
