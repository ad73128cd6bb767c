package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
	"github.com/yourusername/score-api/internal/service"
)

const (
	lbBasicErr = "error: no"
	lbPassErr  = "error: pass"

	// статусная шапка карты, неизвестной серверу
	lbNotSubmitted = "-1|false"
)

// LeaderboardHandler обслуживает чтение лидербордов игровым клиентом
type LeaderboardHandler struct {
	auth   *service.AuthService
	boards *service.LeaderboardService
}

// NewLeaderboardHandler создает новый обработчик лидербордов
func NewLeaderboardHandler(auth *service.AuthService, boards *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		auth:   auth,
		boards: boards,
	}
}

// GetScores обрабатывает GET /web/osu-osz2-getscores.php: plaintext-ответ
// из шапки карты, строки персонального лучшего и верхних строк лидерборда.
func (h *LeaderboardHandler) GetScores(c *gin.Context) {
	user, err := h.auth.Authenticate(c.Query("us"), c.Query("ha"))
	if err != nil {
		if errors.Is(err, apperrors.ErrAuth) {
			c.String(http.StatusOK, lbPassErr)
			return
		}
		c.String(http.StatusOK, lbBasicErr)
		return
	}

	md5 := c.Query("c")
	if !validMD5(md5) {
		c.String(http.StatusOK, lbBasicErr)
		return
	}

	modeN, err := strconv.Atoi(c.Query("m"))
	if err != nil || !entity.Mode(modeN).Valid() {
		c.String(http.StatusOK, lbBasicErr)
		return
	}
	mode := entity.Mode(modeN)

	modsN, err := strconv.ParseInt(c.Query("mods"), 10, 32)
	if err != nil {
		c.String(http.StatusOK, lbBasicErr)
		return
	}
	mods := entity.Mods(modsN)
	variant := entity.VariantFromMods(mods)

	beatmap, err := h.boards.Beatmap(md5)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnsubmitted) {
			c.String(http.StatusOK, lbNotSubmitted)
			return
		}
		c.String(http.StatusOK, lbBasicErr)
		return
	}
	if !beatmap.HasLeaderboard() {
		c.String(http.StatusOK, beatmap.HeaderString(0))
		return
	}

	lbType, _ := strconv.Atoi(c.Query("v"))
	filter := buildFilter(entity.LeaderboardType(lbType), mods, user)

	snap, err := h.boards.Get(md5, mode, variant, filter)
	if err != nil {
		c.String(http.StatusOK, lbBasicErr)
		return
	}

	pbLine := ""
	pb, rank, err := h.boards.PersonalBest(md5, mode, variant, user.ID, filter)
	if err == nil && pb != nil {
		pbLine = pb.ClientString(rank, true)
	}

	rows := h.boards.Top(snap)
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, beatmap.HeaderString(snap.Total))
	lines = append(lines, pbLine)
	for i := range rows {
		lines = append(lines, rows[i].ClientString(i+1, true))
	}

	c.String(http.StatusOK, strings.Join(lines, "\n"))
}

// buildFilter переводит тип лидерборда клиента в фильтр выборки.
func buildFilter(t entity.LeaderboardType, mods entity.Mods, user *entity.User) repository.LeaderboardFilter {
	switch t {
	case entity.LBTypeMods:
		return repository.LeaderboardFilter{Kind: repository.FilterMods, Mods: mods}
	case entity.LBTypeFriends:
		return repository.LeaderboardFilter{Kind: repository.FilterFriends, FriendsOfID: user.ID}
	case entity.LBTypeCountry:
		return repository.LeaderboardFilter{Kind: repository.FilterCountry, Country: user.Country}
	default:
		return repository.LeaderboardFilter{Kind: repository.FilterNone}
	}
}

func validMD5(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}
