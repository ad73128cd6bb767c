package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
	"github.com/yourusername/score-api/internal/service"
)

// ReplayHandler отдает реплеи клиенту и сайту
type ReplayHandler struct {
	replays *service.ReplayService
}

// NewReplayHandler создает новый обработчик реплеев
func NewReplayHandler(replays *service.ReplayService) *ReplayHandler {
	return &ReplayHandler{
		replays: replays,
	}
}

// GetRaw обрабатывает GET /web/osu-getreplay.php: сырое тело реплея для
// внутриигрового просмотра. Заголовок клиент достраивает сам.
func (h *ReplayHandler) GetRaw(c *gin.Context) {
	scoreID, err := strconv.ParseUint(c.Query("c"), 10, 64)
	if err != nil {
		c.String(http.StatusOK, "error: no")
		return
	}

	data, err := h.replays.Raw(scoreID)
	if err != nil {
		c.String(http.StatusOK, "error: no")
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", data)
}

// GetFull обрабатывает GET /api/replays/:id: полный файл .osr с заголовком
// для скачивания с сайта.
func (h *ReplayHandler) GetFull(c *gin.Context) {
	scoreID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid score id"})
		return
	}

	data, err := h.replays.Full(scoreID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Replay not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error serving replay"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=replay_"+c.Param("id")+".osr")
	c.Data(http.StatusOK, "application/octet-stream", data)
}
