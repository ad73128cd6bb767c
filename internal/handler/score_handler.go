package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/score-api/internal/service"
)

// maxSubmissionSize ограничивает размер формы сабмита (реплей + метаданные).
const maxSubmissionSize = 32 << 20

// ScoreHandler обрабатывает отправку скоров игровым клиентом
type ScoreHandler struct {
	submissions *service.SubmissionService
}

// NewScoreHandler создает новый обработчик отправки скоров
func NewScoreHandler(submissions *service.SubmissionService) *ScoreHandler {
	return &ScoreHandler{
		submissions: submissions,
	}
}

// Submit обрабатывает POST /web/osu-submit-modular-selector.php.
// Клиент шлет multipart-форму, где под именем "score" лежат и шифротекст
// скора, и файл реплея. Ответ всегда plaintext со статусом 200: контракт
// клиента не знает HTTP-ошибок.
func (h *ScoreHandler) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxSubmissionSize); err != nil {
		c.String(http.StatusOK, "error: no")
		return
	}
	form := c.Request.MultipartForm

	scoreValues := form.Value["score"]
	if len(scoreValues) == 0 {
		c.String(http.StatusOK, "error: no")
		return
	}

	var replay []byte
	if files := form.File["score"]; len(files) > 0 {
		f, err := files[0].Open()
		if err == nil {
			replay, _ = io.ReadAll(f)
			f.Close()
		}
	}

	req := &service.SubmitRequest{
		ScoreData:  []byte(scoreValues[0]),
		IV:         []byte(c.PostForm("iv")),
		OsuVersion: c.PostForm("osuver"),
		Password:   c.PostForm("pass"),
		UserAgent:  c.GetHeader("User-Agent"),
		Token:      c.GetHeader("Token"),
		ExitedOut:  formBool(c.PostForm("x")),
		FailTime:   formInt(c.PostForm("ft")),
		ScoreTime:  formInt(c.PostForm("st")),
		Replay:     replay,
	}

	c.String(http.StatusOK, h.submissions.Submit(c.Request.Context(), req))
}

func formBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func formInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
