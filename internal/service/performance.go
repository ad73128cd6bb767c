package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yourusername/score-api/internal/domain/entity"
)

// PerformanceRequest — параметры одного расчета performance-значения.
type PerformanceRequest struct {
	BeatmapID int
	Mode      entity.Mode
	Mods      entity.Mods
	MaxCombo  int
	Accuracy  float64
	CountMiss int
}

// PerformanceResult — результат расчета.
type PerformanceResult struct {
	PP    float64 `json:"pp"`
	Stars float64 `json:"stars"`
}

// PerformanceCalculator считает performance-значение скора. Сама математика
// живет во внешнем сервисе; здесь только клиент.
type PerformanceCalculator interface {
	Calculate(ctx context.Context, req PerformanceRequest) (PerformanceResult, error)
}

// HTTPPerformanceClient реализует PerformanceCalculator поверх HTTP API
// внешнего калькулятора с ограниченным числом повторов.
type HTTPPerformanceClient struct {
	baseURL string
	client  *http.Client
	retries int
}

// NewHTTPPerformanceClient создает новый клиент калькулятора
func NewHTTPPerformanceClient(baseURL string, timeout time.Duration, retries int) *HTTPPerformanceClient {
	if retries < 0 {
		retries = 0
	}
	return &HTTPPerformanceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		retries: retries,
	}
}

// Calculate запрашивает расчет, повторяя запрос при сетевых сбоях.
// Исчерпание повторов — ошибка; деградацию до нуля решает вызывающий.
func (c *HTTPPerformanceClient) Calculate(ctx context.Context, req PerformanceRequest) (PerformanceResult, error) {
	q := url.Values{}
	q.Set("beatmap_id", strconv.Itoa(req.BeatmapID))
	q.Set("mode", strconv.Itoa(int(req.Mode)))
	q.Set("mods", strconv.FormatInt(int64(req.Mods), 10))
	q.Set("max_combo", strconv.Itoa(req.MaxCombo))
	q.Set("accuracy", strconv.FormatFloat(req.Accuracy, 'f', 4, 64))
	q.Set("miss_count", strconv.Itoa(req.CountMiss))

	endpoint := c.baseURL + "/api/v1/calculate?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return PerformanceResult{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		result, err := c.doRequest(ctx, endpoint)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[Performance] Попытка %d не удалась: %v", attempt+1, err)
	}

	return PerformanceResult{}, fmt.Errorf("performance calculator unavailable: %w", lastErr)
}

func (c *HTTPPerformanceClient) doRequest(ctx context.Context, endpoint string) (PerformanceResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PerformanceResult{}, err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return PerformanceResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PerformanceResult{}, fmt.Errorf("calculator returned status %d", resp.StatusCode)
	}

	var result PerformanceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return PerformanceResult{}, fmt.Errorf("decode calculator response: %w", err)
	}
	return result, nil
}
