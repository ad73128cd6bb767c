package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/score-api/internal/domain/repository"
)

const (
	lockPollInterval = 100 * time.Millisecond
	// страховочный TTL: упавший процесс не оставит кортеж заблокированным навсегда
	lockTTL = 15 * time.Second
)

// SubmissionLock — межпроцессная блокировка на кортеж отправки
// (игрок, карта, режим, вариант). Конкурирующие отправки одного кортежа
// сериализуются; разные кортежи не мешают друг другу.
type SubmissionLock struct {
	cache repository.CacheRepository
}

// NewSubmissionLock создает новую блокировку отправки
func NewSubmissionLock(cache repository.CacheRepository) (*SubmissionLock, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache repository cannot be nil for SubmissionLock")
	}
	return &SubmissionLock{cache: cache}, nil
}

// Acquire захватывает блокировку, опрашивая ключ до успеха либо отмены
// контекста. Возвращает функцию освобождения.
func (l *SubmissionLock) Acquire(ctx context.Context, key string) (func(), error) {
	for {
		ok, err := l.cache.SetNX(key, 1, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire submission lock: %w", err)
		}
		if ok {
			release := func() {
				if err := l.cache.Delete(key); err != nil {
					// TTL доберет ключ сам
					return
				}
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}
