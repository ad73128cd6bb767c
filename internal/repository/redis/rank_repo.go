package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/score-api/internal/domain/entity"
)

// RankIndexRepo реализует repository.RankIndexRepository поверх сортированных
// множеств Redis. Индекс — always-live: значения пишутся сразу и читаются
// напрямую, локального кеширования нет. БД остаётся источником истины, и
// индекс можно в любой момент перестроить с нуля.
type RankIndexRepo struct {
	client redis.UniversalClient
}

// NewRankIndexRepo создает новый репозиторий рейтингового индекса
func NewRankIndexRepo(client redis.UniversalClient) (*RankIndexRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for RankIndexRepo")
	}
	return &RankIndexRepo{client: client}, nil
}

// globalKey формирует ключ глобального индекса. Форма ключей историческая,
// её читают и другие сервисы.
func globalKey(mode entity.Mode, variant entity.Variant) string {
	return "ripple:" + variant.RedisBoard() + ":" + mode.StatsSuffix()
}

// countryKey формирует ключ индекса страны.
func countryKey(mode entity.Mode, variant entity.Variant, country string) string {
	return globalKey(mode, variant) + ":" + strings.ToLower(country)
}

// member — представление игрока внутри множества.
func member(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// Set записывает pp игрока в глобальный индекс и индекс его страны
func (r *RankIndexRepo) Set(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string, pp float64) error {
	z := &redis.Z{Score: pp, Member: member(userID)}

	if err := r.client.ZAdd(ctx, globalKey(mode, variant), z).Err(); err != nil {
		return fmt.Errorf("rank index zadd: %w", err)
	}
	if country != "" && !strings.EqualFold(country, "XX") {
		if err := r.client.ZAdd(ctx, countryKey(mode, variant, country), z).Err(); err != nil {
			return fmt.Errorf("country rank index zadd: %w", err)
		}
	}
	return nil
}

// rank переводит позицию ZREVRANK в место с единицы; отсутствие в индексе — 0.
func (r *RankIndexRepo) rank(ctx context.Context, key string, userID uint) (int, error) {
	pos, err := r.client.ZRevRank(ctx, key, member(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return int(pos) + 1, nil
}

// GlobalRank возвращает глобальное место игрока
func (r *RankIndexRepo) GlobalRank(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant) (int, error) {
	return r.rank(ctx, globalKey(mode, variant), userID)
}

// CountryRank возвращает место игрока внутри страны
func (r *RankIndexRepo) CountryRank(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string) (int, error) {
	if country == "" || strings.EqualFold(country, "XX") {
		return 0, nil
	}
	return r.rank(ctx, countryKey(mode, variant, country), userID)
}

// Remove убирает игрока из глобального индекса и индекса страны
func (r *RankIndexRepo) Remove(ctx context.Context, userID uint, mode entity.Mode, variant entity.Variant, country string) error {
	if err := r.client.ZRem(ctx, globalKey(mode, variant), member(userID)).Err(); err != nil {
		return fmt.Errorf("rank index zrem: %w", err)
	}
	if country != "" && !strings.EqualFold(country, "XX") {
		if err := r.client.ZRem(ctx, countryKey(mode, variant, country), member(userID)).Err(); err != nil {
			return fmt.Errorf("country rank index zrem: %w", err)
		}
	}
	return nil
}
