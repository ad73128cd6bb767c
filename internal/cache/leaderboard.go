package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
)

// BoardSnapshot — неизменяемый снимок лидерборда на момент чтения из БД.
// Rows упорядочены по убыванию ключа ранжирования, Total — полное число
// BEST-скоров под фильтром (не ограниченное длиной снимка).
type BoardSnapshot struct {
	Rows  []entity.LeaderboardRow
	Total int64
}

// LeaderboardCache кеширует снимки лидербордов и персональные лучшие
// результаты. Ключ — (карта, режим, вариант, фильтр). Изменение состава борда
// сбрасывает его целиком; правки, не меняющие состав (имя, тег клана, pp),
// патчат снимки копированием, не теряя кеш.
type LeaderboardCache struct {
	boards *LRU[*BoardSnapshot]
	pbs    *LRU[*entity.LeaderboardRow]
}

// NewLeaderboardCache создает новый кеш лидербордов
func NewLeaderboardCache(boardCapacity, pbCapacity int, maxAge time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		boards: NewLRU[*BoardSnapshot](boardCapacity, maxAge),
		pbs:    NewLRU[*entity.LeaderboardRow](pbCapacity, maxAge),
	}
}

// boardPrefix — общий префикс всех записей одного (карта, режим, вариант).
func boardPrefix(md5 string, mode entity.Mode, variant entity.Variant) string {
	return fmt.Sprintf("%s:%d:%d", md5, mode, variant)
}

func boardKey(md5 string, mode entity.Mode, variant entity.Variant, f repository.LeaderboardFilter) string {
	return boardPrefix(md5, mode, variant) + ":" + f.CacheKey()
}

func pbKey(md5 string, mode entity.Mode, variant entity.Variant, userID uint, f repository.LeaderboardFilter) string {
	return fmt.Sprintf("%s:%d:%s", boardPrefix(md5, mode, variant), userID, f.CacheKey())
}

// GetBoard возвращает закешированный снимок лидерборда.
func (c *LeaderboardCache) GetBoard(md5 string, mode entity.Mode, variant entity.Variant, f repository.LeaderboardFilter) (*BoardSnapshot, bool) {
	return c.boards.Get(boardKey(md5, mode, variant, f))
}

// PutBoard кладет снимок лидерборда.
func (c *LeaderboardCache) PutBoard(md5 string, mode entity.Mode, variant entity.Variant, f repository.LeaderboardFilter, snap *BoardSnapshot) {
	c.boards.Put(boardKey(md5, mode, variant, f), snap)
}

// GetPersonalBest возвращает закешированный лучший результат игрока.
func (c *LeaderboardCache) GetPersonalBest(md5 string, mode entity.Mode, variant entity.Variant, userID uint, f repository.LeaderboardFilter) (*entity.LeaderboardRow, bool) {
	return c.pbs.Get(pbKey(md5, mode, variant, userID, f))
}

// PutPersonalBest кладет лучший результат игрока.
func (c *LeaderboardCache) PutPersonalBest(md5 string, mode entity.Mode, variant entity.Variant, userID uint, f repository.LeaderboardFilter, row *entity.LeaderboardRow) {
	c.pbs.Put(pbKey(md5, mode, variant, userID, f), row)
}

// DropBoard сбрасывает все снимки и персональные результаты одного
// (карта, режим, вариант) — по всем фильтрам сразу.
func (c *LeaderboardCache) DropBoard(md5 string, mode entity.Mode, variant entity.Variant) {
	prefix := boardPrefix(md5, mode, variant)
	c.boards.DeletePrefix(prefix)
	c.pbs.DeletePrefix(prefix)
}

// DropMap сбрасывает все записи карты по всем режимам и вариантам.
func (c *LeaderboardCache) DropMap(md5 string) {
	c.boards.DeletePrefix(md5)
	c.pbs.DeletePrefix(md5)
}

// Purge сбрасывает кеш целиком.
func (c *LeaderboardCache) Purge() {
	c.boards.Purge()
	c.pbs.Purge()
}

// DropUser сбрасывает снимки, в которых присутствуют строки игрока, и его
// персональные результаты. Применяется при ограничении аккаунта.
func (c *LeaderboardCache) DropUser(userID uint) {
	var boardKeys []string
	c.boards.Each(func(key string, snap *BoardSnapshot) {
		for i := range snap.Rows {
			if snap.Rows[i].UserID == userID {
				boardKeys = append(boardKeys, key)
				return
			}
		}
	})
	for _, key := range boardKeys {
		c.boards.Delete(key)
	}

	var pbKeys []string
	c.pbs.Each(func(key string, row *entity.LeaderboardRow) {
		if row.UserID == userID {
			pbKeys = append(pbKeys, key)
		}
	})
	for _, key := range pbKeys {
		c.pbs.Delete(key)
	}
}

// RenameUser переписывает имя игрока во всех закешированных строках.
// Снимки с его строками заменяются обновленными копиями.
func (c *LeaderboardCache) RenameUser(userID uint, username string) {
	type patch struct {
		key  string
		snap *BoardSnapshot
	}
	var patches []patch

	c.boards.Each(func(key string, snap *BoardSnapshot) {
		touched := false
		for i := range snap.Rows {
			if snap.Rows[i].UserID == userID {
				touched = true
				break
			}
		}
		if !touched {
			return
		}

		fixed := &BoardSnapshot{
			Rows:  append([]entity.LeaderboardRow(nil), snap.Rows...),
			Total: snap.Total,
		}
		for i := range fixed.Rows {
			if fixed.Rows[i].UserID == userID {
				fixed.Rows[i].Username = username
			}
		}
		patches = append(patches, patch{key: key, snap: fixed})
	})

	for _, p := range patches {
		c.boards.Put(p.key, p.snap)
	}

	var pbKeys []string
	c.pbs.Each(func(key string, row *entity.LeaderboardRow) {
		if row.UserID == userID {
			pbKeys = append(pbKeys, key)
		}
	})
	for _, key := range pbKeys {
		c.pbs.Delete(key)
	}
}

// RetagUser переписывает тег клана игрока во всех закешированных строках.
// Тег не влияет на ранжирование, поэтому персональные результаты тоже
// патчатся на месте, без сброса.
func (c *LeaderboardCache) RetagUser(userID uint, clanTag string) {
	type patch struct {
		key  string
		snap *BoardSnapshot
	}
	var patches []patch

	c.boards.Each(func(key string, snap *BoardSnapshot) {
		touched := false
		for i := range snap.Rows {
			if snap.Rows[i].UserID == userID {
				touched = true
				break
			}
		}
		if !touched {
			return
		}

		fixed := &BoardSnapshot{
			Rows:  append([]entity.LeaderboardRow(nil), snap.Rows...),
			Total: snap.Total,
		}
		for i := range fixed.Rows {
			if fixed.Rows[i].UserID == userID {
				fixed.Rows[i].ClanTag = clanTag
			}
		}
		patches = append(patches, patch{key: key, snap: fixed})
	})

	for _, p := range patches {
		c.boards.Put(p.key, p.snap)
	}

	type pbPatch struct {
		key string
		row *entity.LeaderboardRow
	}
	var pbPatches []pbPatch
	c.pbs.Each(func(key string, row *entity.LeaderboardRow) {
		if row.UserID != userID {
			return
		}
		fixed := *row
		fixed.ClanTag = clanTag
		pbPatches = append(pbPatches, pbPatch{key: key, row: &fixed})
	})
	for _, p := range pbPatches {
		c.pbs.Put(p.key, p.row)
	}
}

// UpdateScorePP подменяет performance-значение скора во всех снимках карты
// и пересортировывает затронутые снимки.
func (c *LeaderboardCache) UpdateScorePP(md5 string, scoreID uint64, newPP float64) {
	type patch struct {
		key  string
		snap *BoardSnapshot
	}
	var patches []patch

	c.boards.Each(func(key string, snap *BoardSnapshot) {
		if !strings.HasPrefix(key, md5) {
			return
		}
		idx := -1
		for i := range snap.Rows {
			if snap.Rows[i].ID == scoreID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}

		fixed := &BoardSnapshot{
			Rows:  append([]entity.LeaderboardRow(nil), snap.Rows...),
			Total: snap.Total,
		}
		fixed.Rows[idx].PP = newPP
		sort.SliceStable(fixed.Rows, func(a, b int) bool {
			ka, kb := fixed.Rows[a].ScoringKey(), fixed.Rows[b].ScoringKey()
			if ka != kb {
				return ka > kb
			}
			return fixed.Rows[a].Timestamp < fixed.Rows[b].Timestamp
		})
		patches = append(patches, patch{key: key, snap: fixed})
	})

	for _, p := range patches {
		c.boards.Put(p.key, p.snap)
	}

	type pbPatch struct {
		key string
		row *entity.LeaderboardRow
	}
	var pbPatches []pbPatch
	c.pbs.Each(func(key string, row *entity.LeaderboardRow) {
		if row.ID != scoreID {
			return
		}
		fixed := *row
		fixed.PP = newPP
		pbPatches = append(pbPatches, pbPatch{key: key, row: &fixed})
	})
	for _, p := range pbPatches {
		c.pbs.Put(p.key, p.row)
	}
}
