package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// ScoreRepo реализует repository.ScoreRepository
type ScoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo создает новый репозиторий скоров
func NewScoreRepo(db *gorm.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// GetByID возвращает скор по ID
func (r *ScoreRepo) GetByID(id uint64) (*entity.Score, error) {
	var s entity.Score
	err := r.db.First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindBest возвращает текущий BEST-скор игрока на карте
func (r *ScoreRepo) FindBest(userID uint, beatmapMD5 string, mode entity.Mode, variant entity.Variant) (*entity.Score, error) {
	var s entity.Score
	err := r.db.
		Where("user_id = ? AND beatmap_md5 = ? AND play_mode = ? AND variant = ? AND completed = ?",
			userID, beatmapMD5, mode, variant, entity.StateBest).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DuplicateExists проверяет наличие уже отправленного идентичного скора.
// Совпадением считается либо та же онлайн-чексумма, либо тот же кортеж
// (игрок, карта, очки, режим, вариант, моды).
func (r *ScoreRepo) DuplicateExists(s *entity.Score) (bool, error) {
	var count int64
	q := r.db.Model(&entity.Score{})

	if s.Checksum != "" {
		q = q.Where(
			"checksum = ? OR (user_id = ? AND beatmap_md5 = ? AND score = ? AND play_mode = ? AND variant = ? AND mods = ?)",
			s.Checksum, s.UserID, s.BeatmapMD5, s.Score, s.PlayMode, s.Variant, s.Mods,
		)
	} else {
		q = q.Where(
			"user_id = ? AND beatmap_md5 = ? AND score = ? AND play_mode = ? AND variant = ? AND mods = ?",
			s.UserID, s.BeatmapMD5, s.Score, s.PlayMode, s.Variant, s.Mods,
		)
	}

	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Submit сохраняет скор. Для BEST-скора предыдущий BEST перетегивается в
// SUBMITTED в той же транзакции: промежуточного состояния с двумя BEST или
// без единого BEST не существует.
func (r *ScoreRepo) Submit(s *entity.Score) error {
	if s.Completed != entity.StateBest {
		return r.db.Create(s).Error
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entity.Score{}).
			Where("user_id = ? AND beatmap_md5 = ? AND play_mode = ? AND variant = ? AND completed = ?",
				s.UserID, s.BeatmapMD5, s.PlayMode, s.Variant, entity.StateBest).
			Update("completed", entity.StateSubmitted).Error
		if err != nil {
			return fmt.Errorf("demote previous best: %w", err)
		}
		return tx.Create(s).Error
	})
}

// scoringColumn возвращает имя колонки ключа ранжирования для варианта.
func scoringColumn(variant entity.Variant) string {
	if variant.UsesPP() {
		return "s.pp"
	}
	return "s.score"
}

// filterClause строит дополнительное условие выборки и его аргументы.
func (r *ScoreRepo) filterClause(f repository.LeaderboardFilter) (string, []interface{}, error) {
	switch f.Kind {
	case repository.FilterNone:
		return "", nil, nil
	case repository.FilterMods:
		return " AND s.mods = ?", []interface{}{f.Mods}, nil
	case repository.FilterCountry:
		return " AND u.country = ?", []interface{}{f.Country}, nil
	case repository.FilterFriends:
		var friendIDs []uint
		err := r.db.Model(&entity.Relationship{}).
			Where("user_id = ?", f.FriendsOfID).
			Pluck("friend_id", &friendIDs).Error
		if err != nil {
			return "", nil, err
		}
		// игрок всегда видит себя в списке друзей
		friendIDs = append(friendIDs, f.FriendsOfID)
		return " AND s.user_id IN ?", []interface{}{friendIDs}, nil
	default:
		return "", nil, fmt.Errorf("unknown leaderboard filter kind: %d", f.Kind)
	}
}

const leaderboardSelect = `
SELECT s.id, s.beatmap_md5, s.user_id, s.score, s.max_combo, s.full_combo,
       s.mods, s.count_300, s.count_100, s.count_50, s.count_geki, s.count_katu,
       s.count_miss, s.play_mode, s.variant, s.completed, s.accuracy, s.pp,
       s.timestamp, s.playtime, s.checksum,
       u.username, u.country, COALESCE(c.tag, '') AS clan_tag
FROM scores s
JOIN users u ON u.id = s.user_id
LEFT JOIN clans c ON c.id = u.clan_id`

// lbBaseWhere — общая часть WHERE лидерборда: BEST-скоры карты с гейтом
// приватности (ограниченные игроки видны только самим себе).
const lbBaseWhere = `
WHERE s.beatmap_md5 = ? AND s.play_mode = ? AND s.variant = ? AND s.completed = ?
  AND (u.privileges & 1 > 0 OR u.id = ?)`

// TopN возвращает до n строк лидерборда и общее число скоров под фильтром
func (r *ScoreRepo) TopN(beatmapMD5 string, mode entity.Mode, variant entity.Variant, n int, f repository.LeaderboardFilter) ([]entity.LeaderboardRow, int64, error) {
	extra, extraArgs, err := r.filterClause(f)
	if err != nil {
		return nil, 0, err
	}

	args := []interface{}{beatmapMD5, mode, variant, entity.StateBest, f.RequesterID}
	args = append(args, extraArgs...)

	var total int64
	countSQL := `SELECT COUNT(*) FROM scores s JOIN users u ON u.id = s.user_id` + lbBaseWhere + extra
	if err := r.db.Raw(countSQL, args...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []entity.LeaderboardRow{}
	sql := leaderboardSelect + lbBaseWhere + extra +
		fmt.Sprintf(" ORDER BY %s DESC, s.timestamp ASC LIMIT ?", scoringColumn(variant))
	args = append(args, n)
	if err := r.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// UserBest возвращает строку лучшего скора игрока на карте под фильтром
func (r *ScoreRepo) UserBest(userID uint, beatmapMD5 string, mode entity.Mode, variant entity.Variant, f repository.LeaderboardFilter) (*entity.LeaderboardRow, error) {
	extra, extraArgs, err := r.filterClause(f)
	if err != nil {
		return nil, err
	}

	args := []interface{}{beatmapMD5, mode, variant, entity.StateBest, f.RequesterID}
	args = append(args, extraArgs...)
	args = append(args, userID)

	var rows []entity.LeaderboardRow
	sql := leaderboardSelect + lbBaseWhere + extra + " AND s.user_id = ? LIMIT 1"
	if err := r.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

// RankOf возвращает место скора: число BEST-скоров со строго большим ключом
// ранжирования (при равенстве — отправленных раньше) плюс один
func (r *ScoreRepo) RankOf(s *entity.Score) (int, error) {
	col := scoringColumn(s.Variant)
	key := s.ScoringKey()

	var ahead int64
	sql := fmt.Sprintf(`
SELECT COUNT(*)
FROM scores s
JOIN users u ON u.id = s.user_id
WHERE s.beatmap_md5 = ? AND s.play_mode = ? AND s.variant = ? AND s.completed = ?
  AND u.privileges & 1 > 0
  AND (%s > ? OR (%s = ? AND s.timestamp < ?))`, col, col)

	err := r.db.Raw(sql,
		s.BeatmapMD5, s.PlayMode, s.Variant, entity.StateBest,
		key, key, s.Timestamp,
	).Scan(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// TopBestValues возвращает до limit пар (pp, accuracy) BEST-скоров игрока на
// рейтинговых картах по убыванию pp. Вход взвешенного пересчёта агрегата.
func (r *ScoreRepo) TopBestValues(userID uint, mode entity.Mode, variant entity.Variant, limit int) ([]repository.BestValue, error) {
	vals := []repository.BestValue{}
	err := r.db.Raw(`
SELECT s.pp, s.accuracy
FROM scores s
JOIN beatmaps b ON b.md5 = s.beatmap_md5
WHERE s.user_id = ? AND s.play_mode = ? AND s.variant = ? AND s.completed = ?
  AND b.status IN ?
ORDER BY s.pp DESC
LIMIT ?`,
		userID, mode, variant, entity.StateBest,
		[]entity.RankedStatus{entity.StatusRanked, entity.StatusApproved},
		limit,
	).Scan(&vals).Error
	return vals, err
}

// CountRankedBest возвращает число BEST-скоров игрока на рейтинговых картах,
// ограниченное capLimit
func (r *ScoreRepo) CountRankedBest(userID uint, mode entity.Mode, variant entity.Variant, capLimit int) (int64, error) {
	var count int64
	err := r.db.Raw(`
SELECT COUNT(*) FROM (
    SELECT 1
    FROM scores s
    JOIN beatmaps b ON b.md5 = s.beatmap_md5
    WHERE s.user_id = ? AND s.play_mode = ? AND s.variant = ? AND s.completed = ?
      AND b.status IN ?
    LIMIT ?
) limited`,
		userID, mode, variant, entity.StateBest,
		[]entity.RankedStatus{entity.StatusRanked, entity.StatusApproved},
		capLimit,
	).Scan(&count).Error
	return count, err
}

// UpdatePP перезаписывает performance-значение скора
func (r *ScoreRepo) UpdatePP(scoreID uint64, pp float64) error {
	return r.db.Model(&entity.Score{}).
		Where("id = ?", scoreID).
		Update("pp", pp).Error
}
