package entity

import (
	"fmt"
	"time"
)

// Score представляет один результат плея на карте.
// Запись создаётся пайплайном сабмита, мутируется только внутри транзакции
// сабмита и никогда не удаляется (кроме административных действий).
type Score struct {
	ID         uint64 `gorm:"primaryKey" json:"id"`
	BeatmapMD5 string `gorm:"size:32;not null;index:idx_score_lb" json:"beatmap_md5"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`

	Score    int64 `gorm:"not null;default:0" json:"score"`
	MaxCombo int   `gorm:"not null;default:0" json:"max_combo"`
	FullCombo bool `gorm:"not null;default:false" json:"full_combo"`
	Mods     Mods  `gorm:"not null;default:0" json:"mods"`

	Count300  int `gorm:"column:count_300;not null;default:0" json:"count_300"`
	Count100  int `gorm:"column:count_100;not null;default:0" json:"count_100"`
	Count50   int `gorm:"column:count_50;not null;default:0" json:"count_50"`
	CountGeki int `gorm:"not null;default:0" json:"count_geki"`
	CountKatu int `gorm:"not null;default:0" json:"count_katu"`
	CountMiss int `gorm:"not null;default:0" json:"count_miss"`

	PlayMode Mode            `gorm:"not null;default:0;index:idx_score_lb" json:"play_mode"`
	Variant  Variant         `gorm:"not null;default:0;index:idx_score_lb" json:"variant"`
	Completed CompletionState `gorm:"not null;default:0;index:idx_score_lb" json:"completed"`

	Accuracy float64 `gorm:"not null;default:0" json:"accuracy"`
	PP       float64 `gorm:"not null;default:0" json:"pp"`

	// Timestamp — момент сабмита (unix, секунды). Участвует в тай-брейке.
	Timestamp int64 `gorm:"not null" json:"timestamp"`

	// Playtime — проведённое в плее время (мс): score_time при пасе, fail_time иначе.
	Playtime int `gorm:"not null;default:0" json:"playtime"`

	// Checksum — онлайн-чексумма клиента. Опциональна, но уникальна при наличии.
	Checksum string `gorm:"size:64;index" json:"checksum"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Score) TableName() string {
	return "scores"
}

// IsSubmitted сообщает, была ли запись уже сохранена в БД.
func (s *Score) IsSubmitted() bool {
	return s.ID != 0
}

// ScoringKey возвращает значение, по которому скор ранжируется в лидерборде
// своего варианта.
func (s *Score) ScoringKey() float64 {
	if s.Variant.UsesPP() {
		return s.PP
	}
	return float64(s.Score)
}

// LeaderboardRow — строка лидерборда: скор вместе с данными игрока,
// необходимыми для отображения. Снимок на момент запроса.
type LeaderboardRow struct {
	Score
	Username string `json:"username"`
	Country  string `json:"country"`
	ClanTag  string `json:"clan_tag"`
}

// DisplayName возвращает имя игрока с префиксом тега клана, если он есть.
func (r *LeaderboardRow) DisplayName() string {
	if r.ClanTag != "" {
		return "[" + r.ClanTag + "] " + r.Username
	}
	return r.Username
}

// ClientString форматирует строку скора в пайп-формат, ожидаемый клиентом.
// Порядок полей — внешний контракт, менять нельзя.
func (r *LeaderboardRow) ClientString(rank int, hasReplay bool) string {
	scoring := r.Score.Score
	if r.Variant.UsesPP() {
		scoring = int64(r.PP)
	}

	replayFlag := 0
	if hasReplay {
		replayFlag = 1
	}

	fc := 0
	if r.FullCombo {
		fc = 1
	}

	return fmt.Sprintf(
		"%d|%s|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d",
		r.ID, r.DisplayName(), scoring, r.MaxCombo,
		r.Count50, r.Count100, r.Count300, r.CountMiss,
		r.CountKatu, r.CountGeki, fc, r.Mods,
		r.UserID, rank, r.Timestamp, replayFlag,
	)
}
