package entity

import "fmt"

// Beatmap представляет метаданные карты. Источник истины — внешний сервис
// метаданных; здесь хранится локальная копия, по которой ведутся лидерборды.
type Beatmap struct {
	MD5        string       `gorm:"primaryKey;size:32" json:"md5"`
	BeatmapID  int          `gorm:"not null;index" json:"beatmap_id"`
	SetID      int          `gorm:"not null;index" json:"set_id"`
	SongName   string       `gorm:"size:256;not null" json:"song_name"`
	Status     RankedStatus `gorm:"not null;default:0" json:"status"`
	Rating     float64      `gorm:"not null;default:10" json:"rating"`
	Playcount  int64        `gorm:"not null;default:0" json:"playcount"`
	Passcount  int64        `gorm:"not null;default:0" json:"passcount"`
	LastUpdate int64        `gorm:"not null;default:0" json:"last_update"`
	MaxCombo   int          `gorm:"not null;default:0" json:"max_combo"`
}

// TableName определяет имя таблицы для GORM
func (Beatmap) TableName() string {
	return "beatmaps"
}

// UserBeatmap — счётчик плеев игрока на карте (статистика most played).
type UserBeatmap struct {
	UserID     uint   `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	BeatmapMD5 string `gorm:"primaryKey;size:32" json:"beatmap_md5"`
	Mode       Mode   `gorm:"primaryKey;autoIncrement:false" json:"mode"`
	Playcount  int    `gorm:"not null;default:0" json:"playcount"`
}

// TableName определяет имя таблицы для GORM
func (UserBeatmap) TableName() string {
	return "user_beatmaps"
}

// HasLeaderboard сообщает, ведёт ли карта лидерборд.
func (b *Beatmap) HasLeaderboard() bool {
	return b.Status.HasLeaderboard()
}

// GivesPP сообщает, учитываются ли скоры на карте во взвешенном агрегате.
func (b *Beatmap) GivesPP() bool {
	return b.Status.GivesPP()
}

// HeaderString формирует заголовочную строку лидерборда для клиента.
// Формат — внешний контракт.
func (b *Beatmap) HeaderString(scoreCount int64) string {
	if !b.HasLeaderboard() {
		return fmt.Sprintf("%d|false", b.Status)
	}
	return fmt.Sprintf(
		"%d|false|%d|%d|%d|0||\n0\n%s\n%.1f",
		b.Status, b.BeatmapID, b.SetID, scoreCount, b.SongName, b.Rating,
	)
}
