package entity

// Stats — агрегатная статистика игрока в рамках одного (режим, вариант).
// Rank и CountryRank не хранятся в БД: они всегда читаются из глобального
// рейтингового индекса.
type Stats struct {
	UserID  uint    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Mode    Mode    `gorm:"primaryKey;autoIncrement:false" json:"mode"`
	Variant Variant `gorm:"primaryKey;autoIncrement:false" json:"variant"`

	RankedScore int64   `gorm:"not null;default:0" json:"ranked_score"`
	TotalScore  int64   `gorm:"not null;default:0" json:"total_score"`
	PP          float64 `gorm:"not null;default:0" json:"pp"`
	Accuracy    float64 `gorm:"not null;default:0" json:"accuracy"`
	Playcount   int     `gorm:"not null;default:0" json:"playcount"`
	Playtime    int64   `gorm:"not null;default:0" json:"playtime"`
	MaxCombo    int     `gorm:"not null;default:0" json:"max_combo"`
	TotalHits   int64   `gorm:"not null;default:0" json:"total_hits"`

	Rank        int `gorm:"-" json:"rank"`
	CountryRank int `gorm:"-" json:"country_rank"`
}

// TableName определяет имя таблицы для GORM
func (Stats) TableName() string {
	return "user_stats"
}
