package entity

// ConditionField — закрытый набор полей, по которым проверяются условия ачивок.
type ConditionField string

const (
	FieldPP        ConditionField = "pp"
	FieldAccuracy  ConditionField = "accuracy"
	FieldMaxCombo  ConditionField = "max_combo"
	FieldMods      ConditionField = "mods"
	FieldMode      ConditionField = "mode"
	FieldPlaycount ConditionField = "playcount"
	FieldFullCombo ConditionField = "full_combo"
	FieldStatsPP   ConditionField = "stats_pp"
)

// ConditionOp — оператор сравнения условия.
type ConditionOp string

const (
	OpGte    ConditionOp = ">="
	OpLte    ConditionOp = "<="
	OpEq     ConditionOp = "=="
	OpHasBit ConditionOp = "&"
)

// AchievementCondition — одно табличное условие ачивки. Условия с одинаковым
// Grp объединяются по И, разные группы — по ИЛИ. Такая модель заменяет
// исполнение произвольных выражений из БД.
type AchievementCondition struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AchievementID uint           `gorm:"not null;index" json:"achievement_id"`
	Field         ConditionField `gorm:"size:16;not null" json:"field"`
	Op            ConditionOp    `gorm:"size:2;not null" json:"op"`
	Value         float64        `gorm:"not null" json:"value"`
	Grp           int            `gorm:"not null;default:0" json:"grp"`
}

// TableName определяет имя таблицы для GORM
func (AchievementCondition) TableName() string {
	return "achievement_conditions"
}

// Achievement представляет одну ачивку.
type Achievement struct {
	ID         uint                   `gorm:"primaryKey" json:"id"`
	File       string                 `gorm:"size:64;not null" json:"file"`
	Name       string                 `gorm:"size:64;not null" json:"name"`
	Desc       string                 `gorm:"size:256;not null" json:"desc"`
	Conditions []AchievementCondition `gorm:"foreignKey:AchievementID" json:"conditions"`
}

// TableName определяет имя таблицы для GORM
func (Achievement) TableName() string {
	return "achievements"
}

// FullName возвращает строку ачивки в формате, ожидаемом клиентом.
func (a *Achievement) FullName() string {
	return a.File + "+" + a.Name + "+" + a.Desc
}

// UserAchievement — факт открытия ачивки игроком.
type UserAchievement struct {
	UserID        uint  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	AchievementID uint  `gorm:"primaryKey;autoIncrement:false" json:"achievement_id"`
	UnlockedAt    int64 `gorm:"not null;default:0" json:"unlocked_at"`
}

// TableName определяет имя таблицы для GORM
func (UserAchievement) TableName() string {
	return "user_achievements"
}
