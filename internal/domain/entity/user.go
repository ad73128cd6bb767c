package entity

import "time"

// User представляет игрока.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:32;not null;uniqueIndex" json:"username"`
	UsernameSafe string     `gorm:"size:32;not null;uniqueIndex" json:"username_safe"`
	PasswordHash string     `gorm:"size:60;not null" json:"-"`
	Country      string     `gorm:"size:2;not null;default:'XX'" json:"country"`
	Privileges   Privileges `gorm:"not null;default:3" json:"privileges"`
	ClanID       uint       `gorm:"not null;default:0;index" json:"clan_id"`
	CreatedAt    time.Time  `json:"created_at"`

	LatestActivity int64 `gorm:"not null;default:0" json:"latest_activity"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Clan представляет клан; на лидербордах отображается только тег.
type Clan struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Tag string `gorm:"size:8;not null" json:"tag"`
}

// TableName определяет имя таблицы для GORM
func (Clan) TableName() string {
	return "clans"
}

// Relationship — дружеская связь user -> friend (односторонняя, как у клиента).
type Relationship struct {
	UserID   uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FriendID uint `gorm:"primaryKey;autoIncrement:false" json:"friend_id"`
}

// TableName определяет имя таблицы для GORM
func (Relationship) TableName() string {
	return "relationships"
}
