package repository

import (
	"github.com/yourusername/score-api/internal/domain/entity"
)

// UserRepository определяет операции с игроками.
type UserRepository interface {
	// GetByID возвращает игрока по ID, либо ErrNotFound.
	GetByID(id uint) (*entity.User, error)

	// GetBySafeName возвращает игрока по нормализованному имени
	// (lowercase, пробелы заменены на подчёркивания).
	GetBySafeName(safeName string) (*entity.User, error)

	// GetPrivileges возвращает привилегии игрока.
	GetPrivileges(id uint) (entity.Privileges, error)

	// UpdateLatestActivity отмечает время последней активности игрока.
	UpdateLatestActivity(id uint, ts int64) error

	// UpdatePrivileges перезаписывает привилегии игрока (ограничение аккаунта).
	UpdatePrivileges(id uint, privs entity.Privileges) error

	// GetClanTag возвращает тег клана, либо пустую строку, если игрок вне клана.
	GetClanTag(clanID uint) (string, error)

	// GetFriendIDs возвращает ID друзей игрока (односторонние связи).
	GetFriendIDs(userID uint) ([]uint, error)

	// AllIDs возвращает ID всех игроков по возрастанию (для полного пересчёта).
	AllIDs() ([]uint, error)
}
