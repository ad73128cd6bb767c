package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/score-api/internal/domain/entity"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetBySafeName возвращает пользователя по нормализованному имени
func (r *UserRepo) GetBySafeName(safeName string) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, "username_safe = ?", safeName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetPrivileges возвращает привилегии пользователя
func (r *UserRepo) GetPrivileges(id uint) (entity.Privileges, error) {
	var privs entity.Privileges
	err := r.db.Model(&entity.User{}).
		Where("id = ?", id).
		Pluck("privileges", &privs).Error
	if err != nil {
		return 0, err
	}
	return privs, nil
}

// UpdateLatestActivity отмечает время последней активности пользователя
func (r *UserRepo) UpdateLatestActivity(id uint, ts int64) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", id).
		Update("latest_activity", ts).Error
}

// UpdatePrivileges перезаписывает привилегии пользователя
func (r *UserRepo) UpdatePrivileges(id uint, privs entity.Privileges) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", id).
		Update("privileges", privs).Error
}

// GetClanTag возвращает тег клана (пустая строка для id = 0 или отсутствующего клана)
func (r *UserRepo) GetClanTag(clanID uint) (string, error) {
	if clanID == 0 {
		return "", nil
	}
	var clan entity.Clan
	err := r.db.First(&clan, "id = ?", clanID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return clan.Tag, nil
}

// GetFriendIDs возвращает ID друзей пользователя
func (r *UserRepo) GetFriendIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.Relationship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error
	return ids, err
}

// AllIDs возвращает ID всех пользователей по возрастанию
func (r *UserRepo) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.User{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
