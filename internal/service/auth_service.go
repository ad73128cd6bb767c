package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/score-api/internal/cache"
	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// AuthService проверяет учетные данные игрока по протоколу клиента:
// имя + md5 пароля. Успешные проверки bcrypt мемоизируются, чтобы каждый
// запрос не платил за хеширование заново.
type AuthService struct {
	userRepo repository.UserRepository
	caches   *cache.Registry
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, caches *cache.Registry) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		caches:   caches,
	}
}

// SafeName приводит имя игрока к каноническому виду для поиска.
func SafeName(username string) string {
	return strings.ToLower(strings.ReplaceAll(username, " ", "_"))
}

// Authenticate находит игрока по имени и проверяет md5 пароля.
// Неизвестное имя и неверный пароль неразличимы для вызывающего: ErrAuth.
func (s *AuthService) Authenticate(username, passwordMD5 string) (*entity.User, error) {
	user, err := s.userRepo.GetBySafeName(SafeName(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAuth
		}
		return nil, err
	}

	if s.caches.Identity.CheckPassword(user.ID, passwordMD5) {
		return user, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(passwordMD5)); err != nil {
		return nil, apperrors.ErrAuth
	}

	s.caches.Identity.StorePassword(user.ID, passwordMD5)
	s.caches.Identity.PutUsername(user.ID, user.Username)
	return user, nil
}
