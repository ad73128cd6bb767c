package cache

import (
	"strconv"
	"time"
)

// IdentityCache хранит горячие справочные данные игроков: имена и мемо
// успешных проверок пароля. Проверка bcrypt дорогая, и без мемоизации
// каждая отправка скора платила бы ее заново.
type IdentityCache struct {
	usernames *LRU[string]
	passwords *LRU[string] // userID -> последний прошедший проверку md5
}

// NewIdentityCache создает новый кеш справочных данных
func NewIdentityCache(capacity int, maxAge time.Duration) *IdentityCache {
	return &IdentityCache{
		usernames: NewLRU[string](capacity, maxAge),
		// мемо паролей живет без ограничения возраста: его сбрасывает
		// событие смены пароля, а не таймер
		passwords: NewLRU[string](capacity, 0),
	}
}

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// Username возвращает закешированное имя игрока.
func (c *IdentityCache) Username(userID uint) (string, bool) {
	return c.usernames.Get(userKey(userID))
}

// PutUsername кладет имя игрока.
func (c *IdentityCache) PutUsername(userID uint, name string) {
	c.usernames.Put(userKey(userID), name)
}

// CheckPassword сообщает, проходил ли данный md5 проверку bcrypt для игрока.
func (c *IdentityCache) CheckPassword(userID uint, passwordMD5 string) bool {
	memo, ok := c.passwords.Get(userKey(userID))
	return ok && memo == passwordMD5
}

// StorePassword запоминает прошедший проверку md5.
func (c *IdentityCache) StorePassword(userID uint, passwordMD5 string) {
	c.passwords.Put(userKey(userID), passwordMD5)
}

// DropPassword сбрасывает мемо пароля (смена пароля).
func (c *IdentityCache) DropPassword(userID uint) {
	c.passwords.Delete(userKey(userID))
}

// DropUser сбрасывает все записи игрока: имя и мемо пароля.
func (c *IdentityCache) DropUser(userID uint) {
	key := userKey(userID)
	c.usernames.Delete(key)
	c.passwords.Delete(key)
}
