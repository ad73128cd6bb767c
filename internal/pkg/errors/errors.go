package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrBadCipher используется, когда зашифрованный payload сабмита не расшифровывается
	// (битый padding, неверный IV, неверная длина блока).
	ErrBadCipher = errors.New("score payload cipher failure")

	// ErrMalformed используется, когда расшифрованный payload не соответствует
	// ожидаемой схеме (неверное количество полей и т.п.).
	ErrMalformed = errors.New("malformed score payload")

	// ErrAuth используется, когда игрок не найден или пароль не подошёл.
	ErrAuth = errors.New("authentication failed")

	// ErrIntegrity используется для нарушений целостности сабмита
	// (нелегальная комбинация модов, признаки подмены клиента, превышение pp-капа).
	// Сабмит отклоняется, игрок асинхронно помечается на ограничение.
	ErrIntegrity = errors.New("submission integrity violation")

	// ErrDuplicate используется при повторной отправке идентичного скора.
	// С точки зрения игрока это не ошибка: состояние не меняется.
	ErrDuplicate = errors.New("duplicate score submission")

	// ErrUnsubmitted используется, когда карта неизвестна серверу и скор
	// не может быть засабмичен.
	ErrUnsubmitted = errors.New("beatmap is not submitted")

	// ErrValidation используется для ошибок валидации конфигурации и входных данных.
	ErrValidation = errors.New("validation failed")
)
