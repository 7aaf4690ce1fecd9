package services

import (
	"errors"
)

// Ошибки доменного уровня. Сервисы оборачивают их через fmt.Errorf("%w: ..."),
// контроллеры сопоставляют с HTTP-кодами через errors.Is.
var (
	// ErrNotFound возвращается, когда запрошенная запись не существует
	ErrNotFound = errors.New("запись не найдена")

	// ErrConflict возвращается при нарушении уникальности,
	// например при повторной заявке в статусе pending
	ErrConflict = errors.New("конфликт состояния")

	// ErrInvalidTransition возвращается при недопустимой смене статуса заявки
	ErrInvalidTransition = errors.New("недопустимый переход статуса")

	// ErrInvalidState возвращается, когда операция неприменима
	// к текущему состоянию записи
	ErrInvalidState = errors.New("операция недоступна в текущем состоянии")

	// ErrInvalidAmount возвращается при нарушении границ суммы
	ErrInvalidAmount = errors.New("недопустимая сумма")

	// ErrForbidden возвращается при нарушении прав доступа:
	// чужая компания или инвестиция в собственную заявку
	ErrForbidden = errors.New("доступ запрещен")

	// ErrInsufficientFunds возвращается, когда списание превышает баланс кошелька
	ErrInsufficientFunds = errors.New("недостаточно средств")

	// ErrValidation возвращается при нарушении правил валидации DTO
	ErrValidation = errors.New("ошибка валидации")
)
