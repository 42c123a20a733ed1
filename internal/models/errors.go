package models

import "errors"

// Классы ошибок приложения. Хэндлеры переводят их в фиксированные
// пользовательские сообщения, наружу "сырые" ошибки не уходят.
var (
	// ErrValidation - некорректный ввод, ловится до любого похода в сеть/БД.
	// Ошибки аутентификации отдельного класса не имеют: хэндлеры отвечают
	// на них фиксированными сообщениями сразу.
	ErrValidation = errors.New("validation error")

	// ErrStore - ошибка чтения/записи прогресса во внешнем хранилище.
	ErrStore = errors.New("store error")

	// ErrCapabilityUnavailable - речевая функция недоступна на этой платформе
	// (не сконфигурирован движок синтеза или распознавания).
	ErrCapabilityUnavailable = errors.New("speech capability unavailable")
)
