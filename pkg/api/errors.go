package api

import "errors"

var (
	// ErrCatalogUnavailable – каталог недоступен (сеть, авторизация, 5xx).
	// Пустой результат поиска ошибкой не считается.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrRecognition – сбой сервиса распознавания. "Не распознано" ошибкой не считается.
	ErrRecognition = errors.New("recognition backend failed")
)
