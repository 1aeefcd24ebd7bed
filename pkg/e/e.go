package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Фатальные ошибки импорта
	ErrMissingInputFiles = fmt.Errorf("required input files are missing")
	ErrTableNotFound     = fmt.Errorf("expected table not found in schema")

	// Ошибки рекомендательного сервиса
	ErrRecsUnavailable = fmt.Errorf("recommendation service unavailable")

	// 400 Bad Request
	ErrStatusBadRequest    = fmt.Errorf("bad request")
	ErrMissingFields       = fmt.Errorf("missing required fields")
	ErrInvalidPrice        = fmt.Errorf("invalid price")
	ErrInvalidLimit        = fmt.Errorf("invalid limit")
	ErrNoProducts          = fmt.Errorf("no product ids provided")
	ErrProductNotFound     = fmt.Errorf("product not found")
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
