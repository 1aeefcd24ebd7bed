package normalize

import (
	"strings"
	"time"
)

// dateLayouts — поддерживаемые форматы дат в исходных выгрузках,
// в порядке убывания специфичности.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006",
	"02/01/2006",
	"2006",
}

// Date разбирает дату свободного формата. Пустая или нераспознанная строка
// даёт nil; функция никогда не возвращает ошибку.
func Date(s string) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}

	return nil
}
