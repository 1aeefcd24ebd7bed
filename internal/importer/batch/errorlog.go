package batch

import (
	"encoding/json"
	"time"
)

// ErrorRecord — структурированная запись журнала ошибок импорта.
type ErrorRecord struct {
	Op      string    `json:"op"`
	Message string    `json:"message"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// ErrorLog накапливает ошибки запуска импорта для итогового артефакта.
// Конвейер импорта однопоточный, синхронизация не требуется.
type ErrorLog struct {
	records []ErrorRecord
}

func NewErrorLog() *ErrorLog {
	return &ErrorLog{}
}

// Append добавляет запись об ошибке.
func (l *ErrorLog) Append(op, message string, payload any) {
	l.records = append(l.records, ErrorRecord{
		Op:      op,
		Message: message,
		Payload: payload,
		At:      time.Now().UTC(),
	})
}

// Len возвращает число накопленных ошибок.
func (l *ErrorLog) Len() int {
	return len(l.records)
}

// Records возвращает накопленные записи.
func (l *ErrorLog) Records() []ErrorRecord {
	return l.records
}

// MarshalJSON сериализует журнал как массив записей.
func (l *ErrorLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.records)
}
