// Package identity отвечает за стабильные идентификаторы импортируемых записей.
//
// Идентификатор либо берётся из исходных данных как есть, либо детерминированно
// выводится из естественного ключа (MD5 от канонической строки пути в формате
// UUID), благодаря чему повторный импорт воспроизводит те же id без таблицы
// соответствий.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxIDLen — предельная длина идентификатора по схеме хранилища.
	MaxIDLen = 100
	// maxSuffixAttempts ограничивает перебор числовых суффиксов при коллизии.
	maxSuffixAttempts = 1000
)

// Resolver выдаёт идентификаторы и отслеживает занятые в рамках одного запуска.
// Хранилище по каждой записи не опрашивается: множество можно один раз
// заполнить уже существующими id через Seed.
type Resolver struct {
	seen map[string]struct{}
}

func NewResolver() *Resolver {
	return &Resolver{seen: make(map[string]struct{})}
}

// Seed регистрирует уже существующие идентификаторы, чтобы новые записи
// не конфликтовали с ними.
func (r *Resolver) Seed(ids []string) {
	for _, id := range ids {
		r.seen[id] = struct{}{}
	}
}

// Resolve возвращает идентификатор записи и регистрирует его как занятый.
// Приоритет: исходный id (после обрезки и усечения до MaxIDLen), затем
// детерминированный id из естественного ключа, затем случайный UUID.
// Функция никогда не завершается ошибкой.
func (r *Resolver) Resolve(rawID, naturalKey string) string {
	id := strings.TrimSpace(rawID)
	switch {
	case id != "":
		id = capLen(id)
	case strings.TrimSpace(naturalKey) != "":
		id = PathID(naturalKey)
	default:
		id = uuid.NewString()
	}

	return r.claim(id)
}

// claim регистрирует id; при коллизии перебирает числовые суффиксы,
// а исчерпав лимит попыток, достраивает случайный суффикс.
func (r *Resolver) claim(id string) string {
	if r.free(id) {
		return r.take(id)
	}

	for n := 1; n <= maxSuffixAttempts; n++ {
		candidate := withSuffix(id, strconv.Itoa(n))
		if r.free(candidate) {
			return r.take(candidate)
		}
	}

	for {
		candidate := withSuffix(id, uuid.NewString()[:8])
		if r.free(candidate) {
			return r.take(candidate)
		}
	}
}

func (r *Resolver) free(id string) bool {
	_, taken := r.seen[id]
	return !taken
}

func (r *Resolver) take(id string) string {
	r.seen[id] = struct{}{}
	return id
}

// PathID детерминированно выводит идентификатор из канонической строки пути:
// MD5-хеш, отформатированный группами 8-4-4-4-12 как UUID.
func PathID(path string) string {
	sum := md5.Sum([]byte(path))
	h := hex.EncodeToString(sum[:])

	return strings.Join([]string{
		h[0:8], h[8:12], h[12:16], h[16:20], h[20:32],
	}, "-")
}

// withSuffix добавляет суффикс через дефис, усекая базу так,
// чтобы итог не превышал MaxIDLen.
func withSuffix(id, suffix string) string {
	base := []rune(id)
	if overflow := len(base) + 1 + len(suffix) - MaxIDLen; overflow > 0 {
		base = base[:len(base)-overflow]
	}

	return string(base) + "-" + suffix
}

func capLen(id string) string {
	runes := []rune(id)
	if len(runes) <= MaxIDLen {
		return id
	}

	return string(runes[:MaxIDLen])
}
