package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathID(t *testing.T) {
	// Контрольное значение посчитано отдельно: md5("Офис -> Бумага -> А4").
	assert.Equal(t, "939fcc41-a87e-b669-134a-136fa7f3858e", PathID("Офис -> Бумага -> А4"))

	// Детерминизм и формат.
	id := PathID("Канцтовары")
	assert.Equal(t, id, PathID("Канцтовары"))
	parts := strings.Split(id, "-")
	require.Len(t, parts, 5)
	assert.Len(t, parts[0], 8)
	assert.Len(t, parts[1], 4)
	assert.Len(t, parts[2], 4)
	assert.Len(t, parts[3], 4)
	assert.Len(t, parts[4], 12)

	assert.NotEqual(t, PathID("Офис"), PathID("Офис "))
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("raw id wins over natural key", func(t *testing.T) {
		r := NewResolver()
		assert.Equal(t, "SKU-42", r.Resolve("  SKU-42  ", "product:бумага"))
	})

	t.Run("natural key gives deterministic id", func(t *testing.T) {
		first := NewResolver().Resolve("", "product:бумага а4")
		second := NewResolver().Resolve("", "product:бумага а4")
		assert.Equal(t, first, second)
		assert.Equal(t, PathID("product:бумага а4"), first)
	})

	t.Run("no inputs falls back to random uuid", func(t *testing.T) {
		r := NewResolver()
		id := r.Resolve("", "")
		assert.NotEmpty(t, id)
		assert.NotEqual(t, id, r.Resolve("", ""))
	})

	t.Run("collision appends numeric suffix", func(t *testing.T) {
		r := NewResolver()
		assert.Equal(t, "dup", r.Resolve("dup", ""))
		assert.Equal(t, "dup-1", r.Resolve("dup", ""))
		assert.Equal(t, "dup-2", r.Resolve("dup", ""))
	})

	t.Run("long raw id is capped by runes", func(t *testing.T) {
		r := NewResolver()
		long := strings.Repeat("ы", MaxIDLen+20)
		id := r.Resolve(long, "")
		assert.Equal(t, MaxIDLen, len([]rune(id)))

		// Коллизия усечённых id: суффикс не должен выводить за предел.
		collided := r.Resolve(long, "")
		assert.NotEqual(t, id, collided)
		assert.LessOrEqual(t, len([]rune(collided)), MaxIDLen)
	})

	t.Run("seeded ids are taken", func(t *testing.T) {
		r := NewResolver()
		r.Seed([]string{"existing"})
		assert.Equal(t, "existing-1", r.Resolve("existing", ""))
	})
}

func TestResolver_UniqueAcrossRun(t *testing.T) {
	r := NewResolver()
	seen := make(map[string]struct{})
	for i := 0; i < 2500; i++ {
		id := r.Resolve("same", "")
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %q on iteration %d", id, i)
		seen[id] = struct{}{}
	}
}
