package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-05-12", time.Date(2023, 5, 12, 0, 0, 0, 0, time.UTC)},
		{"12.05.2023", time.Date(2023, 5, 12, 0, 0, 0, 0, time.UTC)},
		{"2023-05-12T10:30:00Z", time.Date(2023, 5, 12, 10, 30, 0, 0, time.UTC)},
		{"2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"  2023-05-12  ", time.Date(2023, 5, 12, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := Date(tt.in)
		require.NotNil(t, got, "input %q", tt.in)
		assert.True(t, tt.want.Equal(*got), "input %q: got %v", tt.in, got)
	}

	assert.Nil(t, Date(""))
	assert.Nil(t, Date("не дата"))
	assert.Nil(t, Date("32.13.2023"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "абв", Truncate("абвгд", 3), "must cut by runes, not bytes")
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))

	long := strings.Repeat("я", MaxNameLen+50)
	assert.Equal(t, MaxNameLen, len([]rune(Truncate(long, MaxNameLen))))
}

func TestSpecifications(t *testing.T) {
	t.Run("json object", func(t *testing.T) {
		specs := Specifications(`{"вес": "5 кг", "объём": 10, "в наличии": true}`)
		assert.Equal(t, map[string]string{
			"вес":       "5 кг",
			"объём":     "10",
			"в наличии": "true",
		}, specs)
	})

	t.Run("key-value pairs", func(t *testing.T) {
		specs := Specifications("цвет: белый; плотность:80 г/м2")
		assert.Equal(t, map[string]string{
			"цвет":      "белый",
			"плотность": "80 г/м2",
		}, specs)
	})

	t.Run("free text", func(t *testing.T) {
		specs := Specifications("офисная бумага формата А4")
		assert.Equal(t, map[string]string{RawSpecificationsKey: "офисная бумага формата А4"}, specs)
	})

	t.Run("broken json degrades to raw", func(t *testing.T) {
		specs := Specifications(`{"вес": "5 кг"`)
		assert.Equal(t, map[string]string{RawSpecificationsKey: `{"вес": "5 кг"`}, specs)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Specifications(""))
		assert.Nil(t, Specifications("   "))
	})
}
