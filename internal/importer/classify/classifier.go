// Package classify реализует эвристическую классификацию товаров по категориям
// через совпадение ключевых слов.
package classify

import (
	"strings"
	"unicode"
)

// rule связывает ключевое слово с категорией. Правила хранятся упорядоченным
// срезом: при нескольких совпадениях побеждает категория, добавленная раньше.
// Это документированная политика разрешения ничьих, а не побочный эффект
// порядка обхода map.
type rule struct {
	keyword    string
	categoryID string
}

// Classifier подбирает категорию по названию товара.
// Классификация best-effort: несовпавший товар остаётся без категории.
type Classifier struct {
	rules []rule
	known map[string]struct{} // дедупликация ключевых слов, первое вхождение побеждает
}

func NewClassifier() *Classifier {
	return &Classifier{known: make(map[string]struct{})}
}

// AddCategory регистрирует ключевые слова категории. Порядок вызовов задаёт
// приоритет: слова категорий, добавленных раньше, проверяются первыми.
func (c *Classifier) AddCategory(categoryID string, keywords []string) {
	for _, keyword := range keywords {
		normalized := normalizeWords(keyword)
		if normalized == "" {
			continue
		}

		if _, seen := c.known[normalized]; seen {
			continue
		}
		c.known[normalized] = struct{}{}

		c.rules = append(c.rules, rule{keyword: normalized, categoryID: categoryID})
	}
}

// Classify возвращает id категории для названия товара или пустую строку.
// Сначала ищется совпадение по целым словам, затем — по подстроке;
// в обоих проходах побеждает первое совпадение в порядке добавления правил.
// Оба прохода работают по одной нормальной форме названия: ключевые слова
// нормализованы при регистрации, и подстрочный проход по сырой строке
// терял бы многословные ключи из-за пунктуации.
func (c *Classifier) Classify(name string) string {
	normalized := normalizeWords(name)

	words := " " + normalized + " "
	for _, r := range c.rules {
		if strings.Contains(words, " "+r.keyword+" ") {
			return r.categoryID
		}
	}

	for _, r := range c.rules {
		if strings.Contains(normalized, r.keyword) {
			return r.categoryID
		}
	}

	return ""
}

// Rules возвращает число зарегистрированных правил.
func (c *Classifier) Rules() int {
	return len(c.rules)
}

// normalizeWords приводит текст к нижнему регистру и схлопывает все
// не-буквенно-цифровые последовательности в одиночные пробелы, чтобы
// совпадение по целым словам не зависело от пунктуации.
func normalizeWords(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	return strings.Join(fields, " ")
}
