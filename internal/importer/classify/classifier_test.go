package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_FirstAddedCategoryWinsTies(t *testing.T) {
	c := NewClassifier()
	c.AddCategory("cat-computers", []string{"компьютер", "ноутбук"})
	c.AddCategory("cat-accessories", []string{"ноутбук", "сумка"})

	// "ноутбук" зарегистрирован первой категорией, повтор игнорируется.
	assert.Equal(t, "cat-computers", c.Classify("Ноутбук игровой 15.6"))
	assert.Equal(t, "cat-accessories", c.Classify("Сумка для документов"))
	assert.Equal(t, 3, c.Rules())
}

func TestClassifier_WholeWordBeforeSubstring(t *testing.T) {
	c := NewClassifier()
	c.AddCategory("cat-pens", []string{"ручка"})
	c.AddCategory("cat-paper", []string{"бумага"})

	// "ручка" встречается раньше, но только подстрокой ("авторучка");
	// совпадение по целому слову сильнее порядка добавления.
	assert.Equal(t, "cat-paper", c.Classify("Авторучка и бумага писчая"))
}

func TestClassifier_SubstringFallback(t *testing.T) {
	c := NewClassifier()
	c.AddCategory("cat-pens", []string{"ручка"})

	assert.Equal(t, "cat-pens", c.Classify("Авторучка шариковая"))
}

func TestClassifier_NoMatch(t *testing.T) {
	c := NewClassifier()
	c.AddCategory("cat-paper", []string{"бумага"})

	assert.Equal(t, "", c.Classify("Степлер канцелярский"))
	assert.Equal(t, "", c.Classify(""))
}

func TestClassifier_SubstringSeesNormalizedName(t *testing.T) {
	c := NewClassifier()
	c.AddCategory("cat-paper", []string{"бумага а4"})

	// Целым словом ключ не совпадает ("бумага" склеена с приставкой),
	// но подстрочный проход работает по той же нормальной форме названия,
	// поэтому пунктуация между словами совпадению не мешает.
	assert.Equal(t, "cat-paper", c.Classify("Фотобумага,А4 глянцевая"))
}

func TestClassifier_PunctuationAndCase(t *testing.T) {
	c := NewClassifier()
	c.AddCategory("cat-paper", []string{"Бумага А4"})

	assert.Equal(t, "cat-paper", c.Classify("БУМАГА, а4, офисная"))
}
