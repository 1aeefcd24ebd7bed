package normalize

// Предельные длины строковых полей по схеме хранилища.
// Слишком длинные значения усекаются, а не отбрасываются.
const (
	MaxNameLen         = 1000
	MaxDescriptionLen  = 5000
	MaxManufacturerLen = 500
	MaxUnitLen         = 100
	MaxOrganizationLen = 500
)

// Truncate усекает строку до max рун, не разрывая многобайтовые символы.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
