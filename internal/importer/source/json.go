package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

// ReadCategories читает уплощённую иерархию категорий.
func ReadCategories(path string) ([]CategoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var entries []CategoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, e.Wrap(path, err)
	}

	return entries, nil
}

// ReadTemplates читает шаблоны типовых закупок: отображение ключ шаблона → описание.
func ReadTemplates(path string) (map[string]TemplateEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var templates map[string]TemplateEntry
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, e.Wrap(path, err)
	}

	return templates, nil
}

// CheckFiles проверяет наличие всех входных файлов до начала запуска.
// Возвращает одну ошибку со списком всех отсутствующих путей.
func CheckFiles(paths ...string) error {
	var missing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return e.Wrap(
			fmt.Sprintf("missing: %s", strings.Join(missing, ", ")),
			e.ErrMissingInputFiles,
		)
	}

	return nil
}
