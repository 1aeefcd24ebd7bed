package classify

import (
	"strings"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/importer/identity"
	"github.com/zakupka-tech/go-backend/internal/importer/source"
)

// PathSeparator разделяет сегменты пути категории в иерархии.
const PathSeparator = " -> "

// Hierarchy — результат разбора иерархии категорий: готовые к записи
// категории, классификатор и отображение путь → id для проверки ссылок.
type Hierarchy struct {
	Categories []*domain.Category
	Classifier *Classifier
	PathIDs    map[string]string
}

// BuildHierarchy превращает уплощённую иерархию в категории со стабильными id.
// Идентификатор категории детерминированно выводится из её полного пути,
// родитель — из пути без последнего сегмента. Ключевые слова регистрируются
// в классификаторе в порядке следования категорий в файле.
func BuildHierarchy(entries []source.CategoryEntry, resolver *identity.Resolver) *Hierarchy {
	h := &Hierarchy{
		Classifier: NewClassifier(),
		PathIDs:    make(map[string]string, len(entries)),
	}

	for _, entry := range entries {
		path := strings.TrimSpace(entry.CategoryPath)
		if path == "" {
			continue
		}

		id := resolver.Resolve("", path)
		if _, seen := h.PathIDs[path]; !seen {
			h.PathIDs[path] = id
		}

		category := domain.NewCategory(id, h.parentID(path), lastSegment(path), entry.Keywords, entry.Level)
		h.Categories = append(h.Categories, category)
		h.Classifier.AddCategory(id, entry.Keywords)
	}

	return h
}

// parentID возвращает id родительской категории по пути без последнего
// сегмента, nil для корневых категорий.
func (h *Hierarchy) parentID(path string) *string {
	idx := strings.LastIndex(path, PathSeparator)
	if idx < 0 {
		return nil
	}

	parentPath := path[:idx]
	if id, ok := h.PathIDs[parentPath]; ok {
		return &id
	}

	// Родитель ещё не встречался: id всё равно детерминированный.
	id := identity.PathID(parentPath)
	return &id
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, PathSeparator)
	if idx < 0 {
		return path
	}

	return strings.TrimSpace(path[idx+len(PathSeparator):])
}
