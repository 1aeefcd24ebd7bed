package domain

import "time"

// Category описывает категорию каталога.
// ID детерминированно выводится из полного пути категории в иерархии,
// поэтому повторный импорт воспроизводит те же идентификаторы.
type Category struct {
	ID          string
	ParentID    *string
	Name        string
	Description string
	Keywords    []string
	Level       int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewCategory(id string, parentID *string, name string, keywords []string, level int) *Category {
	return &Category{
		ID:       id,
		ParentID: parentID,
		Name:     name,
		Keywords: keywords,
		Level:    level,
	}
}
