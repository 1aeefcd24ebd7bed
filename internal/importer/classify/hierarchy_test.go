package classify

import (
	"testing"

	"github.com/zakupka-tech/go-backend/internal/importer/identity"
	"github.com/zakupka-tech/go-backend/internal/importer/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHierarchy(t *testing.T) {
	entries := []source.CategoryEntry{
		{CategoryPath: "Офис", Level: 0, Keywords: []string{"офис"}},
		{CategoryPath: "Офис -> Бумага", Level: 1, Keywords: []string{"бумага"}},
		{CategoryPath: "Офис -> Бумага -> А4", Level: 2, Keywords: []string{"а4"}},
	}

	h := BuildHierarchy(entries, identity.NewResolver())
	require.Len(t, h.Categories, 3)

	// Контрольные значения посчитаны отдельно как md5 от полного пути.
	assert.Equal(t, "8caf0567-988f-6898-bf53-e8c848c6f7bc", h.Categories[0].ID)
	assert.Equal(t, "86b6ecda-2015-eb36-d8a5-60ad841a083f", h.Categories[1].ID)
	assert.Equal(t, "939fcc41-a87e-b669-134a-136fa7f3858e", h.Categories[2].ID)

	root, paper, a4 := h.Categories[0], h.Categories[1], h.Categories[2]

	assert.Nil(t, root.ParentID)
	require.NotNil(t, paper.ParentID)
	assert.Equal(t, root.ID, *paper.ParentID)
	require.NotNil(t, a4.ParentID)
	assert.Equal(t, paper.ID, *a4.ParentID)

	assert.Equal(t, "А4", a4.Name)
	assert.Equal(t, 2, a4.Level)
	assert.Equal(t, []string{"а4"}, a4.Keywords)

	// Ключевые слова всех категорий попали в классификатор.
	assert.Equal(t, paper.ID, h.Classifier.Classify("Бумага офисная"))
}

func TestBuildHierarchy_OrphanParent(t *testing.T) {
	// Родитель в файле отсутствует, но его id всё равно детерминированный.
	entries := []source.CategoryEntry{
		{CategoryPath: "Офис -> Бумага -> А4", Level: 2, Keywords: nil},
	}

	h := BuildHierarchy(entries, identity.NewResolver())
	require.Len(t, h.Categories, 1)
	require.NotNil(t, h.Categories[0].ParentID)
	assert.Equal(t, identity.PathID("Офис -> Бумага"), *h.Categories[0].ParentID)
}

func TestBuildHierarchy_SkipsEmptyPaths(t *testing.T) {
	entries := []source.CategoryEntry{
		{CategoryPath: "   "},
		{CategoryPath: "Офис"},
	}

	h := BuildHierarchy(entries, identity.NewResolver())
	assert.Len(t, h.Categories, 1)
}
