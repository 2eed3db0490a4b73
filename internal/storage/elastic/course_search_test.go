package elastic

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

func TestNewCourseDocUsesEffectivePrice(t *testing.T) {
	doc := newCourseDoc(models.Course{ID: uuid.New(), Title: "GST Filing", Price: 1000, Discount: 15, Level: models.LevelBeginner, Rating: 4.5})
	assert.Equal(t, 850.0, doc.Price)
	assert.Equal(t, "beginner", doc.Level)
}

func TestSearchBodyLevelFilter(t *testing.T) {
	raw, err := json.Marshal(searchBody("tally", "", 10, 0))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"filter"`)

	raw, err = json.Marshal(searchBody("tally", models.LevelAdvanced, 5, 10))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"filter":[{"term":{"level":"advanced"}}]`)
	assert.Contains(t, string(raw), `"from":10`)
	assert.Contains(t, string(raw), `"size":5`)
}
