package task

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/josephgoksu/tasklane/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(descLen, deps, notesLen int) models.Task {
	t := models.Task{
		ID:          "t",
		Name:        "Sized",
		Description: strings.Repeat("d", descLen),
		Notes:       strings.Repeat("n", notesLen),
	}
	for i := 0; i < deps; i++ {
		t.Dependencies = append(t.Dependencies, "dep")
	}
	return t
}

func TestAssess_Levels(t *testing.T) {
	tests := []struct {
		name string
		task models.Task
		want Level
	}{
		{"tiny", sized(10, 0, 0), LevelLow},
		{"medium description", sized(500, 0, 0), LevelMedium},
		{"high dependencies", sized(10, 5, 0), LevelHigh},
		{"very high notes", sized(10, 0, 1000), LevelVeryHigh},
		{"max across metrics", sized(999, 1, 500), LevelHigh},
		{"just below medium", sized(499, 1, 199), LevelLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Assess(tt.task).Level)
		})
	}
}

func TestAssess_VeryHighDescriptionDominates(t *testing.T) {
	for _, deps := range []int{0, 3, 12} {
		for _, notes := range []int{0, 300, 2000} {
			a := Assess(sized(DescriptionThresholds.VeryHigh, deps, notes))
			assert.Equal(t, LevelVeryHigh, a.Level, "deps=%d notes=%d", deps, notes)
		}
	}
}

func TestAssess_SecondaryRecommendations(t *testing.T) {
	base := Assess(sized(10, 0, 2000))
	withLongDesc := Assess(sized(1500, 0, 2000))
	require.Equal(t, LevelVeryHigh, base.Level)
	require.Equal(t, LevelVeryHigh, withLongDesc.Level)
	assert.Len(t, withLongDesc.Recommendations, len(base.Recommendations)+1,
		"a long description adds a suggestion even when the level is already very high")

	all := Assess(sized(1000, 5, 500))
	assert.Len(t, all.Recommendations, len(levelRecommendations[LevelHigh])+3)
}

func TestAssess_MetricsCountCharacters(t *testing.T) {
	a := Assess(models.Task{Description: "héllo", Notes: "日本"})
	assert.Equal(t, 5, a.Metrics.DescriptionLength)
	assert.Equal(t, 2, a.Metrics.NotesLength)
	assert.True(t, a.Metrics.HasNotes)
}

func TestLevel_MarshalsByName(t *testing.T) {
	data, err := json.Marshal(Assessment{Level: LevelVeryHigh})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"very_high"`)
}

func TestRepository_AssessByID(t *testing.T) {
	r, _ := newTestRepo(t)
	created := mustCreate(t, r, "Assess me")

	a, err := r.AssessByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, created.ID, a.TaskID)

	a, err = r.AssessByID("missing")
	require.NoError(t, err)
	assert.Nil(t, a)
}
