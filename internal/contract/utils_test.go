package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	tests := []struct {
		cat  schema.Category
		want *color.Color
	}{
		{schema.Category{Label: "Excellent", Level: schema.ExcellentLevel}, ExcellentColor},
		{schema.Category{Label: "Gold", Level: schema.GoodLevel}, GoodColor},
		{schema.Category{Label: "Bronze", Level: schema.NeedsImprovementLevel}, NeedsImprovementColor},
		{schema.Category{Label: "Critical", Level: schema.CriticalLevel}, CriticalColor},
	}

	for _, tt := range tests {
		t.Run(tt.cat.Label, func(t *testing.T) {
			got := GetColorLabel(tt.cat)
			assert.Equal(t, tt.want.Sprint(tt.cat.Label), got)
			assert.Contains(t, got, tt.cat.Label)
		})
	}
}

func TestGetRatingLabel(t *testing.T) {
	assert.Equal(t, "-", GetRatingLabel(0))
	assert.Equal(t, "4", GetRatingLabel(4))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	statePath := GetStateDBFilePath()
	assert.Contains(t, statePath, ".safe_state.db")
	assert.True(t, strings.HasPrefix(statePath, homeDir), "path %s should start with home dir %s", statePath, homeDir)

	assessmentPath := GetAssessmentDBFilePath()
	assert.Contains(t, assessmentPath, ".safe_assessments.db")
	assert.NotEqual(t, statePath, assessmentPath)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "Smart M...", TruncateText("Smart Mobility for All", 10))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3))
	assert.Equal(t, "Zürich ...", TruncateText("Zürich Oerlikon", 10))
}

func TestFlattenName(t *testing.T) {
	assert.Equal(t, "Daily living assistance completion rate (reminders for bathing)",
		FlattenName("Daily living assistance completion rate\n(reminders for bathing)"))
	assert.Equal(t, "a b", FlattenName("  a \t b "))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
