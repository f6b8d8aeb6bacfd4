package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/safe/schema"
)

// Color variables for console output.
var (
	ExcellentColor        = color.New(color.FgGreen, color.Bold) // ExcellentColor marks the top band.
	GoodColor             = color.New(color.FgCyan)              // GoodColor is informational.
	NeedsImprovementColor = color.New(color.FgYellow)            // NeedsImprovementColor is standard caution.
	CriticalColor         = color.New(color.FgRed, color.Bold)   // CriticalColor is standard danger.
)

// GetColorLabel returns a colored category label for console output (table).
func GetColorLabel(cat schema.Category) string {
	switch cat.Level {
	case schema.ExcellentLevel:
		return ExcellentColor.Sprint(cat.Label)
	case schema.GoodLevel:
		return GoodColor.Sprint(cat.Label)
	case schema.NeedsImprovementLevel:
		return NeedsImprovementColor.Sprint(cat.Label)
	default:
		return CriticalColor.Sprint(cat.Label)
	}
}

// GetRatingLabel renders a rating for tables; 0 means unrated.
func GetRatingLabel(rating int) string {
	if rating == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", rating)
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStateDBFilePath returns the path to the SQLite DB file for state storage.
func GetStateDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".safe_state.db"
	}
	return filepath.Join(homeDir, ".safe_state.db")
}

// GetAssessmentDBFilePath returns the path to the SQLite DB file for assessment storage.
func GetAssessmentDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".safe_assessments.db"
	}
	return filepath.Join(homeDir, ".safe_assessments.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// FlattenName collapses embedded newlines so catalog names fit on one table row.
func FlattenName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
