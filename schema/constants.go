package schema

import "strings"

// Custom string types for type safety.
type (
	// Priority is the importance tier of a metric. A is essential.
	Priority string

	// CompletionPolicy selects how completion is measured.
	CompletionPolicy string

	// CriticalPolicy selects how many critical metrics are reported.
	CriticalPolicy string

	// NamingScheme selects the label text used for performance categories.
	NamingScheme string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// AssessmentStatus represents the lifecycle state of an assessment.
	AssessmentStatus string

	// CategoryLevel is the naming-independent tier of a performance category.
	CategoryLevel string
)

// All priorities supported.
const (
	PriorityA Priority = "A"
	PriorityB Priority = "B"
	PriorityC Priority = "C"
)

// All completion policies supported.
const (
	SimpleCompletion        CompletionPolicy = "simple" // default
	FieldWeightedCompletion CompletionPolicy = "fieldWeighted"
)

// All critical policies supported.
const (
	FullCritical         CriticalPolicy = "full" // default
	BottomDecileCritical CriticalPolicy = "bottomDecile"
)

// All naming schemes supported.
const (
	StandardNaming NamingScheme = "standard" // default
	MedalNaming    NamingScheme = "medal"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	XLSXOut OutputMode = "xlsx"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All assessment statuses supported.
const (
	DraftStatus     AssessmentStatus = "draft"
	SubmittedStatus AssessmentStatus = "submitted"
)

// All category levels, from best to worst.
const (
	ExcellentLevel        CategoryLevel = "excellent"
	GoodLevel             CategoryLevel = "good"
	NeedsImprovementLevel CategoryLevel = "needs_improvement"
	CriticalLevel         CategoryLevel = "critical"
)

// Rating bounds of the survey scale.
const (
	MinRating = 1
	MaxRating = 5

	// UnsetDisplayRating is what a UI shows for a metric nobody rated yet.
	UnsetDisplayRating = 3
)

// StateVersion is the current version of the serialized assessment state.
const StateVersion = 1

// ValidPriorities lists all valid priorities.
var ValidPriorities = map[Priority]struct{}{
	PriorityA: {},
	PriorityB: {},
	PriorityC: {},
}

// ValidCompletionPolicies lists all valid completion policies.
var ValidCompletionPolicies = map[CompletionPolicy]struct{}{
	SimpleCompletion:        {},
	FieldWeightedCompletion: {},
}

// ValidCriticalPolicies lists all valid critical policies.
var ValidCriticalPolicies = map[CriticalPolicy]struct{}{
	FullCritical:         {},
	BottomDecileCritical: {},
}

// ValidNamingSchemes lists all valid naming schemes.
var ValidNamingSchemes = map[NamingScheme]struct{}{
	StandardNaming: {},
	MedalNaming:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
	XLSXOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidAssessmentStatuses lists all valid assessment statuses.
var ValidAssessmentStatuses = map[AssessmentStatus]struct{}{
	DraftStatus:     {},
	SubmittedStatus: {},
}

// ParsePriority normalizes and validates a priority string.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := ValidPriorities[p]
	return p, ok
}
