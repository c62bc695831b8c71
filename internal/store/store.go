// Package store provides the SQLite-backed record store. It owns the five
// typed tables (decisions, errors, context, learnings, sessions), runs schema
// migrations at open time, and exposes prepared read/write operations with
// filtering, ordering, and limit semantics.
//
// All reads exclude archived rows unless IncludeArchived is set, and scope to
// an exact project match. Learning reads additionally accept null-project
// rows, which are global and visible to every project.
package store

import (
	"fmt"

	"github.com/rcliao/membank/internal/model"
)

// ValidationError reports a malformed or missing argument. Operations that
// fail validation do not mutate state.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DecisionParams holds input for storing a decision.
type DecisionParams struct {
	Project   string
	Date      string // ISO date; defaults to today
	Decision  string
	Rationale string
	Category  string
	Priority  int
}

// ErrorParams holds input for storing an error solution.
type ErrorParams struct {
	Project      string
	ErrorPattern string
	Solution     string
	Context      string
	Category     string
	Priority     int
}

// LearningParams holds input for storing a learning. An empty Project makes
// the learning global.
type LearningParams struct {
	Project  string
	Category string
	Content  string
	Priority int
}

// SessionParams holds input for saving a session. Workspace "" addresses the
// default workspace.
type SessionParams struct {
	Project   string
	Workspace string
	Task      string
	Status    string
	Notes     string
}

// QueryParams holds filters shared by the list and recall read paths.
// Category and Search are mutually exclusive; when both are set, Category
// takes precedence and Search is ignored.
type QueryParams struct {
	Project         string
	Category        string
	Search          string
	Limit           int
	IncludeArchived bool
	IncludeGlobal   bool // learnings only: union in null-project rows
}

// CleanupParams holds input for bulk cleanup. An empty Project means all
// projects; an empty Kind means all archivable kinds. With ArchivedOnly
// false, live rows matching the age cutoff are deleted as well.
type CleanupParams struct {
	Project      string
	Kind         model.Kind
	Days         int
	ArchivedOnly bool
}
