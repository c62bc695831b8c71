// Package model defines the record types stored by membank.
package model

import "time"

// Kind identifies one of the five record tables.
type Kind string

const (
	KindDecision Kind = "decision"
	KindError    Kind = "error"
	KindLearning Kind = "learning"
	KindContext  Kind = "context"
	KindSession  Kind = "session"
)

// ParseKind maps a user-supplied kind string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindDecision, KindError, KindLearning, KindContext, KindSession:
		return Kind(s), true
	}
	return "", false
}

// Archivable reports whether records of this kind carry a surrogate id
// and the archived flag. Context entries and sessions are addressed by
// natural key and are never archived.
func (k Kind) Archivable() bool {
	return k == KindDecision || k == KindError || k == KindLearning
}

// Priority levels. Stored as an ordinal; out-of-range values are rejected.
const (
	PriorityNormal   = 0
	PriorityHigh     = 1
	PriorityCritical = 2
)

// ValidPriority reports whether p is a known priority level.
func ValidPriority(p int) bool {
	return p >= PriorityNormal && p <= PriorityCritical
}

// PriorityLabel returns the display name for a priority level.
func PriorityLabel(p int) string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

// Decision records an architectural or implementation decision for a project.
type Decision struct {
	ID           int64      `json:"id"`
	Project      string     `json:"project"`
	Date         string     `json:"date"`
	Decision     string     `json:"decision"`
	Rationale    string     `json:"rationale,omitempty"`
	Category     string     `json:"category,omitempty"`
	Priority     int        `json:"priority"`
	Archived     bool       `json:"archived,omitempty"`
	AccessCount  int        `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ErrorSolution records an error pattern and the fix that worked.
type ErrorSolution struct {
	ID           int64      `json:"id"`
	Project      string     `json:"project"`
	ErrorPattern string     `json:"error_pattern"`
	Solution     string     `json:"solution"`
	Context      string     `json:"context,omitempty"`
	Category     string     `json:"category,omitempty"`
	Priority     int        `json:"priority"`
	Archived     bool       `json:"archived,omitempty"`
	AccessCount  int        `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ContextEntry is a key-value fact scoped to a project. Writes are upserts;
// there is no versioning and no archival.
type ContextEntry struct {
	Project   string    `json:"project"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Learning is a reusable insight. Project may be empty, meaning the learning
// is global and visible to every project's queries.
type Learning struct {
	ID           int64      `json:"id"`
	Project      string     `json:"project,omitempty"`
	Category     string     `json:"category"`
	Content      string     `json:"content"`
	Priority     int        `json:"priority"`
	Archived     bool       `json:"archived,omitempty"`
	AccessCount  int        `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Session tracks at most one in-flight task per (project, workspace) pair.
// Workspace "" is the default workspace.
type Session struct {
	ID        int64     `json:"id"`
	Project   string    `json:"project"`
	Workspace string    `json:"workspace,omitempty"`
	Task      string    `json:"task"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSessionStatus is the status assigned to newly saved sessions.
const DefaultSessionStatus = "in-progress"

// Export is the serialized form of one project's memory, as produced by
// export_memory and consumed by import_memory.
type Export struct {
	Project    string          `json:"project"`
	ExportedAt time.Time       `json:"exported_at"`
	Decisions  []Decision      `json:"decisions"`
	Errors     []ErrorSolution `json:"errors"`
	Context    []ContextEntry  `json:"context"`
	Learnings  []Learning      `json:"learnings"`
	Sessions   []Session       `json:"sessions"`
}
