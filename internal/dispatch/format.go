package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/membank/internal/engine"
	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

// Record blocks are joined with blank lines; each kind has one fixed block
// shape used everywhere it appears (recall, search, status, load).

func joinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n\n")
}

func formatDecision(d model.Decision, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[#%d] %s (%s, %s)", d.ID, d.Decision,
		model.PriorityLabel(d.Priority), engine.Tier(d.AccessCount, d.LastAccessed, now))
	fmt.Fprintf(&b, "\nDate: %s", d.Date)
	if d.Category != "" {
		fmt.Fprintf(&b, " | Category: %s", d.Category)
	}
	if d.Rationale != "" {
		fmt.Fprintf(&b, "\nRationale: %s", d.Rationale)
	}
	return b.String()
}

func formatError(e model.ErrorSolution, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[#%d] %s (%s, %s)", e.ID, e.ErrorPattern,
		model.PriorityLabel(e.Priority), engine.Tier(e.AccessCount, e.LastAccessed, now))
	fmt.Fprintf(&b, "\nSolution: %s", e.Solution)
	if e.Context != "" {
		fmt.Fprintf(&b, "\nContext: %s", e.Context)
	}
	if e.Category != "" {
		fmt.Fprintf(&b, "\nCategory: %s", e.Category)
	}
	return b.String()
}

func formatLearning(l model.Learning, now time.Time) string {
	scope := ""
	if l.Project == "" {
		scope = ", global"
	}
	return fmt.Sprintf("[#%d] %s (%s, %s%s)\n%s", l.ID, l.Category,
		model.PriorityLabel(l.Priority), engine.Tier(l.AccessCount, l.LastAccessed, now),
		scope, l.Content)
}

func formatContextEntry(e model.ContextEntry) string {
	return fmt.Sprintf("%s = %s", e.Key, e.Value)
}

func formatSession(s model.Session) string {
	workspace := s.Workspace
	if workspace == "" {
		workspace = "default"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (%s)", workspace, s.Task, s.Status)
	if s.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", s.Notes)
	}
	fmt.Fprintf(&b, "\nUpdated: %s", s.UpdatedAt.Format(time.RFC3339))
	return b.String()
}

func formatDecisions(ds []model.Decision, now time.Time) string {
	blocks := make([]string, len(ds))
	for i, d := range ds {
		blocks[i] = formatDecision(d, now)
	}
	return joinBlocks(blocks)
}

func formatErrors(es []model.ErrorSolution, now time.Time) string {
	blocks := make([]string, len(es))
	for i, e := range es {
		blocks[i] = formatError(e, now)
	}
	return joinBlocks(blocks)
}

func formatLearnings(ls []model.Learning, now time.Time) string {
	blocks := make([]string, len(ls))
	for i, l := range ls {
		blocks[i] = formatLearning(l, now)
	}
	return joinBlocks(blocks)
}

func formatContextEntries(es []model.ContextEntry) string {
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = formatContextEntry(e)
	}
	return strings.Join(lines, "\n")
}

func formatSessions(ss []model.Session) string {
	blocks := make([]string, len(ss))
	for i, s := range ss {
		blocks[i] = formatSession(s)
	}
	return joinBlocks(blocks)
}

// formatStats renders memory_stats.
func formatStats(st *store.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s (%d bytes)\n", st.DBPath, st.DBSizeBytes)
	fmt.Fprintf(&b, "Archived records: %d", st.TotalArchived)
	for _, ps := range st.Projects {
		fmt.Fprintf(&b, "\n\n[%s] %d decisions, %d errors, %d learnings, %d context entries, %d sessions (%d archived)",
			ps.Project, ps.Decisions, ps.Errors, ps.Learnings, ps.Context, ps.Sessions, ps.Archived)
	}
	return b.String()
}

// formatSnapshot renders memory_status and load_comprehensive_memory.
func formatSnapshot(snap *engine.Snapshot, now time.Time) string {
	var sections []string

	header := fmt.Sprintf("Memory for project '%s': %d decisions, %d errors, %d learnings, %d context entries, %d sessions",
		snap.Project, snap.Counts.Decisions, snap.Counts.Errors, snap.Counts.Learnings,
		snap.Counts.Context, snap.Counts.Sessions)
	sections = append(sections, header)

	if len(snap.Sessions) > 0 {
		sections = append(sections, "== Active sessions ==\n"+formatSessions(snap.Sessions))
	}
	if len(snap.Context) > 0 {
		sections = append(sections, "== Context ==\n"+formatContextEntries(snap.Context))
	}
	if len(snap.Decisions) > 0 {
		sections = append(sections, "== Decisions ==\n"+formatDecisions(snap.Decisions, now))
	}
	if len(snap.Learnings) > 0 {
		sections = append(sections, "== Learnings ==\n"+formatLearnings(snap.Learnings, now))
	}
	if len(snap.Errors) > 0 {
		sections = append(sections, "== Errors ==\n"+formatErrors(snap.Errors, now))
	}
	return joinBlocks(sections)
}
