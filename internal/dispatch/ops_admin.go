package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rcliao/membank/internal/engine"
	"github.com/rcliao/membank/internal/model"
)

func adminOps() []Operation {
	return []Operation{
		{
			Name: "archive",
			Desc: "Archive a record: hidden from reads, kept for export and pruning",
			Args: []ArgSpec{
				{Name: "type", Type: TypeString, Desc: "decision, error, or learning", Required: true},
				{Name: "id", Type: TypeNumber, Desc: "Record id", Required: true},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				id := int64(args.Int("id", 0))
				changed, err := e.Archive(ctx, args.String("type"), id)
				if err != nil {
					return "", err
				}
				if !changed {
					return fmt.Sprintf("No %s with id %d (0 changes).", args.String("type"), id), nil
				}
				return fmt.Sprintf("Archived %s #%d", args.String("type"), id), nil
			},
		},
		{
			Name: "set_priority",
			Desc: "Set a record's priority: 0 normal, 1 high, 2 critical",
			Args: []ArgSpec{
				{Name: "type", Type: TypeString, Desc: "decision, error, or learning", Required: true},
				{Name: "id", Type: TypeNumber, Desc: "Record id", Required: true},
				{Name: "priority", Type: TypeNumber, Desc: "Priority level", Required: true},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				id := int64(args.Int("id", 0))
				level := args.Int("priority", -1)
				changed, err := e.SetPriority(ctx, args.String("type"), id, level)
				if err != nil {
					return "", err
				}
				if !changed {
					return fmt.Sprintf("No %s with id %d (0 changes).", args.String("type"), id), nil
				}
				return fmt.Sprintf("Set %s #%d priority to %s", args.String("type"), id, model.PriorityLabel(level)), nil
			},
		},
		{
			Name: "prune",
			Desc: "Permanently delete archived records older than the cutoff",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace, or 'all'"},
				{Name: "days", Type: TypeNumber, Desc: "Age cutoff in days, default 90"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				n, err := e.Prune(ctx, args.String("project"), args.Int("days", 90))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Pruned %d archived records.", n), nil
			},
		},
		{
			Name: "bulk_cleanup",
			Desc: "Delete old records in bulk; with archived_only=false this deletes live data",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace, or 'all'"},
				{Name: "type", Type: TypeString, Desc: "decision, error, learning, or 'all'"},
				{Name: "days", Type: TypeNumber, Desc: "Age cutoff in days, default 30"},
				{Name: "archived_only", Type: TypeBoolean, Desc: "Restrict to archived records, default true"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				archivedOnly := args.Bool("archived_only", true)
				n, err := e.BulkCleanup(ctx, args.String("project"), args.String("type"),
					args.Int("days", 30), archivedOnly)
				if err != nil {
					return "", err
				}
				if archivedOnly {
					return fmt.Sprintf("Cleaned up %d archived records.", n), nil
				}
				return fmt.Sprintf("Cleaned up %d records (archived and live).", n), nil
			},
		},
		{
			Name: "export_memory",
			Desc: "Export a project's memory as one JSON document",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "include_archived", Type: TypeBoolean, Desc: "Include archived records, default false"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				exp, err := e.Export(ctx, args.String("project"), args.Bool("include_archived", false))
				if err != nil {
					return "", err
				}
				b, err := json.MarshalIndent(exp, "", "  ")
				if err != nil {
					return "", fmt.Errorf("encode export: %w", err)
				}
				return string(b), nil
			},
		},
		{
			Name: "import_memory",
			Desc: "Import a JSON export document; bad rows are skipped, never fatal",
			Args: []ArgSpec{
				{Name: "data", Type: TypeString, Desc: "The export JSON", Required: true},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				var exp model.Export
				if err := json.Unmarshal([]byte(args.String("data")), &exp); err != nil {
					return fmt.Sprintf("Invalid import document: %v", err), nil
				}
				res, err := e.Import(ctx, &exp)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf(
					"Imported %d records into '%s' (%d decisions, %d errors, %d learnings, %d context, %d sessions; %d skipped).",
					res.Total(), exp.Project, res.Decisions, res.Errors, res.Learnings,
					res.Context, res.Sessions, res.Skipped), nil
			},
		},
		{
			Name: "memory_stats",
			Desc: "Row counts per project, archived totals, and database size",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace; omit for all projects"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				st, err := e.Stats(ctx, args.String("project"))
				if err != nil {
					return "", err
				}
				return formatStats(st), nil
			},
		},
	}
}
