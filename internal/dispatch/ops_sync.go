package dispatch

import (
	"context"
	"fmt"

	"github.com/rcliao/membank/internal/engine"
)

// SyncOps are registered only when the cloud mirror capability is present;
// without it these operations are simply not offered at the boundary.
func SyncOps() []Operation {
	return []Operation{
		{
			Name: "sync_to_cloud",
			Desc: "Push all local records for a project (or 'all') to the cloud mirror",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace, or 'all'"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				n, err := e.SyncToCloud(ctx, args.String("project"))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Synced %d records to cloud.", n), nil
			},
		},
		{
			Name: "pull_from_cloud",
			Desc: "Pull a project's records from the cloud mirror and merge them locally",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				res, err := e.PullFromCloud(ctx, args.String("project"))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Pulled %d records from cloud (%d skipped).", res.Pulled, res.Skipped), nil
			},
		},
	}
}
