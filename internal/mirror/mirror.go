// Package mirror implements the optional cloud mirror: best-effort
// propagation of local records to a remote Redis document collection keyed
// by project. The local store is authoritative; the mirror is advisory.
//
// Consistency is last-write-wins at the document level, with no version
// vectors and no conflict detection. That is an accepted limitation: membank
// is a personal, single-operator memory aid, not a multi-writer database.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rcliao/membank/internal/config"
	"github.com/rcliao/membank/internal/model"
)

const opTimeout = 5 * time.Second

// Mirror pushes and pulls record documents against a remote Redis instance.
// Documents are hashes keyed prefix:project:kind:id; HSET merges fields
// rather than replacing whole documents.
type Mirror struct {
	rdb     *redis.Client
	prefix  string
	machine string
	log     *slog.Logger
}

// New connects to the remote store described by cfg. Connection failure is
// returned to the caller, who resolves the capability as absent and
// continues without a mirror.
func New(cfg config.SyncConfig, logger *slog.Logger) (*Mirror, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  opTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping remote store: %w", err)
	}

	return &Mirror{
		rdb:     rdb,
		prefix:  cfg.Prefix,
		machine: machineID(cfg.MachineID),
		log:     logger,
	}, nil
}

// machineID picks the identity stamped on pushed documents: the configured
// id, else the hostname, else a generated ULID.
func machineID(configured string) string {
	if configured != "" {
		return configured
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

func (m *Mirror) key(project string, kind model.Kind, docID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", m.prefix, project, kind, docID)
}

// Push upserts one remote document, merging fields and stamping sync time
// and machine identity. The caller logs and swallows any error; a failed
// push never affects the corresponding local write.
func (m *Mirror) Push(ctx context.Context, project string, kind model.Kind, docID string, fields map[string]interface{}) error {
	stamped := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		stamped[k] = v
	}
	stamped["synced_at"] = time.Now().UTC().Format(time.RFC3339)
	stamped["machine"] = m.machine

	key := m.key(project, kind, docID)
	if err := m.rdb.HSet(ctx, key, stamped).Err(); err != nil {
		return fmt.Errorf("push %s: %w", key, err)
	}
	return nil
}

// Pull fetches all remote documents for a project and kind. Results map
// field names to string values; the caller re-runs the normal insert or
// upsert path per document.
func (m *Mirror) Pull(ctx context.Context, project string, kind model.Kind) ([]map[string]string, error) {
	pattern := m.key(project, kind, "*")

	var docs []map[string]string
	iter := m.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		doc, err := m.rdb.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			return docs, fmt.Errorf("pull %s: %w", iter.Val(), err)
		}
		docs = append(docs, doc)
	}
	if err := iter.Err(); err != nil {
		return docs, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return docs, nil
}

// Remove deletes one remote document, propagating a local delete. Failures
// are swallowed by the caller like any other mirror error.
func (m *Mirror) Remove(ctx context.Context, project string, kind model.Kind, docID string) error {
	return m.rdb.Del(ctx, m.key(project, kind, docID)).Err()
}

// Close releases the client connection.
func (m *Mirror) Close() error { return m.rdb.Close() }
