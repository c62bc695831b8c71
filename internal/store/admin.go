package store

import (
	"context"
	"fmt"

	"github.com/rcliao/membank/internal/model"
)

// tableFor maps an archivable kind to its table name. Callers must have
// validated the kind first.
func tableFor(kind model.Kind) string {
	switch kind {
	case model.KindDecision:
		return "decisions"
	case model.KindError:
		return "errors"
	case model.KindLearning:
		return "learnings"
	}
	return ""
}

// SetArchived sets the archived flag on one record and reports whether a row
// changed. A missing id is "0 changes", not an error.
func (s *SQLiteStore) SetArchived(ctx context.Context, kind model.Kind, id int64, archived bool) (bool, error) {
	if !kind.Archivable() {
		return false, invalidf("kind %q cannot be archived", kind)
	}
	flag := 0
	if archived {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET archived = ? WHERE id = ?`, tableFor(kind)), flag, id)
	if err != nil {
		return false, fmt.Errorf("set archived: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetPriority sets the priority level on one record. Invalid levels fail
// validation with no mutation; a missing id is "0 changes".
func (s *SQLiteStore) SetPriority(ctx context.Context, kind model.Kind, id int64, level int) (bool, error) {
	if !kind.Archivable() {
		return false, invalidf("kind %q has no priority", kind)
	}
	if !model.ValidPriority(level) {
		return false, invalidf("invalid priority %d (expected 0-2)", level)
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET priority = ? WHERE id = ?`, tableFor(kind)), level, id)
	if err != nil {
		return false, fmt.Errorf("set priority: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// TrackAccess increments access counters and stamps last_accessed for the
// given records. Called by recall-style reads only; list-style reads leave
// the counters alone so tiering reflects deliberate lookups.
func (s *SQLiteStore) TrackAccess(ctx context.Context, kind model.Kind, ids []int64) error {
	if !kind.Archivable() || len(ids) == 0 {
		return nil
	}
	now := fmtTime(nowUTC())
	for _, id := range ids {
		_, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
				tableFor(kind)), now, id)
		if err != nil {
			return fmt.Errorf("track access: %w", err)
		}
	}
	return nil
}
