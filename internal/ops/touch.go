package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/snip/internal/db"
)

// Touch records a successful run: usage_count+1 and last_used_at=now.
func Touch(ctx context.Context, database *sql.DB, id string) error {
	return db.TouchUsage(ctx, database, id, time.Now())
}
