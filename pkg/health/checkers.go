package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck reports unhealthy once the goroutine count exceeds
// limit. Registered as a liveness check to catch goroutine leaks.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds limit %d", n, limit)
		}
		return nil
	}
}

// Pinger is satisfied by pgxpool.Pool and database/sql.DB alike.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabasePingCheck pings the database. Registered as a readiness check so
// the service is pulled from rotation when Postgres becomes unreachable.
func DatabasePingCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return errors.Wrap(err, "database ping")
		}
		return nil
	}
}
