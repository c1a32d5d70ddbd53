package obs

import (
	"context"
	"time"

	"delivery-notify-service/internal/platform/logger"
)

// Time starts a timer for op and returns a func that logs its duration and outcome.
// Use as: defer obs.Time(ctx, "store.Save")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)
		log := logger.C(ctx)

		if errp != nil && *errp != nil {
			log.Warn().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Err(*errp).Msg("op failed")
			return
		}
		log.Debug().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("op done")
	}
}
