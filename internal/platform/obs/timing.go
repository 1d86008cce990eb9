// Package obs holds the small logging helpers shared by the command line tools.
package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// WithRunID tags ctx so timings logged under it can be grouped per run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// Time starts a timer for the named operation. Call the returned func, usually
// deferred with a pointer to the named error result, to log the duration.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	runID, _ := ctx.Value(RunIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start).Round(time.Microsecond)

		if errp != nil && *errp != nil {
			log.Printf("[ERROR] run_id=%s op=%s dur=%s err=%v", runID, name, dur, *errp)
			return
		}
		log.Printf("[INFO] run_id=%s op=%s dur=%s", runID, name, dur)
	}
}
