package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when the process runs more than threshold
// goroutines, which usually means something is leaking them.
func GoroutineCountCheck(threshold int) CheckFunc {
	return CountCheck("goroutine", runtime.NumGoroutine, threshold)
}

// CountCheck fails when count() exceeds threshold. what names the counted
// thing in the error message.
func CountCheck(what string, count func() int, threshold int) CheckFunc {
	return func(context.Context) error {
		if n := count(); n > threshold {
			return errors.Errorf("%s count %d exceeds threshold %d", what, n, threshold)
		}
		return nil
	}
}

// PingCheck adapts a ping function, such as a database pool's Ping, to a
// CheckFunc.
func PingCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) error {
		if err := ping(ctx); err != nil {
			return errors.Wrap(err, "ping")
		}
		return nil
	}
}
