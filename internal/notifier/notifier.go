package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/Brownie44l1/solariq/internal/classifier"
)

type Notifier interface {
	Notify(ctx context.Context, r classifier.Result) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, classifier.Result) error { return nil }

// Dispatch notifies n about each result that requires an alert. A failed
// notification does not stop the remaining ones; all failures are returned
// joined. It returns the number of alerts delivered.
func Dispatch(ctx context.Context, n Notifier, results []classifier.Result) (int, error) {
	var errs []error
	sent := 0
	for _, r := range results {
		if !r.AlertRequired || r.Failed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, errors.Join(append(errs, err)...)
		}
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", r.ImagePath, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
