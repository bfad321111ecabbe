package adapters

import (
	"context"
	"errors"

	"github.com/dejobratic/snackbar/internal/pos/ports"
)

// FanoutEventBus delivers every event to each bus in turn. A failing bus does not stop delivery to
// the others; their errors are joined.
type FanoutEventBus struct {
	buses []ports.EventBus
}

func NewFanoutEventBus(buses ...ports.EventBus) *FanoutEventBus {
	return &FanoutEventBus{buses: buses}
}

func (f *FanoutEventBus) Publish(ctx context.Context, event ports.Event) error {
	var errs []error
	for _, bus := range f.buses {
		if err := bus.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
