package kernel

import (
	"errors"
	"fmt"
	"time"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrTimeWindowIsNotConstructed = errors.New("TimeWindow must be created via NewTimeWindow")

// TimeWindow is the closed interval [start, end] during which a driver or vehicle
// is committed to a delivery.
type TimeWindow struct {
	start time.Time
	end   time.Time
	guard guard.ConstructorGuard
}

// NewTimeWindow requires start <= end. Both instants are normalised to UTC.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if start.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("window start")
	}
	if end.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("window end")
	}
	if end.Before(start) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause(
			"time window",
			fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
		)
	}

	return TimeWindow{
		start: start.UTC(),
		end:   end.UTC(),
		guard: guard.NewConstructorGuard(),
	}, nil
}

// NewOptionalTimeWindow returns nil unless both ends are present.
func NewOptionalTimeWindow(start, end *time.Time) (*TimeWindow, error) {
	if start == nil || end == nil {
		return nil, nil
	}
	w, err := NewTimeWindow(*start, *end)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (w TimeWindow) Start() time.Time { return w.start }

func (w TimeWindow) End() time.Time { return w.end }

func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}

// Overlaps reports whether two closed intervals share at least one instant:
// s1 <= e2 && e1 >= s2. Windows that only touch at a boundary overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return !w.start.After(other.end) && !w.end.Before(other.start)
}

func (w TimeWindow) Duration() time.Duration {
	return w.end.Sub(w.start)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s]", w.start.Format(time.RFC3339), w.end.Format(time.RFC3339))
}
