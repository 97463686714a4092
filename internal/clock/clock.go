package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time.Now so day-bound queries can be tested with a
// fixed instant.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return SystemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
