package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned for an unparsable cron expression or a
	// missing job function
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("job already registered")
)
