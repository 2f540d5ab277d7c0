package dispatch

import "errors"

// ErrTaskTooLarge is returned by Submit for a task that cannot fit the total
// capacity, and would therefore stay resident forever.
var ErrTaskTooLarge = errors.New("dispatch: task needs more than the total capacity")
