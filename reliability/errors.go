package reliability

import "errors"

// ErrNonPositiveScenarioCount indicates WithScenarioCount was given a
// value <= 0, or the default was overridden down to one by mistake.
var ErrNonPositiveScenarioCount = errors.New("reliability: scenario count must be positive")
