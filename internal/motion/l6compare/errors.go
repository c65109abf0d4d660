package l6compare

import "errors"

// ErrAllJointsUndefined is returned when no joint had enough comparable
// samples to score. It is never reported as a score of 0 or 100.
var ErrAllJointsUndefined = errors.New("no joint could be scored")
