package export

import "errors"

// ErrNoMatch is returned by Query when the path selects nothing.
var ErrNoMatch = errors.New("no match")
