package metrics

import "errors"

// ErrWriteTextfile is returned when the registry cannot be written to disk.
var ErrWriteTextfile = errors.New("metrics textfile write failed")
