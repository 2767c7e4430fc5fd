package reference

import "errors"

// ErrInvalidDataset is returned when a reference dataset cannot be used.
var ErrInvalidDataset = errors.New("invalid reference dataset")
