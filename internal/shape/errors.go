package shape

import "errors"

// ErrOpenContour is returned with a zero value when a metric that needs a
// closed contour (area, centroid, containment) is requested on an open one.
var ErrOpenContour = errors.New("contour is not closed")

var (
	ErrEmptyContour   = errors.New("contour has no points")
	ErrUnknownCommand = errors.New("unknown path command")
	ErrInvalidCommand = errors.New("invalid path command")
	ErrUnknownProfile = errors.New("unknown profile kind")
	ErrInvalidProfile = errors.New("invalid profile dimensions")
)
