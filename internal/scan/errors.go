package scan

import "errors"

var (
	ErrInvalidPolicy = errors.New("invalid autoplay policy")
	ErrInvalidMetric = errors.New("metric not found")
	ErrInvalidRange  = errors.New("invalid seed range")
	ErrTimeout       = errors.New("scan timed out")
)
