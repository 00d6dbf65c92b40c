package realtime

import "errors"

var (
	errFirstFrameNotAuth = errors.New("first frame must be an auth frame")
	errIdentityMismatch  = errors.New("claimed user does not match token subject")
)
