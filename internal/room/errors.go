package room

import "errors"

var ErrUnknownRoom = errors.New("unknown room")
