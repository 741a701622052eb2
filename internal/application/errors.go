package application

import "errors"

var ErrNoSinks = errors.New("no record sinks configured")
