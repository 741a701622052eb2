package domain

import "errors"

var (
	ErrConfig    = errors.New("config error")
	ErrFetch     = errors.New("fetch error")
	ErrParse     = errors.New("parse error")
	ErrSubmit    = errors.New("submit error")
	ErrScheduler = errors.New("scheduler error")
)
