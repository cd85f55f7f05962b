package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrEmptyWords     = fmt.Errorf("no words have been found")
	ErrSlowConnection = fmt.Errorf("connection buffer full")
	ErrUnknownEvent   = fmt.Errorf("unknown domain event")
)
