package mocks

import (
	"time"
)

// CompletedToken is an mqtt.Token that has already finished with a fixed error
type CompletedToken struct {
	err  error
	done chan struct{}
}

// NewCompletedToken returns a token that reports err once waited on
func NewCompletedToken(err error) *CompletedToken {
	done := make(chan struct{})
	close(done)
	return &CompletedToken{err: err, done: done}
}

func (t *CompletedToken) Wait() bool { return true }

func (t *CompletedToken) WaitTimeout(time.Duration) bool { return true }

func (t *CompletedToken) Done() <-chan struct{} { return t.done }

func (t *CompletedToken) Error() error { return t.err }
