package services

// Service is a long-running background job with an explicit lifecycle.
type Service interface {
	Start() error
	Stop() error
}

var _ Service = (*WatchService)(nil)
