// Package health reports process liveness.
package health

import "time"

// Version is reported by the health endpoint.
const Version = "1.1.0"

// Status is the health payload.
type Status struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Service encapsulates health-related checks.
type Service struct {
	now func() time.Time
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{now: time.Now}
}

// Status returns the liveness payload. It never fails while the process runs.
func (s *Service) Status() Status {
	now := time.Now
	if s != nil && s.now != nil {
		now = s.now
	}
	return Status{
		Status:    "healthy",
		Timestamp: now().UTC().Format(time.RFC3339Nano),
		Version:   Version,
	}
}
