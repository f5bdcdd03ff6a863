package domain

import "time"

// Exchange is the transcript record of one request/response cycle.
// Request and Response are kept as strings so the JSON form stays readable.
type Exchange struct {
	Target   string        `json:"target"`
	SentAt   time.Time     `json:"sent_at"`
	Duration time.Duration `json:"duration_ns"`
	Request  string        `json:"request"`
	Response string        `json:"response"`
	Error    string        `json:"error,omitempty"`
}

// Failed reports whether the exchange ended with an error.
func (e Exchange) Failed() bool { return e.Error != "" }
