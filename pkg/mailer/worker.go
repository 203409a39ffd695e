package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidJob marks a queued message that can never be sent.
var ErrInvalidJob = errors.New("invalid email job")

// Sender delivers one email; *Mailgun satisfies it.
type Sender interface {
	Send(ctx context.Context, job EmailJob) error
}

// Process decodes and sends one queued message. The returned error wraps
// ErrInvalidJob when the message should be dropped rather than retried.
func Process(ctx context.Context, s Sender, body []byte) (EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if !job.Valid() {
		return job, ErrInvalidJob
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return job, s.Send(c, job)
}
