package announce

import (
	"fmt"
	"time"
)

// PublishError represents a failed announcement
type PublishError struct {
	Exchange   string    // Target exchange
	RoutingKey string    // Routing key used
	Key        string    // Schema key being announced
	Attempts   int       // Publish attempts made
	Err        error     // Underlying error
	Timestamp  time.Time // When the error occurred
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("announce: failed to publish schema %s to %s/%s: %v",
		e.Key, e.Exchange, e.RoutingKey, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// ConnectionError represents a failure to set up the AMQP session
type ConnectionError struct {
	Op  string // Operation that failed
	URL string // Connection URL (sanitized)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("announce: %s failed for %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
