package announce

import (
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Session is an AMQP connection with one channel and a declared topic
// exchange, ready to back an Announcer.
type Session struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects to the broker at rawURL and declares exchange as a durable
// topic exchange.
func Dial(rawURL, exchange string) (*Session, error) {
	if exchange == "" {
		exchange = defaultExchange
	}

	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", URL: sanitizeURL(rawURL), Err: err}
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, &ConnectionError{Op: "open channel", URL: sanitizeURL(rawURL), Err: err}
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, &ConnectionError{Op: "declare exchange " + exchange, URL: sanitizeURL(rawURL), Err: err}
	}

	return &Session{conn: conn, ch: ch, exchange: exchange}, nil
}

// Channel returns the session channel
func (s *Session) Channel() Channel {
	return s.ch
}

// Exchange returns the declared exchange
func (s *Session) Exchange() string {
	return s.exchange
}

// Close closes the channel and the connection
func (s *Session) Close() error {
	if err := s.ch.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}

// sanitizeURL drops the password from a connection URL
func sanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}
