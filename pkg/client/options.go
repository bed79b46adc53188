package client

import (
	"log/slog"
	"time"
)

const (
	defaultPingInterval  = 30 * time.Second
	defaultDialTimeout   = 10 * time.Second
	defaultWriteTimeout  = 5 * time.Second
	defaultBackoffBase   = 1 * time.Second
	defaultBackoffCap    = 30 * time.Second
	defaultMaxReconnects = 5
)

type config struct {
	url           string
	userID        string
	pingInterval  time.Duration
	dialTimeout   time.Duration
	writeTimeout  time.Duration
	backoffBase   time.Duration
	backoffCap    time.Duration
	maxReconnects int
	autoReconnect bool
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*config)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserID embeds a user identifier as a query parameter in the endpoint
// URL and stamps it on outbound envelopes.
func WithUserID(id string) Option {
	return func(c *config) { c.userID = id }
}

// WithPingInterval sets the heartbeat interval.
func WithPingInterval(interval time.Duration) Option {
	return func(c *config) {
		if interval > 0 {
			c.pingInterval = interval
		}
	}
}

// WithDialTimeout bounds how long a single connection attempt may take.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.dialTimeout = timeout
		}
	}
}

// WithWriteTimeout bounds a single outbound write.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.writeTimeout = timeout
		}
	}
}

// WithBackoff sets the reconnect backoff base delay and cap.
func WithBackoff(base, cap time.Duration) Option {
	return func(c *config) {
		if base > 0 {
			c.backoffBase = base
		}
		if cap >= base {
			c.backoffCap = cap
		}
	}
}

// WithMaxReconnectAttempts sets how many reconnects are scheduled after an
// unexpected close before the client silently gives up.
func WithMaxReconnectAttempts(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxReconnects = n
		}
	}
}

// WithAutoReconnect enables or disables reconnection entirely.
func WithAutoReconnect(enabled bool) Option {
	return func(c *config) { c.autoReconnect = enabled }
}

func defaultConfig(url string) config {
	return config{
		url:           url,
		pingInterval:  defaultPingInterval,
		dialTimeout:   defaultDialTimeout,
		writeTimeout:  defaultWriteTimeout,
		backoffBase:   defaultBackoffBase,
		backoffCap:    defaultBackoffCap,
		maxReconnects: defaultMaxReconnects,
		autoReconnect: true,
		logger:        slog.Default(),
	}
}
