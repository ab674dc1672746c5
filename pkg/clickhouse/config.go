package clickhouse

import "time"

// Option configures Client.
type Option func(*Config)

// Config holds connection settings for the snapshot database.
type Config struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	UseHTTP         bool
	AsyncInsert     bool
	WaitForAsync    bool
	MaxExecTime     time.Duration
}

// WithHost sets the server host.
func WithHost(host string) Option {
	return func(c *Config) { c.Host = host }
}

// WithPort sets the server port.
func WithPort(port int) Option {
	return func(c *Config) { c.Port = port }
}

// WithDatabase sets the target database.
func WithDatabase(database string) Option {
	return func(c *Config) { c.Database = database }
}

// WithCredentials sets username and password.
func WithCredentials(user, password string) Option {
	return func(c *Config) {
		c.User = user
		c.Password = password
	}
}

// WithMaxConnections bounds the pool.
func WithMaxConnections(maxOpen, maxIdle int) Option {
	return func(c *Config) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
	}
}

// WithTimeouts sets dial, read and write timeouts.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(c *Config) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

// WithHTTP switches from the native protocol to HTTP. Needed when the
// server is only reachable through an HTTP load balancer.
func WithHTTP(useHTTP bool) Option {
	return func(c *Config) { c.UseHTTP = useHTTP }
}

// WithAsyncInsert enables server-side insert batching. Snapshot writes
// happen once per evaluation cycle, so waiting for the batch is cheap.
func WithAsyncInsert(enabled, wait bool) Option {
	return func(c *Config) {
		c.AsyncInsert = enabled
		c.WaitForAsync = wait
	}
}

// WithMaxExecutionTime caps per-query execution time.
func WithMaxExecutionTime(d time.Duration) Option {
	return func(c *Config) { c.MaxExecTime = d }
}
