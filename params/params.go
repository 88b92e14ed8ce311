package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	SessionDuration  = 8 * time.Hour // absolute session lifetime, not sliding
	SessionTokenSize = 48            // random bytes per token, hex-encoded to 96 chars

	StatsUTCOffsetHours = -3 // civil days follow Brasília time (UTC-3)
	StatsDefaultDays    = 30 // trailing window when no date range is given
	StatsRecentLogs     = 50 // newest login rows returned with each stats payload

	MaxLoginAttemptRows = 200 // newest-first cap on the admin attempts listing
	MaxAuditRows        = 200 // newest-first cap on the admin audit listing

	LoginRateLimitMax    = 20              // login requests per IP per window
	LoginRateLimitWindow = 1 * time.Minute // window for the login limiter

	FailedAttemptWindow = 15 * time.Minute // lookback for per-IP failure counting

	HealthCheckServerAddr = ":3001" // health check and metrics server address
)
