package lottery

import "time"

const (
	// DefaultTotalBalls is the default number of balls, and therefore tickets, per round
	DefaultTotalBalls = 50

	// TicketPrice is the fixed price of one ticket, added to the prize pot on purchase
	TicketPrice = 10

	// DefaultStartingPot is the prize pot of a freshly built machine
	DefaultStartingPot = 200

	// DrawPotPercent is the share of the prize pot at stake in a single draw
	DrawPotPercent = 0.5

	// NoWinner is the name recorded for a rank whose number nobody bought
	NoWinner = "N/A"

	// ScheduleTolerance is the tolerance for prize schedule sum validation
	ScheduleTolerance = 1e-6

	// payoutEpsilon absorbs floating point noise before winnings are rounded up
	payoutEpsilon = 1e-9
)

// Default prize schedule weights for a standard three winner draw
const (
	FirstPlacePercent  = 0.75
	SecondPlacePercent = 0.15
	ThirdPlacePercent  = 0.10
)

const (
	// DefaultRetryAttempts is the default number of retry attempts
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the default interval between retry attempts
	DefaultRetryInterval = 100 * time.Millisecond

	// MaxRetryAttempts is the maximum number of retry attempts allowed
	MaxRetryAttempts = 10

	// MaxRetryDelay caps the exponential backoff between retries
	MaxRetryDelay = 5 * time.Second
)

const (
	// DefaultJournalKey is the Redis list holding the draw journal
	DefaultJournalKey = "lotto:draws"

	// DefaultJournalMaxEntries is the number of draws kept in the journal
	DefaultJournalMaxEntries = 100

	// DefaultJournalTimeout bounds a single journal write or read
	DefaultJournalTimeout = 2 * time.Second

	// MaxSerializationSize is the maximum allowed size for a serialized DrawResult (1MB)
	MaxSerializationSize = 1024 * 1024
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "lotto-journal"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 10
	DefaultRedisMinIdleConns = 2
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)
