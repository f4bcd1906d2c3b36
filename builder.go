package phoneAuth

import (
	"errors"
	"io"
	"time"

	"github.com/MrEthical07/phoneAuth/counter"
	internalaudit "github.com/MrEthical07/phoneAuth/internal/audit"
	"github.com/MrEthical07/phoneAuth/internal/limiters"
	"github.com/MrEthical07/phoneAuth/internal/otp"
	"github.com/MrEthical07/phoneAuth/internal/rate"
	"github.com/MrEthical07/phoneAuth/internal/stores"
	"github.com/MrEthical07/phoneAuth/jwt"
	"github.com/MrEthical07/phoneAuth/password"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Builder defines a public type used by phoneAuth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	store  counter.Store
	redis  redis.UniversalClient

	userProvider UserProvider
	signer       Signer
	codeSender   CodeSender
	auditSink    AuditSink
	logger       logrus.FieldLogger
	clock        func() time.Time

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCounterStore sets the store holding codes, quotas and failure
// counters. It takes precedence over WithRedis.
func (b *Builder) WithCounterStore(s counter.Store) *Builder {
	b.store = s
	return b
}

// WithRedis backs the counter store with client.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the account store. Build fails without one.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithSigner replaces the JWT manager built from Config.JWT. ParseToken is
// only available when s is a *jwt.Manager.
func (b *Builder) WithSigner(s Signer) *Builder {
	b.signer = s
	return b
}

// WithCodeSender sets the collaborator that delivers codes.
func (b *Builder) WithCodeSender(s CodeSender) *Builder {
	b.codeSender = s
	return b
}

// WithLogger sets the logger used for engine warnings. The default discards
// everything.
func (b *Builder) WithLogger(l logrus.FieldLogger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides time.Now for quota days, token times and audit
// timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithMetricsEnabled toggles Config.Metrics.Enabled.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the engine. A builder can
// be built once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("counter store or redis client required")
		}
		store = counter.NewRedisStore(b.redis, "")
	}
	store = counter.WithPrefix(store, cfg.KeyPrefix)

	if cfg.Security.RequireAtomicCounters || cfg.Security.ProductionMode {
		if !counter.IsAtomic(store) {
			return nil, errors.New("atomic counter store required")
		}
	}

	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}
	if b.codeSender == nil {
		return nil, errors.New("code sender required")
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}
	logger := b.logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	// -------- COUNTERS --------
	counters := rate.New(store)
	guard := limiters.NewFailureGuard(counters)
	ledger := otp.NewLedger(
		stores.NewCodeStore(store),
		limiters.NewSendQuota(counters, limiters.SendQuotaConfig{
			Limit: cfg.OTP.DailyLimit,
			TTL:   cfg.OTP.QuotaTTL,
		}),
		guard,
		otp.Config{
			CodeLength:  cfg.OTP.CodeLength,
			CodeTTL:     cfg.OTP.CodeTTL,
			MaxFailures: cfg.OTP.MaxFailures,
			FailureTTL:  cfg.OTP.FailureTTL,
			Location:    cfg.OTP.location(),
		},
		clock,
	)

	// -------- PASSWORDS --------
	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	policy, err := password.NewPolicy(cfg.Password.MinLength, cfg.Password.MaxLength)
	if err != nil {
		return nil, err
	}

	// -------- SESSIONS --------
	signer := b.signer
	var tokens *jwt.Manager
	if signer == nil {
		jm, err := jwt.NewManager(jwt.Config{
			AccessTTL:     cfg.JWT.AccessTTL,
			SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
			PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
			PublicKey:     cloneBytes(cfg.JWT.PublicKey),
			Issuer:        cfg.JWT.Issuer,
			Audience:      cfg.JWT.Audience,
			Leeway:        cfg.JWT.Leeway,
			RequireIAT:    cfg.JWT.RequireIAT,
			MaxFutureIAT:  cfg.JWT.MaxFutureIAT,
			KeyID:         cfg.JWT.KeyID,
			Now:           clock,
		})
		if err != nil {
			return nil, err
		}
		signer = jm
		tokens = jm
	} else if jm, ok := signer.(*jwt.Manager); ok {
		tokens = jm
	}

	engine := &Engine{
		config:       cloneConfig(cfg),
		store:        store,
		ledger:       ledger,
		loginGuard:   guard,
		passwordHash: ph,
		policy:       policy,
		signer:       signer,
		tokens:       tokens,
		userProvider: b.userProvider,
		codeSender:   b.codeSender,
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger,
		clock:        clock,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	if !engine.AtomicCounters() {
		logger.Warn("phoneauth: counter store is not atomic; concurrent requests may overshoot the lockout and quota limits or redeem a code twice")
	}

	b.built = true

	return engine, nil
}
