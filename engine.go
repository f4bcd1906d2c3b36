package phoneAuth

import (
	"context"
	"strings"
	"time"

	"github.com/MrEthical07/phoneAuth/counter"
	internalaudit "github.com/MrEthical07/phoneAuth/internal/audit"
	"github.com/MrEthical07/phoneAuth/internal/flows"
	"github.com/MrEthical07/phoneAuth/internal/limiters"
	"github.com/MrEthical07/phoneAuth/internal/otp"
	"github.com/MrEthical07/phoneAuth/jwt"
	"github.com/MrEthical07/phoneAuth/password"
	"github.com/sirupsen/logrus"
)

// Engine defines a public type used by phoneAuth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	store        counter.Store
	ledger       *otp.Ledger
	loginGuard   *limiters.FailureGuard
	passwordHash *password.Argon2
	policy       *password.Policy
	signer       Signer
	tokens       *jwt.Manager
	userProvider UserProvider
	codeSender   CodeSender
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	logger       logrus.FieldLogger
	clock        func() time.Time
}

// Close stops the audit dispatcher after draining queued events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// Shutdown stops the audit dispatcher and waits until queued events reach the
// sink or ctx ends. Events still queued at the deadline are counted by
// AuditDropped.
func (e *Engine) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.audit.Shutdown(ctx)
}

// AuditDropped returns how many audit events never reached the sink.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AtomicCounters reports whether the counter store increments atomically and
// redeems codes with a single compare-and-delete.
func (e *Engine) AtomicCounters() bool {
	if e == nil || e.store == nil {
		return false
	}
	return counter.IsAtomic(e.store)
}

// ParseToken verifies a session token and returns its identity. Any
// verification failure is reported as ErrUnauthorized.
func (e *Engine) ParseToken(token string) (*Identity, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrUnauthorized
	}
	return &Identity{UserID: claims.Subject, Phone: claims.Phone}, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) warn(msg string, kv ...any) {
	if e == nil || e.logger == nil {
		return
	}
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	e.logger.WithFields(fields).Warn(msg)
}

// flowHooks binds the side channels shared by every flow.
func (e *Engine) flowHooks() flows.Hooks {
	return flows.Hooks{
		Now: e.now,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		Observe: func(id int, d time.Duration) {
			e.metrics.Observe(MetricID(id), d)
		},
		EmitAudit:      e.emitAudit,
		Warn:           e.warn,
		Attempt:        newAttemptError,
		NormalizePhone: NormalizePhone,
	}
}

func flowErrors() flows.Errors {
	return flows.Errors{
		EngineNotReady:     ErrEngineNotReady,
		QuotaExceeded:      ErrQuotaExceeded,
		WrongCode:          ErrWrongCode,
		WrongPassword:      ErrWrongPassword,
		Locked:             ErrLocked,
		UserNotFound:       ErrUserNotFound,
		NoPassword:         ErrNoPassword,
		CounterUnavailable: ErrCounterUnavailable,
		CodeDeliveryFailed: ErrCodeDeliveryFailed,
		SessionIssueFailed: ErrSessionIssueFailed,
	}
}

func (e *Engine) otpGate() flows.OTPGate {
	return flows.OTPGate{
		Consume:           e.ledger.Consume,
		FailureMetric:     int(MetricOTPLoginFailure),
		LockedMetric:      int(MetricOTPLocked),
		UnavailableMetric: int(MetricCounterUnavailable),
		FailureEvent:      auditEventOTPLoginFailure,
		LockedEvent:       auditEventOTPLocked,
	}
}

func (e *Engine) findUser(ctx context.Context, phone string) (flows.User, error) {
	rec, err := e.userProvider.FindByPhone(ctx, phone)
	if err != nil {
		return flows.User{}, err
	}
	return toFlowUser(rec), nil
}

func (e *Engine) createUser(ctx context.Context, phone string) (flows.User, error) {
	rec, err := e.userProvider.CreateWithPhone(ctx, phone)
	if err != nil {
		return flows.User{}, err
	}
	return toFlowUser(rec), nil
}

func (e *Engine) issueToken(_ context.Context, user flows.User) (string, error) {
	return e.signer.Sign(user.UserID, user.Phone)
}

func toFlowUser(rec UserRecord) flows.User {
	return flows.User{
		UserID:       rec.UserID,
		Phone:        rec.Phone,
		PasswordHash: rec.PasswordHash,
	}
}

func loginResult(s flows.Session) *LoginResult {
	return &LoginResult{
		Token: s.Token,
		User: publicUser(UserRecord{
			UserID:       s.User.UserID,
			Phone:        s.User.Phone,
			PasswordHash: s.User.PasswordHash,
		}),
	}
}
