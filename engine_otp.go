package phoneAuth

import (
	"context"

	"github.com/MrEthical07/phoneAuth/internal/flows"
)

// SendOTP issues a one-time code for phone and hands it to the configured
// [CodeSender]. Remaining is the number of further codes phone may request
// on the current quota day.
//
// SendOTP returns ErrQuotaExceeded (as an *AttemptError) once the daily cap
// is used up, ErrCodeDeliveryFailed when the sender fails and
// ErrCounterUnavailable when the counter store cannot be reached. A failed
// delivery still consumes quota.
func (e *Engine) SendOTP(ctx context.Context, phone string) (*SendOTPResult, error) {
	if e == nil || e.ledger == nil {
		return nil, ErrEngineNotReady
	}

	remaining, err := flows.RunSendOTP(ctx, phone, e.sendOTPFlowDeps())
	if err != nil {
		return nil, err
	}
	return &SendOTPResult{Remaining: remaining}, nil
}

// LoginWithOTP consumes code for phone and returns a session. The account is
// created on first login.
//
// A wrong or expired code returns ErrWrongCode with the attempts left; the
// failure that reaches the limit returns ErrLocked and discards the code.
func (e *Engine) LoginWithOTP(ctx context.Context, phone, code string) (*LoginResult, error) {
	if e == nil || e.ledger == nil {
		return nil, ErrEngineNotReady
	}

	session, err := flows.RunLoginOTP(ctx, phone, code, e.loginOTPFlowDeps())
	if err != nil {
		return nil, err
	}
	return loginResult(session), nil
}

func (e *Engine) sendOTPFlowDeps() flows.SendOTPDeps {
	deps := flows.SendOTPDeps{
		Hooks:     e.flowHooks(),
		IssueCode: e.ledger.Issue,
		Metrics: flows.SendOTPMetrics{
			Sent:               int(MetricOTPSent),
			QuotaExceeded:      int(MetricOTPQuotaExceeded),
			DeliveryFailed:     int(MetricOTPDeliveryFailed),
			CounterUnavailable: int(MetricCounterUnavailable),
			Latency:            int(MetricSendOTPLatency),
		},
		Events: flows.SendOTPEvents{
			Sent:          auditEventOTPSent,
			QuotaExceeded: auditEventOTPQuotaExceeded,
		},
		Errors: flowErrors(),
	}
	if e.codeSender != nil {
		deps.SendCode = e.codeSender.SendCode
	}
	return deps
}

func (e *Engine) loginOTPFlowDeps() flows.LoginOTPDeps {
	return flows.LoginOTPDeps{
		Hooks:      e.flowHooks(),
		Gate:       e.otpGate(),
		FindUser:   e.findUser,
		CreateUser: e.createUser,
		IssueToken: e.issueToken,
		Metrics: flows.LoginOTPMetrics{
			Success:        int(MetricOTPLoginSuccess),
			AccountCreated: int(MetricAccountCreated),
			SessionIssued:  int(MetricSessionIssued),
			Latency:        int(MetricLoginOTPLatency),
		},
		Events: flows.LoginOTPEvents{
			Success:        auditEventOTPLoginSuccess,
			AccountCreated: auditEventAccountCreated,
		},
		Errors: flowErrors(),
	}
}
