package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/phoneAuth/internal/otp"
)

// SendOTPMetrics carries metric IDs needed by the send flow.
type SendOTPMetrics struct {
	Sent               int
	QuotaExceeded      int
	DeliveryFailed     int
	CounterUnavailable int
	Latency            int
}

// SendOTPEvents carries audit event names used by the send flow.
type SendOTPEvents struct {
	Sent          string
	QuotaExceeded string
}

// SendOTPDeps captures send flow dependencies.
type SendOTPDeps struct {
	Hooks

	IssueCode func(ctx context.Context, phone string) (string, int, error)
	SendCode  func(ctx context.Context, phone, code string) error

	Metrics SendOTPMetrics
	Events  SendOTPEvents
	Errors  Errors
}

// RunSendOTP issues a fresh code for rawPhone and hands it to the sender.
// It returns how many more codes the phone may request today.
//
// A delivery failure still counts against the daily quota.
func RunSendOTP(ctx context.Context, rawPhone string, deps SendOTPDeps) (int, error) {
	deps.Hooks = normalizeHooks(deps.Hooks)
	if deps.IssueCode == nil || deps.SendCode == nil {
		return 0, deps.Errors.EngineNotReady
	}

	start := deps.Now()
	defer func() {
		deps.Observe(deps.Metrics.Latency, deps.Now().Sub(start))
	}()

	phone, err := deps.NormalizePhone(rawPhone)
	if err != nil {
		return 0, err
	}

	code, remaining, err := deps.IssueCode(ctx, phone)
	if err != nil {
		if errors.Is(err, otp.ErrQuotaExceeded) {
			wrapped := deps.Attempt(deps.Errors.QuotaExceeded, 0)
			deps.MetricInc(deps.Metrics.QuotaExceeded)
			deps.EmitAudit(ctx, deps.Events.QuotaExceeded, false, "", phone, wrapped, nil)
			return 0, wrapped
		}
		deps.MetricInc(deps.Metrics.CounterUnavailable)
		deps.Warn("phoneauth: otp issue failed", "error", err)
		return 0, fmt.Errorf("%w: %v", deps.Errors.CounterUnavailable, err)
	}

	err = deps.SendCode(ctx, phone, code)
	code = ""
	if err != nil {
		deps.MetricInc(deps.Metrics.DeliveryFailed)
		deps.Warn("phoneauth: code delivery failed", "error", err)
		return 0, fmt.Errorf("%w: %v", deps.Errors.CodeDeliveryFailed, err)
	}

	deps.MetricInc(deps.Metrics.Sent)
	deps.EmitAudit(ctx, deps.Events.Sent, true, "", phone, nil, func() map[string]string {
		return map[string]string{
			"remaining": fmt.Sprint(remaining),
		}
	})
	return remaining, nil
}
