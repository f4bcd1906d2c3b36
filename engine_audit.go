package phoneAuth

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/MrEthical07/phoneAuth/internal/audit"
)

const (
	auditEventOTPSent              = "otp_sent"
	auditEventOTPQuotaExceeded     = "otp_quota_exceeded"
	auditEventOTPLoginSuccess      = "otp_login_success"
	auditEventOTPLoginFailure      = "otp_login_failure"
	auditEventOTPLocked            = "otp_locked"
	auditEventPasswordLoginSuccess = "password_login_success"
	auditEventPasswordLoginFailure = "password_login_failure"
	auditEventPasswordLoginLocked  = "password_login_locked"
	auditEventPasswordSet          = "password_set"
	auditEventPasswordReset        = "password_reset"
	auditEventAccountCreated       = "account_created"
)

// AuditErrorCode defines a public type used by phoneAuth APIs.
//
// AuditErrorCode values populate AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrQuotaExceeded      AuditErrorCode = "quota_exceeded"
	auditErrWrongCode          AuditErrorCode = "wrong_code"
	auditErrWrongPassword      AuditErrorCode = "wrong_password"
	auditErrLocked             AuditErrorCode = "locked"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrNoPassword         AuditErrorCode = "no_password"
	auditErrInvalidPhone       AuditErrorCode = "invalid_phone"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrDeliveryFailed     AuditErrorCode = "delivery_failed"
	auditErrSessionIssueFailed AuditErrorCode = "session_issue_failed"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	phone string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		RequestID: RequestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if phone != "" {
		event.Phone = internalaudit.MaskPhone(phone)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrQuotaExceeded):
		return auditErrQuotaExceeded
	case errors.Is(err, ErrWrongCode):
		return auditErrWrongCode
	case errors.Is(err, ErrWrongPassword):
		return auditErrWrongPassword
	case errors.Is(err, ErrLocked):
		return auditErrLocked
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrNoPassword):
		return auditErrNoPassword
	case errors.Is(err, ErrInvalidPhone):
		return auditErrInvalidPhone
	case errors.Is(err, ErrCounterUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrCodeDeliveryFailed):
		return auditErrDeliveryFailed
	case errors.Is(err, ErrSessionIssueFailed):
		return auditErrSessionIssueFailed
	default:
		return auditErrInternal
	}
}
