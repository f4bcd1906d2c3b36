package phoneAuth

import "github.com/MrEthical07/phoneAuth/internal/security"

// SecurityReport summarises the effective security settings of an engine.
type SecurityReport = security.Report

// PasswordConfigReport is the argon2 part of a [SecurityReport].
type PasswordConfigReport = security.PasswordReport

// SecurityReport returns the effective security posture of e.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return security.BuildReport(security.ReportInput{
		ProductionMode:   e.config.Security.ProductionMode,
		SigningAlgorithm: e.config.JWT.SigningMethod,
		AccessTTL:        e.config.JWT.AccessTTL,
		Password: security.PasswordReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		HashUpgradeOnLogin: e.config.Password.UpgradeOnLogin,
		AtomicCounters:     e.AtomicCounters(),
		OTPDailyLimit:      e.config.OTP.DailyLimit,
		OTPCodeTTL:         e.config.OTP.CodeTTL,
		OTPMaxFailures:     e.config.OTP.MaxFailures,
		OTPFailureTTL:      e.config.OTP.FailureTTL,
		LoginMaxFailures:   e.config.Login.MaxFailures,
		LoginFailureTTL:    e.config.Login.FailureTTL,
		AuditEnabled:       e.config.Audit.Enabled,
	})
}
