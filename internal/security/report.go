package security

import "time"

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

type Report struct {
	ProductionMode     bool
	SigningAlgorithm   string
	AccessTTL          time.Duration
	Argon2             PasswordReport
	HashUpgradeOnLogin bool
	AtomicCounters     bool
	OTPDailyLimit      int
	OTPCodeTTL         time.Duration
	OTPLockoutActive   bool
	LoginLockoutActive bool
	AuditEnabled       bool
}

type ReportInput struct {
	ProductionMode     bool
	SigningAlgorithm   string
	AccessTTL          time.Duration
	Password           PasswordReport
	HashUpgradeOnLogin bool
	AtomicCounters     bool
	OTPDailyLimit      int
	OTPCodeTTL         time.Duration
	OTPMaxFailures     int
	OTPFailureTTL      time.Duration
	LoginMaxFailures   int
	LoginFailureTTL    time.Duration
	AuditEnabled       bool
}

func BuildReport(input ReportInput) Report {
	return Report{
		ProductionMode:     input.ProductionMode,
		SigningAlgorithm:   input.SigningAlgorithm,
		AccessTTL:          input.AccessTTL,
		Argon2:             input.Password,
		HashUpgradeOnLogin: input.HashUpgradeOnLogin,
		AtomicCounters:     input.AtomicCounters,
		OTPDailyLimit:      input.OTPDailyLimit,
		OTPCodeTTL:         input.OTPCodeTTL,
		OTPLockoutActive:   input.OTPMaxFailures > 0 && input.OTPFailureTTL > 0,
		LoginLockoutActive: input.LoginMaxFailures > 0 && input.LoginFailureTTL > 0,
		AuditEnabled:       input.AuditEnabled,
	}
}
