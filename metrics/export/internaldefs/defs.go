package internaldefs

import (
	phoneAuth "github.com/MrEthical07/phoneAuth"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   phoneAuth.MetricID
	Name string
	Help string
}

// HistogramDef names one flow latency histogram.
type HistogramDef struct {
	ID   phoneAuth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter fed by Engine.AuditDropped.
const AuditDroppedName = "phoneauth_audit_dropped_total"

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: phoneAuth.MetricOTPSent, Name: "phoneauth_otp_sent_total", Help: "Codes issued and delivered."},
	{ID: phoneAuth.MetricOTPQuotaExceeded, Name: "phoneauth_otp_quota_exceeded_total", Help: "Code requests rejected by the daily quota."},
	{ID: phoneAuth.MetricOTPDeliveryFailed, Name: "phoneauth_otp_delivery_failed_total", Help: "Codes the sender failed to deliver."},
	{ID: phoneAuth.MetricOTPLoginSuccess, Name: "phoneauth_otp_login_success_total", Help: "Successful code logins."},
	{ID: phoneAuth.MetricOTPLoginFailure, Name: "phoneauth_otp_login_failure_total", Help: "Wrong or expired codes."},
	{ID: phoneAuth.MetricOTPLocked, Name: "phoneauth_otp_locked_total", Help: "Code attempts rejected by the failure guard."},
	{ID: phoneAuth.MetricPasswordLoginSuccess, Name: "phoneauth_password_login_success_total", Help: "Successful password logins."},
	{ID: phoneAuth.MetricPasswordLoginFailure, Name: "phoneauth_password_login_failure_total", Help: "Failed password logins, unknown phones included."},
	{ID: phoneAuth.MetricPasswordLoginLocked, Name: "phoneauth_password_login_locked_total", Help: "Password logins rejected by the failure guard."},
	{ID: phoneAuth.MetricPasswordLoginNoPassword, Name: "phoneauth_password_login_no_password_total", Help: "Password logins for accounts without a password."},
	{ID: phoneAuth.MetricPasswordSet, Name: "phoneauth_password_set_total", Help: "Passwords set with a code."},
	{ID: phoneAuth.MetricPasswordReset, Name: "phoneauth_password_reset_total", Help: "Passwords reset with a code."},
	{ID: phoneAuth.MetricPasswordPolicyRejected, Name: "phoneauth_password_policy_rejected_total", Help: "Passwords rejected by the length policy."},
	{ID: phoneAuth.MetricPasswordHashUpgraded, Name: "phoneauth_password_hash_upgraded_total", Help: "Stored hashes rehashed on login."},
	{ID: phoneAuth.MetricAccountCreated, Name: "phoneauth_account_created_total", Help: "Accounts created on first proof of phone ownership."},
	{ID: phoneAuth.MetricSessionIssued, Name: "phoneauth_session_issued_total", Help: "Session tokens issued."},
	{ID: phoneAuth.MetricCounterUnavailable, Name: "phoneauth_counter_unavailable_total", Help: "Operations refused because the counter store failed."},
}

// HistogramDefs lists the flow latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: phoneAuth.MetricSendOTPLatency, Name: "phoneauth_send_otp_latency_seconds", Help: "SendOTP latency histogram."},
	{ID: phoneAuth.MetricLoginOTPLatency, Name: "phoneauth_login_otp_latency_seconds", Help: "LoginWithOTP latency histogram."},
	{ID: phoneAuth.MetricLoginPasswordLatency, Name: "phoneauth_login_password_latency_seconds", Help: "LoginWithPassword latency histogram."},
}

// HistogramBounds are the upper bounds of the eight engine buckets, in
// seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds as instrument name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array. Missing
// buckets are zero.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
