package phoneAuth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/phoneAuth/counter"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testPhone = "8613800000000"

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

type memProvider struct {
	mu      sync.Mutex
	byPhone map[string]UserRecord
	nextID  int
}

func newMemProvider() *memProvider {
	return &memProvider{byPhone: map[string]UserRecord{}}
}

func (p *memProvider) FindByPhone(_ context.Context, phone string) (UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.byPhone[phone]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return rec, nil
}

func (p *memProvider) CreateWithPhone(_ context.Context, phone string) (UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rec, ok := p.byPhone[phone]; ok {
		return rec, nil
	}
	p.nextID++
	rec := UserRecord{UserID: fmt.Sprintf("user-%d", p.nextID), Phone: phone}
	p.byPhone[phone] = rec
	return rec, nil
}

func (p *memProvider) SetPasswordHash(_ context.Context, userID, hash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for phone, rec := range p.byPhone {
		if rec.UserID == userID {
			rec.PasswordHash = hash
			p.byPhone[phone] = rec
			return nil
		}
	}
	return ErrUserNotFound
}

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
	fail  error
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: map[string]string{}}
}

func (s *captureSender) SendCode(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent++
	s.codes[phone] = code
	return nil
}

func (s *captureSender) last(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

type testEngine struct {
	*Engine
	mr     *miniredis.Miniredis
	users  *memProvider
	sender *captureSender
}

func newTestEngine(t *testing.T, mutate func(*Config)) *testEngine {
	t.Helper()

	cfg := validTestConfig()
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	mr, rdb := newTestRedis(t)
	users := newMemProvider()
	sender := newCaptureSender()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(users).
		WithCodeSender(sender).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEngine{Engine: engine, mr: mr, users: users, sender: sender}
}

func (te *testEngine) sendCode(t *testing.T, phone string) string {
	t.Helper()
	if _, err := te.SendOTP(context.Background(), phone); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	return te.sender.last(phone)
}

func (te *testEngine) setPassword(t *testing.T, phone, pw string) {
	t.Helper()
	code := te.sendCode(t, phone)
	if _, err := te.SetPassword(context.Background(), phone, code, pw); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
}

func expectRemaining(t *testing.T, err error, want int) {
	t.Helper()
	got, ok := RemainingAttempts(err)
	if !ok {
		t.Fatalf("expected remaining attempts in %v", err)
	}
	if got != want {
		t.Fatalf("expected remaining %d, got %d", want, got)
	}
}

func TestSendOTPDailyQuota(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	for want := 4; want >= 0; want-- {
		res, err := te.SendOTP(ctx, testPhone)
		if err != nil {
			t.Fatalf("send %d failed: %v", 5-want, err)
		}
		if res.Remaining != want {
			t.Fatalf("expected remaining %d, got %d", want, res.Remaining)
		}
	}

	_, err := te.SendOTP(ctx, testPhone)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if te.sender.sent != 5 {
		t.Fatalf("expected 5 deliveries, got %d", te.sender.sent)
	}
	if got := te.MetricsSnapshot().Counters[MetricOTPQuotaExceeded]; got != 1 {
		t.Fatalf("expected quota metric 1, got %d", got)
	}
}

func TestSendOTPQuotaFollowsConfiguredDay(t *testing.T) {
	// 23:30 in UTC+8.
	now := time.Date(2026, 5, 1, 15, 30, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	_, rdb := newTestRedis(t)
	cfg := validTestConfig()
	cfg.OTP.DailyLimit = 1
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(newMemProvider()).
		WithCodeSender(newCaptureSender()).
		WithClock(clock).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if _, err := engine.SendOTP(ctx, testPhone); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if _, err := engine.SendOTP(ctx, testPhone); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	if n := rdb.Exists(ctx, "otp-sends:"+testPhone+":20260501").Val(); n != 1 {
		t.Fatal("expected quota key for 2026-05-01 in UTC+8")
	}

	mu.Lock()
	now = now.Add(time.Hour) // 00:30 the next day in UTC+8
	mu.Unlock()
	if _, err := engine.SendOTP(ctx, testPhone); err != nil {
		t.Fatalf("expected fresh quota on the next day, got %v", err)
	}
}

func TestSendOTPDeliveryFailureConsumesQuota(t *testing.T) {
	te := newTestEngine(t, func(c *Config) { c.OTP.DailyLimit = 2 })
	te.sender.fail = errors.New("gateway timeout")

	if _, err := te.SendOTP(context.Background(), testPhone); !errors.Is(err, ErrCodeDeliveryFailed) {
		t.Fatalf("expected ErrCodeDeliveryFailed, got %v", err)
	}
	te.sender.fail = nil
	res, err := te.SendOTP(context.Background(), testPhone)
	if err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	if res.Remaining != 0 {
		t.Fatalf("expected failed delivery to count against quota, remaining %d", res.Remaining)
	}
}

func TestSendOTPInvalidPhone(t *testing.T) {
	te := newTestEngine(t, nil)
	for _, raw := range []string{"", "12345", "86-138-abc", "1234567890123456"} {
		if _, err := te.SendOTP(context.Background(), raw); !errors.Is(err, ErrInvalidPhone) {
			t.Fatalf("%q: expected ErrInvalidPhone, got %v", raw, err)
		}
	}
	if len(te.mr.Keys()) != 0 {
		t.Fatalf("invalid phones must not touch the store, keys=%v", te.mr.Keys())
	}
}

func TestLoginWithOTPCreatesAccountAndIssuesToken(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := te.SendOTP(ctx, "+86 138-0000-0000"); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	code := te.sender.last(testPhone)
	res, err := te.LoginWithOTP(ctx, testPhone, code)
	if err != nil {
		t.Fatalf("LoginWithOTP failed: %v", err)
	}
	if res.User.Phone != testPhone || res.User.HasPassword {
		t.Fatalf("unexpected user %+v", res.User)
	}

	id, err := te.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if id.UserID != res.User.ID || id.Phone != testPhone {
		t.Fatalf("unexpected identity %+v", id)
	}

	if _, err := te.LoginWithOTP(ctx, testPhone, code); !errors.Is(err, ErrWrongCode) {
		t.Fatalf("expected a used code to be rejected, got %v", err)
	}

	code = te.sendCode(t, testPhone)
	again, err := te.LoginWithOTP(ctx, testPhone, code)
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if again.User.ID != res.User.ID {
		t.Fatalf("expected the same account, got %q and %q", res.User.ID, again.User.ID)
	}
}

func TestLoginWithOTPLocksOnFifthFailure(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()
	code := te.sendCode(t, testPhone)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for want := 4; want >= 1; want-- {
		_, err := te.LoginWithOTP(ctx, testPhone, wrong)
		if !errors.Is(err, ErrWrongCode) {
			t.Fatalf("expected ErrWrongCode, got %v", err)
		}
		expectRemaining(t, err, want)
	}

	_, err := te.LoginWithOTP(ctx, testPhone, wrong)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if te.mr.Exists("otp:"+testPhone) || te.mr.Exists("otp-fail:"+testPhone) {
		t.Fatal("expected code and failure counter purged on lock")
	}
	if _, err := te.LoginWithOTP(ctx, testPhone, code); !errors.Is(err, ErrWrongCode) {
		t.Fatalf("expected purged code to be rejected, got %v", err)
	}
}

func TestOTPFailuresSharedAcrossFlows(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()
	code := te.sendCode(t, testPhone)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	if _, err := te.LoginWithOTP(ctx, testPhone, wrong); err == nil {
		t.Fatal("expected failure")
	}
	_, err := te.SetPassword(ctx, testPhone, wrong, "abc123")
	expectRemaining(t, err, 3)
	err = te.ResetPassword(ctx, testPhone, wrong, "abc123")
	expectRemaining(t, err, 2)
}

func TestOTPCodeExpires(t *testing.T) {
	te := newTestEngine(t, nil)
	code := te.sendCode(t, testPhone)

	te.mr.FastForward(301 * time.Second)
	if _, err := te.LoginWithOTP(context.Background(), testPhone, code); !errors.Is(err, ErrWrongCode) {
		t.Fatalf("expected expired code to be rejected, got %v", err)
	}
}

func TestSetPasswordPolicyLeavesCountersUntouched(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()
	code := te.sendCode(t, testPhone)

	for _, pw := range []string{"abc", "abcdefghijklm", "abc 123", "abc$123"} {
		_, err := te.SetPassword(ctx, testPhone, code, pw)
		if !errors.Is(err, ErrPasswordPolicy) {
			t.Fatalf("%q: expected ErrPasswordPolicy, got %v", pw, err)
		}
	}
	if te.mr.Exists("otp-fail:" + testPhone) {
		t.Fatal("policy rejections must not count code failures")
	}

	res, err := te.SetPassword(ctx, testPhone, code, "abc123")
	if err != nil {
		t.Fatalf("expected code to survive policy rejections, got %v", err)
	}
	if !res.User.HasPassword || res.Token == "" {
		t.Fatalf("expected logged in user with password, got %+v", res)
	}
}

func TestResetPasswordPolicyRejectionKeepsCode(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()
	te.setPassword(t, testPhone, "abc123")

	code := te.sendCode(t, testPhone)
	if err := te.ResetPassword(ctx, testPhone, code, "x"); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
	if !te.mr.Exists("otp:"+testPhone) || te.mr.Exists("otp-fail:"+testPhone) {
		t.Fatal("expected policy rejection to leave the code live and uncounted")
	}
	if err := te.ResetPassword(ctx, testPhone, code, "xyz789"); err != nil {
		t.Fatalf("expected the same code to work after a policy rejection, got %v", err)
	}
}

func TestLoginWithPasswordRoundTrip(t *testing.T) {
	te := newTestEngine(t, nil)
	te.setPassword(t, testPhone, "abc123")

	res, err := te.LoginWithPassword(context.Background(), "+86 138 0000 0000", "abc123")
	if err != nil {
		t.Fatalf("LoginWithPassword failed: %v", err)
	}
	if res.User.Phone != testPhone {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if got := te.MetricsSnapshot().Counters[MetricPasswordLoginSuccess]; got != 1 {
		t.Fatalf("expected success metric 1, got %d", got)
	}
}

func TestLoginWithPasswordUnknownPhoneIsIndistinguishable(t *testing.T) {
	te := newTestEngine(t, nil)
	te.setPassword(t, testPhone, "abc123")
	ctx := context.Background()

	_, known := te.LoginWithPassword(ctx, testPhone, "wrong1")
	_, unknown := te.LoginWithPassword(ctx, "8613900000000", "wrong1")

	if known == nil || unknown == nil {
		t.Fatal("expected both logins to fail")
	}
	if known.Error() != unknown.Error() {
		t.Fatalf("expected identical errors, got %q and %q", known, unknown)
	}
	if !errors.Is(unknown, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", unknown)
	}
	expectRemaining(t, known, 4)
	expectRemaining(t, unknown, 4)
	if !te.mr.Exists("pwd-fail:8613900000000") {
		t.Fatal("expected failure recorded for unknown phone")
	}
}

func TestLoginWithPasswordLockoutAndWindow(t *testing.T) {
	te := newTestEngine(t, nil)
	te.setPassword(t, testPhone, "abc123")
	ctx := context.Background()

	for want := 4; want >= 1; want-- {
		_, err := te.LoginWithPassword(ctx, testPhone, "nope99")
		expectRemaining(t, err, want)
	}
	if _, err := te.LoginWithPassword(ctx, testPhone, "nope99"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if te.mr.Exists("pwd-fail:" + testPhone) {
		t.Fatal("expected failure counter purged on lock")
	}

	// Failures expire with the sliding window.
	if _, err := te.LoginWithPassword(ctx, testPhone, "nope99"); err == nil {
		t.Fatal("expected failure")
	}
	te.mr.FastForward(5*time.Minute + time.Second)
	_, err := te.LoginWithPassword(ctx, testPhone, "nope99")
	expectRemaining(t, err, 4)
}

func TestLoginWithPasswordSuccessClearsFailures(t *testing.T) {
	te := newTestEngine(t, nil)
	te.setPassword(t, testPhone, "abc123")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = te.LoginWithPassword(ctx, testPhone, "nope99")
	}
	if _, err := te.LoginWithPassword(ctx, testPhone, "abc123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if te.mr.Exists("pwd-fail:" + testPhone) {
		t.Fatal("expected failure counter cleared on success")
	}
}

func TestLoginWithPasswordNoPassword(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()
	code := te.sendCode(t, testPhone)
	if _, err := te.LoginWithOTP(ctx, testPhone, code); err != nil {
		t.Fatalf("LoginWithOTP failed: %v", err)
	}

	if _, err := te.LoginWithPassword(ctx, testPhone, "abc123"); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("expected ErrNoPassword, got %v", err)
	}
	if te.mr.Exists("pwd-fail:" + testPhone) {
		t.Fatal("no failure may be recorded for an account without password")
	}
}

func TestLoginWithPasswordUpgradesWeakHash(t *testing.T) {
	te := newTestEngine(t, nil)
	te.setPassword(t, testPhone, "abc123")
	before := te.users.byPhone[testPhone].PasswordHash

	cfg := te.config
	cfg.Password.Time = 2
	_, rdb := newTestRedis(t)
	stronger, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(te.users).
		WithCodeSender(te.sender).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer stronger.Close()

	if _, err := stronger.LoginWithPassword(context.Background(), testPhone, "abc123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	after := te.users.byPhone[testPhone].PasswordHash
	if after == before {
		t.Fatal("expected hash to be upgraded")
	}
	if ok, err := stronger.passwordHash.NeedsUpgrade(after); err != nil || ok {
		t.Fatalf("expected upgraded hash to be current, ok=%v err=%v", ok, err)
	}
}

func TestResetPassword(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	code := te.sendCode(t, testPhone)
	if err := te.ResetPassword(ctx, testPhone, code, "abc123"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	te.setPassword(t, testPhone, "old123")
	code = te.sendCode(t, testPhone)
	if err := te.ResetPassword(ctx, testPhone, code, "new123"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if _, err := te.LoginWithPassword(ctx, testPhone, "old123"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := te.LoginWithPassword(ctx, testPhone, "new123"); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}
}

func TestResetPasswordUnknownAccountNeedsValidCode(t *testing.T) {
	te := newTestEngine(t, nil)

	err := te.ResetPassword(context.Background(), testPhone, "123456", "abc123")
	if !errors.Is(err, ErrWrongCode) {
		t.Fatalf("expected ErrWrongCode before any account lookup, got %v", err)
	}
}

type downStore struct{}

func (downStore) Get(context.Context, string) (string, error) { return "", counter.ErrUnavailable }
func (downStore) SetWithTTL(context.Context, string, string, time.Duration) error {
	return counter.ErrUnavailable
}
func (downStore) Delete(context.Context, ...string) error { return counter.ErrUnavailable }
func (downStore) IncrWithTTL(context.Context, string, time.Duration) (int64, error) {
	return 0, counter.ErrUnavailable
}

func TestCounterOutageFailsClosed(t *testing.T) {
	users := newMemProvider()
	sender := newCaptureSender()
	engine, err := New().
		WithConfig(validTestConfig()).
		WithCounterStore(downStore{}).
		WithUserProvider(users).
		WithCodeSender(sender).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()
	ctx := context.Background()

	if _, err := engine.SendOTP(ctx, testPhone); !errors.Is(err, ErrCounterUnavailable) {
		t.Fatalf("SendOTP: expected ErrCounterUnavailable, got %v", err)
	}
	if sender.sent != 0 {
		t.Fatal("no code may be sent during an outage")
	}
	if _, err := engine.LoginWithOTP(ctx, testPhone, "123456"); !errors.Is(err, ErrCounterUnavailable) {
		t.Fatalf("LoginWithOTP: expected ErrCounterUnavailable, got %v", err)
	}
	if _, err := engine.SetPassword(ctx, testPhone, "123456", "abc123"); !errors.Is(err, ErrCounterUnavailable) {
		t.Fatalf("SetPassword: expected ErrCounterUnavailable, got %v", err)
	}
	if err := engine.ResetPassword(ctx, testPhone, "123456", "abc123"); !errors.Is(err, ErrCounterUnavailable) {
		t.Fatalf("ResetPassword: expected ErrCounterUnavailable, got %v", err)
	}

	hash, err := engine.passwordHash.Hash("abc123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users.byPhone[testPhone] = UserRecord{UserID: "user-9", Phone: testPhone, PasswordHash: hash}

	if _, err := engine.LoginWithPassword(ctx, testPhone, "wrong1"); !errors.Is(err, ErrCounterUnavailable) {
		t.Fatalf("wrong password: expected ErrCounterUnavailable, got %v", err)
	}
	// The post-success clear is the only step allowed to fail open.
	if _, err := engine.LoginWithPassword(ctx, testPhone, "abc123"); err != nil {
		t.Fatalf("correct password: expected login despite outage, got %v", err)
	}
}

func TestNonAtomicStoreStillLocks(t *testing.T) {
	store := counter.NonAtomic(counter.NewMemoryStore(nil))
	users := newMemProvider()
	engine, err := New().
		WithConfig(validTestConfig()).
		WithCounterStore(store).
		WithUserProvider(users).
		WithCodeSender(newCaptureSender()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()
	if engine.AtomicCounters() {
		t.Fatal("expected non-atomic store")
	}

	hash, _ := engine.passwordHash.Hash("abc123")
	users.byPhone[testPhone] = UserRecord{UserID: "user-1", Phone: testPhone, PasswordHash: hash}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.LoginWithPassword(ctx, testPhone, "nope99")
		}()
	}
	wg.Wait()

	// Lost updates can only delay the lock, so sequential failures from any
	// leftover count reach the limit within five attempts.
	locked := false
	for i := 0; i < 5 && !locked; i++ {
		_, err := engine.LoginWithPassword(ctx, testPhone, "nope99")
		locked = errors.Is(err, ErrLocked)
	}
	if !locked {
		t.Fatal("expected lockout within five sequential failures")
	}
}

func TestBuildValidation(t *testing.T) {
	_, rdb := newTestRedis(t)

	if _, err := New().WithConfig(validTestConfig()).WithUserProvider(newMemProvider()).WithCodeSender(newCaptureSender()).Build(); err == nil {
		t.Fatal("expected error without a counter store")
	}
	if _, err := New().WithConfig(validTestConfig()).WithRedis(rdb).WithCodeSender(newCaptureSender()).Build(); err == nil {
		t.Fatal("expected error without a user provider")
	}
	if _, err := New().WithConfig(validTestConfig()).WithRedis(rdb).WithUserProvider(newMemProvider()).Build(); err == nil {
		t.Fatal("expected error without a code sender")
	}

	cfg := validTestConfig()
	cfg.Security.RequireAtomicCounters = true
	_, err := New().
		WithConfig(cfg).
		WithCounterStore(counter.NonAtomic(counter.NewMemoryStore(nil))).
		WithUserProvider(newMemProvider()).
		WithCodeSender(newCaptureSender()).
		Build()
	if err == nil {
		t.Fatal("expected non-atomic store to be rejected")
	}
	_, err = New().
		WithConfig(cfg).
		WithCounterStore(downStore{}).
		WithUserProvider(newMemProvider()).
		WithCodeSender(newCaptureSender()).
		Build()
	if err == nil {
		t.Fatal("expected store without compare-and-delete to be rejected")
	}

	b := New().WithConfig(validTestConfig()).WithRedis(rdb).WithUserProvider(newMemProvider()).WithCodeSender(newCaptureSender())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestKeyPrefixNamespacesKeys(t *testing.T) {
	te := newTestEngine(t, func(c *Config) { c.KeyPrefix = "pa:" })
	te.sendCode(t, testPhone)

	if !te.mr.Exists("pa:otp:" + testPhone) {
		t.Fatalf("expected prefixed code key, keys=%v", te.mr.Keys())
	}
	if te.mr.Exists("otp:" + testPhone) {
		t.Fatal("unprefixed key must not be written")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	te := newTestEngine(t, nil)
	if _, err := te.ParseToken("not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	var nilEngine *Engine
	if _, err := nilEngine.ParseToken("x"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}

type staticSigner struct{}

func (staticSigner) Sign(subject, phone string) (string, error) {
	return "static:" + subject, nil
}

func TestCustomSignerWithoutParser(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, err := New().
		WithConfig(validTestConfig()).
		WithRedis(rdb).
		WithUserProvider(newMemProvider()).
		WithCodeSender(newCaptureSender()).
		WithSigner(staticSigner{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.ParseToken("static:user-1"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady without a parser, got %v", err)
	}
}

func TestSecurityReportReflectsEngine(t *testing.T) {
	te := newTestEngine(t, nil)
	r := te.SecurityReport()
	if !r.AtomicCounters || !r.OTPLockoutActive || !r.LoginLockoutActive {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.SigningAlgorithm != "hs256" || r.OTPDailyLimit != 5 {
		t.Fatalf("unexpected report %+v", r)
	}
}
