package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/MrEthical07/phoneAuth/counter"
	"github.com/MrEthical07/phoneAuth/internal/config"
	"github.com/MrEthical07/phoneAuth/notify"
	"github.com/MrEthical07/phoneAuth/userstore"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type loadtestOptions struct {
	attempts    int
	concurrency int
	redisAddr   string
	phone       string
	argonMemory uint32
}

func newLoadtestCmd() *cobra.Command {
	opts := loadtestOptions{}
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "fire concurrent wrong passwords at one phone and report how many were evaluated per lockout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.attempts <= 0 || opts.concurrency <= 0 {
				return errors.New("attempts and concurrency must be > 0")
			}
			if opts.redisAddr == "" {
				opts.redisAddr = os.Getenv("REDIS_ADDR")
			}
			results, err := runLoadtest(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "---- results ----")
			for _, r := range results {
				printResult(out, r)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.attempts, "attempts", 200, "wrong-password attempts per mode")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 64, "number of concurrent workers")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	cmd.Flags().StringVar(&opts.phone, "phone", "8613800000000", "target phone")
	cmd.Flags().Uint32Var(&opts.argonMemory, "argon-memory", 8*1024, "argon2 memory in KiB for the test engine")
	return cmd
}

type loadtestResult struct {
	mode      string
	evaluated int64
	locked    int64
	failures  int64
	maxFails  int
	stats     phaseStats
}

func runLoadtest(ctx context.Context, opts loadtestOptions) ([]loadtestResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	client, cleanup, err := openRedis(ctx, &config.Config{RedisAddr: opts.redisAddr}, true, quiet)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	base := counter.NewRedisStore(client, "")
	modes := []struct {
		name  string
		store counter.Store
	}{
		{"atomic", base},
		{"non-atomic", counter.NonAtomic(base)},
	}

	results := make([]loadtestResult, 0, len(modes))
	for i, m := range modes {
		prefix := fmt.Sprintf("loadtest:%d:%d:", time.Now().UnixNano(), i)
		r, err := runMode(ctx, m.name, m.store, prefix, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.name, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func runMode(ctx context.Context, mode string, store counter.Store, prefix string, opts loadtestOptions) (loadtestResult, error) {
	cfg := phoneAuth.DefaultConfig()
	cfg.KeyPrefix = prefix
	cfg.JWT.PrivateKey = []byte("loadtest-secret-loadtest-secret-0")
	cfg.Password.Memory = opts.argonMemory
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	var (
		mu   sync.Mutex
		last string
	)
	sender := notify.Func(func(_ context.Context, _, code string) error {
		mu.Lock()
		last = code
		mu.Unlock()
		return nil
	})

	engine, err := phoneAuth.New().
		WithConfig(cfg).
		WithCounterStore(store).
		WithUserProvider(userstore.NewMemory()).
		WithCodeSender(sender).
		Build()
	if err != nil {
		return loadtestResult{}, err
	}
	defer engine.Close()

	if _, err := engine.SendOTP(ctx, opts.phone); err != nil {
		return loadtestResult{}, fmt.Errorf("seed code: %w", err)
	}
	mu.Lock()
	code := last
	mu.Unlock()
	if _, err := engine.SetPassword(ctx, opts.phone, code, "right123"); err != nil {
		return loadtestResult{}, fmt.Errorf("seed password: %w", err)
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		evaluated int64
		locked    int64
		failures  int64
		latencies = make([]time.Duration, 0, opts.attempts)
		latMu     sync.Mutex
	)

	start := time.Now()
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if atomic.AddInt64(&cursor, 1) > int64(opts.attempts) {
					return
				}
				t0 := time.Now()
				_, err := engine.LoginWithPassword(ctx, opts.phone, "wrong123")
				d := time.Since(t0)
				switch {
				case errors.Is(err, phoneAuth.ErrLocked):
					atomic.AddInt64(&locked, 1)
				case errors.Is(err, phoneAuth.ErrWrongPassword):
					atomic.AddInt64(&evaluated, 1)
				default:
					atomic.AddInt64(&failures, 1)
				}
				latMu.Lock()
				latencies = append(latencies, d)
				latMu.Unlock()
			}
		}()
	}
	wg.Wait()

	return loadtestResult{
		mode:      mode,
		evaluated: evaluated,
		locked:    locked,
		failures:  failures,
		maxFails:  cfg.Login.MaxFailures,
		stats:     computeStats(time.Since(start), latencies, failures),
	}, nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printResult(w io.Writer, r loadtestResult) {
	perLock := float64(r.evaluated)
	if r.locked > 0 {
		perLock = float64(r.evaluated) / float64(r.locked)
	}
	fmt.Fprintf(w, "%s: evaluated=%d locked=%d per_lock=%.2f (sequential %d) errors=%d ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		r.mode,
		r.evaluated,
		r.locked,
		perLock,
		r.maxFails-1,
		r.failures,
		r.stats.opsPerS,
		r.stats.p50.Round(time.Microsecond),
		r.stats.p95.Round(time.Microsecond),
		r.stats.p99.Round(time.Microsecond),
	)
}
