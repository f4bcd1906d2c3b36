package httpapi

import (
	"context"
	"net/http"
	"time"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Auth is the engine surface the handlers call. *phoneAuth.Engine
// implements it.
type Auth interface {
	SendOTP(ctx context.Context, phone string) (*phoneAuth.SendOTPResult, error)
	LoginWithOTP(ctx context.Context, phone, code string) (*phoneAuth.LoginResult, error)
	LoginWithPassword(ctx context.Context, phone, password string) (*phoneAuth.LoginResult, error)
	SetPassword(ctx context.Context, phone, code, password string) (*phoneAuth.LoginResult, error)
	ResetPassword(ctx context.Context, phone, code, newPassword string) error
	ParseToken(token string) (*phoneAuth.Identity, error)
}

// Options configures NewRouter.
type Options struct {
	Logger logrus.FieldLogger

	// RateLimit and RatePeriod bound requests per client IP on the POST
	// routes. A non-positive RateLimit disables the throttle.
	RateLimit  int64
	RatePeriod time.Duration

	// Metrics is mounted on GET /metrics when set.
	Metrics http.Handler

	// Health is called by GET /healthz. Nil always reports ok.
	Health func(ctx context.Context) error
}

// NewRouter builds the gin engine serving auth.
func NewRouter(auth Auth, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	h := &handler{auth: auth}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), gin.Recovery())

	flows := r.Group("/")
	if opts.RateLimit > 0 {
		flows.Use(RateLimit(opts.RateLimit, opts.RatePeriod))
	}
	flows.POST("/verify-phone", h.verifyPhone)
	flows.POST("/login", h.login)
	flows.POST("/password-login", h.passwordLogin)
	flows.POST("/set-password", h.setPassword)
	flows.POST("/reset-password", h.resetPassword)

	r.GET("/me", RequireSession(auth), h.me)

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
