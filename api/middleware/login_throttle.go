package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vora-labs/gogo-admin/api/responses"
	"github.com/vora-labs/gogo-admin/pkg/config"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
)

// maxLoginBody bounds how much of a login body is buffered to find the email.
const maxLoginBody = 16 << 10

type attemptCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginLimits bounds login attempts per client IP and per account email
// within one window. A zero limit turns that dimension off.
type LoginLimits struct {
	Window   time.Duration
	PerIP    int
	PerEmail int
}

// LoginLimitsFromConfig reads the GOGO_AUTH_LOGIN_* settings.
func LoginLimitsFromConfig(cfg config.AuthRateLimitConfig) LoginLimits {
	return LoginLimits{Window: cfg.LoginWindow, PerIP: cfg.LoginIPLimit, PerEmail: cfg.LoginEmailLimit}
}

func (l LoginLimits) active() bool {
	return l.Window > 0 && (l.PerIP > 0 || l.PerEmail > 0)
}

// attempt is one counter a login request is charged against. Emails are
// only ever counted by digest.
type attempt struct {
	dimension string
	value     string
	limit     int
}

func (a attempt) scope() string {
	return "login:" + a.dimension + ":" + a.value
}

// ThrottleLogin answers 429 with Retry-After once a client IP or an account
// email exceeds its attempts for the window. The body is restored for the
// login handler.
func ThrottleLogin(limits LoginLimits, counter attemptCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !limits.active() || counter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var attempts []attempt
			if ip := clientIP(r); limits.PerIP > 0 && ip != "" {
				attempts = append(attempts, attempt{dimension: "ip", value: ip, limit: limits.PerIP})
			}
			if limits.PerEmail > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read login body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if digest := emailDigest(body); digest != "" {
					attempts = append(attempts, attempt{dimension: "email", value: digest, limit: limits.PerEmail})
				}
			}

			for _, a := range attempts {
				ok, hits, err := counter.FixedWindowAllow(ctx, a.scope(), int64(a.limit), limits.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count login attempt"))
					return
				}
				if !ok {
					rejectLogin(ctx, logg, w, limits, a, hits)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectLogin(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, limits LoginLimits, a attempt, hits int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"dimension":      a.dimension,
			"key":            a.value,
			"attempts":       hits,
			"limit":          a.limit,
			"window_seconds": int(limits.Window.Seconds()),
		}), "login throttled")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(limits.Window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
}

// emailDigest returns a hex sha256 of the normalized email in a login body,
// or "" when there is none.
func emailDigest(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
