package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

// RateLimiter лимит запросов с фиксированным окном в Redis, общий для всех инстансов
type RateLimiter struct {
	rdb      redis.Scripter
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
	metrics  RateLimitMetrics
	logger   Logger

	// trusted прокси, которым разрешено передавать X-Forwarded-For
	trusted []netip.Prefix
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string, failOpen bool, metrics RateLimitMetrics, logger Logger) *RateLimiter {
	if limit <= 0 {
		limit = 20
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RateLimiter{
		rdb:      rdb,
		limit:    limit,
		window:   window,
		prefix:   prefix,
		failOpen: failOpen,
		metrics:  metrics,
		logger:   logger,
	}
}

// Middleware ограничивает запросы по IP клиента
// При ошибке Redis запрос пропускается, если включен failOpen, иначе 503.
// TrustProxies задает CIDR прокси, от которых принимается X-Forwarded-For
func (rl *RateLimiter) TrustProxies(cidrs []string) error {
	trusted := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
		if err != nil {
			return fmt.Errorf("rate limiter: invalid trusted proxy %q: %w", cidr, err)
		}
		trusted = append(trusted, prefix.Masked())
	}
	rl.trusted = trusted
	return nil
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.prefix + ":" + rl.clientKey(r)
			count, err := rl.incr(r.Context(), key)
			if err != nil {
				rl.logger.Warn("rate limiter: redis error: %v", err)
				if rl.failOpen {
					next.ServeHTTP(w, r)
					return
				}
				handlers.RespondError(w, http.StatusServiceUnavailable, "сервис временно недоступен")
				return
			}
			if count > int64(rl.limit) {
				if rl.metrics != nil {
					rl.metrics.IncRateLimited()
				}
				rl.logger.Warn("rate limiter: limit exceeded for %s", key)
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
				handlers.RespondTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}

// clientKey адрес клиента: RemoteAddr без порта.
// X-Forwarded-For учитывается только от доверенного прокси, берется
// самый правый адрес цепочки, не принадлежащий доверенным прокси.
func (rl *RateLimiter) clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if !rl.isTrusted(host) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			break
		}
		if !rl.isTrusted(hop) {
			return hop
		}
	}
	return host
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	if len(rl.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range rl.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
