package middleware

import (
	"net/http"
	"time"
)

type Middleware func(http.Handler) http.Handler

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// HTTPMetrics учет запросов
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
}

// RateLimitMetrics учет отклоненных запросов
type RateLimitMetrics interface {
	IncRateLimited()
}

// Chain применяет middleware так, что Chain(h, a, b) == a(b(h))
func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}
