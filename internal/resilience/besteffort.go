package resilience

import "go.uber.org/zap"

// BestEffort invokes fn and returns its value, or fallback when fn fails.
// The error is logged and swallowed: this is the single containment point
// for external-call failures, so one bad website or malformed AI response
// never aborts an enclosing discovery or qualification loop. Transient
// failures log at warn, everything else at error.
func BestEffort[T any](op string, fallback T, fn func() (T, error)) T {
	v, err := fn()
	if err == nil {
		return v
	}
	if IsTransient(err) {
		zap.L().Warn("best-effort call failed", zap.String("op", op), zap.Error(err))
	} else {
		zap.L().Error("best-effort call failed", zap.String("op", op), zap.Error(err))
	}
	return fallback
}
