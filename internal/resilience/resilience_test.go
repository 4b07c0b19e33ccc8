package resilience

import (
	"context"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestBestEffortReturnsValue(t *testing.T) {
	got := BestEffort("op", -1, func() (int, error) { return 42, nil })
	assert.Equal(t, 42, got)
}

func TestBestEffortSwallowsError(t *testing.T) {
	got := BestEffort("op", "fallback", func() (string, error) {
		return "partial", eris.New("boom")
	})
	assert.Equal(t, "fallback", got, "fallback replaces the value on error")
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(eris.New("invalid configuration")))

	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(eris.Wrap(syscall.ECONNREFUSED, "dial")))
	assert.True(t, IsTransient(&net.DNSError{Err: "timeout", IsTimeout: true}))
	assert.True(t, IsTransient(eris.New("lookup example.com: no such host")))
	assert.True(t, IsTransient(context.DeadlineExceeded))

	deadline := &net.OpError{Op: "read", Err: &timeoutErr{}}
	assert.True(t, IsTransient(deadline))
}

type timeoutErr struct{}

func (*timeoutErr) Error() string   { return "i/o timeout" }
func (*timeoutErr) Timeout() bool   { return true }
func (*timeoutErr) Temporary() bool { return true }
