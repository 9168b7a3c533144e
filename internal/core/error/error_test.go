package errx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyErrorType(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":                     {nil, TypeGeneral},
		"unknown":                 {errors.New("boom"), TypeGeneral},
		"validation":              {Validation("messages must not be empty"), TypeValidation},
		"turn timeout":            {Timeout(context.DeadlineExceeded), TypeTimeout},
		"turn timeout after 429":  {Timeout(fmt.Errorf("chat completion: %w", errors.New("429 Too Many Requests"))), TypeTimeout},
		"wrapped deadline":        {fmt.Errorf("generate: %w", context.DeadlineExceeded), TypeTimeout},
		"dial timeout text":       {errors.New("dial tcp 10.0.0.1:443: i/o timeout"), TypeConnectionTimeout},
		"dial timeout typed":      {&net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "lookup stalled", Name: "api.example.com", IsTimeout: true}}, TypeConnectionTimeout},
		"connection refused":      {&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}, TypeNetwork},
		"connection refused text": {errors.New("Post \"https://api.example.com\": connection refused"), TypeNetwork},
		"unexpected eof":          {fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), TypeNetwork},
		"rate limit status":       {RetryableUpstream(errors.New("Too Many Requests"), 429), TypeRateLimit},
		"quota text":              {errors.New("resource exhausted: quota exceeded"), TypeRateLimit},
		"auth status":             {FatalUpstream(errors.New("forbidden"), 403), TypeAPIConfig},
		"auth text":               {errors.New("Error 401: Unauthorized"), TypeAPIConfig},
		"retries exhausted 503":   {RetryableUpstream(errors.New("upstream status 503: service unavailable"), 503), TypeGeneral},
		"incidental digits":       {errors.New("order 14013 failed validation at row 4290"), TypeGeneral},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyErrorType(tc.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "messages must not be empty", UserMessage(Validation("messages must not be empty")))
	assert.Equal(t, BusyMessage, UserMessage(RetryableUpstream(errors.New("upstream status 503"), 503)))
	assert.Equal(t, TimeoutMessage, UserMessage(errors.New("dial tcp 10.0.0.1:443: i/o timeout")))
	assert.Equal(t, BusyMessage, UserMessage(errors.New("429 Too Many Requests")))
	assert.Equal(t, UnavailableMessage, UserMessage(errors.New("boom")))
	assert.Equal(t, UnavailableMessage, UserMessage(Logging(errors.New("redis down"), "turn log append")))
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("turn: %w", FatalUpstream(errors.New("request too large"), 413))
	assert.Equal(t, KindFatalUpstream, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.True(t, IsValidation(fmt.Errorf("decode: %w", Validation("bad"))))
}
