package grpc

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type entry struct {
	msg  string
	args []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (l *recordingLogger) record(msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{msg: msg, args: args})
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.record(msg, args) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.record(msg, args) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.record(msg, args) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.record(msg, args) }
func (l *recordingLogger) With(...any) logging.Logger                       { return l }

func (l *recordingLogger) find(msg string) (entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return entry{}, false
}

func argValue(args []any, key string) any {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == key {
			return args[i+1]
		}
	}
	return nil
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	log := &recordingLogger{}
	s := NewGRPCServer("bufnet", log)

	info := &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Method"}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, handlerCalled)
	assert.Equal(t, "ok", resp)

	e, ok := log.find("grpc request")
	require.True(t, ok)
	assert.Equal(t, "/pkg.Service/Method", argValue(e.args, "method"))
	assert.Equal(t, "OK", argValue(e.args, "code"))
}

func TestLoggingInterceptor_RecordsStatusCode(t *testing.T) {
	log := &recordingLogger{}
	s := NewGRPCServer("bufnet", log)

	info := &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Method"}
	h := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	}

	_, err := s.loggingInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.NotFound, status.Code(err))

	e, ok := log.find("grpc request")
	require.True(t, ok)
	assert.Equal(t, "NotFound", argValue(e.args, "code"))
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f fakeStream) Context() context.Context { return f.ctx }

func TestStreamLoggingInterceptor(t *testing.T) {
	log := &recordingLogger{}
	s := NewGRPCServer("bufnet", log)

	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}
	h := func(srv any, ss grpc.ServerStream) error {
		return status.Error(codes.Canceled, "client gone")
	}

	err := s.streamLoggingInterceptor(nil, fakeStream{ctx: context.Background()}, info, h)
	assert.Equal(t, codes.Canceled, status.Code(err))

	e, ok := log.find("grpc stream")
	require.True(t, ok)
	assert.Equal(t, "/grpc.health.v1.Health/Watch", argValue(e.args, "method"))
	assert.Equal(t, "Canceled", argValue(e.args, "code"))
}
