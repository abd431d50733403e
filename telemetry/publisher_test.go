package telemetry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/engine"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/middleware"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/pkg/retry"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategyregistry"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu       sync.Mutex
	messages []message
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{subject: subject, data: data})
	return nil
}

func newMiddleware(t *testing.T, p *Publisher) *middleware.Middleware {
	t.Helper()
	registry, err := strategyregistry.NewRegistry()
	require.NoError(t, err)
	return middleware.New(engine.NewContext(3), registry, middleware.WithListener(p))
}

func TestPublisher_PublishesLifecycle(t *testing.T) {
	conn := &fakeConn{}
	mw := newMiddleware(t, NewPublisher(conn, "qa.gen", nil))

	_, ge := mw.Generate(map[string]any{
		"strategy": "wordlist",
		"sources":  []any{map[string]any{"entries": []any{"elm"}}},
	})
	require.Nil(t, ge)
	_, ge = mw.Generate(map[string]any{"strategy": "wordlist"})
	require.NotNil(t, ge)

	require.Len(t, conn.messages, 4)
	subjects := []string{conn.messages[0].subject, conn.messages[1].subject, conn.messages[2].subject, conn.messages[3].subject}
	assert.Equal(t, []string{"qa.gen.started", "qa.gen.completed", "qa.gen.started", "qa.gen.failed"}, subjects)

	var completed Event
	require.NoError(t, json.Unmarshal(conn.messages[1].data, &completed))
	assert.Equal(t, "completed", completed.Event)
	assert.Equal(t, "elm", completed.Result)
	assert.Equal(t, int64(3), completed.Seed)
	assert.Equal(t, []string{"wordlist"}, completed.StreamPath)
	assert.NotEmpty(t, completed.RequestID)

	var failed Event
	require.NoError(t, json.Unmarshal(conn.messages[3].data, &failed))
	assert.Equal(t, "missing_required_keys", failed.Error["code"])
}

func TestPublisher_PublishErrorsDoNotAffectGeneration(t *testing.T) {
	conn := &fakeConn{err: stderrors.New("nats: connection closed")}
	mw := newMiddleware(t, NewPublisher(conn, "", nil))

	out, ge := mw.Generate(map[string]any{
		"strategy": "wordlist",
		"sources":  []any{map[string]any{"entries": []any{"ash"}}},
	})
	require.Nil(t, ge)
	assert.Equal(t, "ash", out)
}

func TestPublisher_DefaultPrefix(t *testing.T) {
	p := NewPublisher(nil, "", nil)
	assert.Equal(t, "rngen.generation.failed", p.Subject("failed"))
	p.OnStarted(nil, middleware.Metadata{})
}

func TestConnect_UnreachableServer(t *testing.T) {
	_, err := Connect(context.Background(), "nats://127.0.0.1:1", retry.Once(), nats.Timeout(200*time.Millisecond))
	require.Error(t, err)
	assert.True(t, errors.IsResource(err))
}
