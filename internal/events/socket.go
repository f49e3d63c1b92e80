package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// EventName is the socket.io event progress is emitted under.
const EventName = "suitegrid:progress"

const (
	connectTimeout = 15 * time.Second
	emitRetries    = 5
)

var errNotConnected = errors.New("socket.io client is not connected")

// SocketSink emits events to a socket.io server.
type SocketSink struct {
	io *socket.Socket
}

// Dial connects to rawURL (scheme://host/path) in namespace and waits for
// the connect event.
func Dial(ctx context.Context, rawURL, namespace string) (*SocketSink, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("events URL %q needs a scheme and host", rawURL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Progress sink connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errNotConnected
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Connecting progress sink...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketSink{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Publish emits ev, retrying with exponential backoff while the client is
// reconnecting.
func (s *SocketSink) Publish(ctx context.Context, ev Event) {
	op := func() error {
		if !s.io.Connected() {
			return errNotConnected
		}
		s.io.Emit(EventName, ev)
		return nil
	}
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), emitRetries)
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		ctxlog.FromContext(ctx).Warn("Dropping progress event.", "path", ev.Path, "state", ev.State, "error", err)
	}
}

// Close disconnects the client.
func (s *SocketSink) Close() error {
	s.io.Disconnect()
	return nil
}
