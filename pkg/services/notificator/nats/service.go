// Package nats delivers object notifications to a NATS JetStream
// server.
package nats

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

// Writer publishes object addresses to JetStream subjects. Construct
// it with New and connect with Connect before the first Notify call.
type Writer struct {
	js nats.JetStreamContext
	nc *nats.Conn

	m              sync.RWMutex
	createdStreams map[string]struct{}
	opts
}

type opts struct {
	log   *zap.Logger
	nOpts []nats.Option
}

// Option is an option of the Writer constructor.
type Option func(*opts)

var errConnIsClosed = errors.New("connection to the server is closed")

// Notify publishes the address string to the topic. The stream for the
// topic is created on first use. The address string doubles as the
// JetStream message ID, so re-announcing the same object is
// deduplicated server-side.
//
// Fails when the connection is down or the server did not acknowledge
// the message.
func (n *Writer) Notify(topic string, addr object.Address) error {
	if !n.nc.IsConnected() {
		return errConnIsClosed
	}

	n.m.RLock()
	_, created := n.createdStreams[topic]
	n.m.RUnlock()

	if !created {
		_, err := n.js.AddStream(&nats.StreamConfig{
			Name: topic,
		})
		if err != nil {
			return fmt.Errorf("could not add stream: %w", err)
		}

		n.m.Lock()
		n.createdStreams[topic] = struct{}{}
		n.m.Unlock()
	}

	msg := addr.EncodeToString()

	_, err := n.js.Publish(topic, []byte(msg), nats.MsgId(msg))

	return err
}

// New creates a Writer. It does not connect; call Connect.
func New(oo ...Option) *Writer {
	w := &Writer{
		createdStreams: make(map[string]struct{}),
		opts: opts{
			log:   zap.L(),
			nOpts: make([]nats.Option, 0, len(oo)+3),
		},
	}

	for _, o := range oo {
		o(&w.opts)
	}

	w.opts.nOpts = append(w.opts.nOpts,
		nats.NoCallbacksAfterClientClose(),
		nats.DisconnectErrHandler(func(conn *nats.Conn, err error) {
			w.log.Error("nats: connection was lost", zap.Error(err))
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			w.log.Warn("nats: reconnected to the server")
		}),
	)

	return w
}

// WithLogger returns option to set the Writer logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *opts) {
		o.log = l
	}
}

// Connect dials the NATS endpoint. The connection is closed when ctx
// is done.
func (n *Writer) Connect(ctx context.Context, endpoint string) error {
	nc, err := nats.Connect(endpoint, n.opts.nOpts...)
	if err != nil {
		return fmt.Errorf("could not connect to server: %w", err)
	}

	n.nc = nc

	// JetStream() only fails when options are passed
	n.js, _ = nc.JetStream()

	go func() {
		<-ctx.Done()
		n.opts.log.Info("nats: closing connection as the context is done")

		nc.Close()
	}()

	return nil
}
