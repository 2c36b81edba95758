// Package natsadapter answers conversion requests over NATS request/reply.
package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/dms-converter-service/internal/domain"
	"github.com/couchcryptid/dms-converter-service/internal/service"
	"github.com/nats-io/nats.go"
)

// Responder serves a queue subscription, replying to each request with the
// JSON ConversionResult.
type Responder struct {
	conn      *nats.Conn
	sub       *nats.Subscription
	converter *service.Converter
	logger    *slog.Logger
}

// NewResponder connects to NATS. The connection keeps retrying in the
// background if the server is not reachable yet.
func NewResponder(url string, converter *service.Converter, logger *slog.Logger) (*Responder, error) {
	conn, err := nats.Connect(url,
		nats.Name("dms-converter"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Responder{conn: conn, converter: converter, logger: logger}, nil
}

// Start subscribes to subject in queue group queue. Requests are handled
// until Close is called; ctx bounds each conversion.
func (r *Responder) Start(ctx context.Context, subject, queue string) error {
	sub, err := r.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		reply := r.handle(ctx, msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			r.logger.Warn("nats respond failed", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}
	r.sub = sub
	r.logger.Info("nats responder started", "subject", subject, "queue", queue)
	return nil
}

// CheckReadiness reports an error while the connection is down.
func (r *Responder) CheckReadiness(_ context.Context) error {
	if !r.conn.IsConnected() {
		return errors.New("nats is not connected")
	}
	return nil
}

// Close unsubscribes and drains.
func (r *Responder) Close() {
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
	_ = r.conn.Drain()
}

func (r *Responder) handle(ctx context.Context, data []byte) []byte {
	var result domain.ConversionResult
	req, err := domain.DecodeRequest(data)
	if err != nil {
		result = r.converter.Reject(service.SurfaceNATS, err)
	} else {
		result = r.converter.Convert(ctx, service.SurfaceNATS, req)
	}

	out, err := json.Marshal(result)
	if err != nil {
		r.logger.Error("marshal nats reply", "error", err)
		return nil
	}
	return out
}
