package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/unicrossed/backend/internal/domain/model"
)

const DefaultLinkFormedSubject = "links.formed"

type LinkFormedEvent struct {
	EventID   string    `json:"event_id"`
	LinkID    int64     `json:"link_id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher interface {
	PublishLinkFormed(ctx context.Context, link model.Link) error
	Close()
}

type NatsPublisher struct {
	nc      *nats.Conn
	subject string
}

func Connect(url, subject string, log *zap.Logger) (*NatsPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultLinkFormedSubject
	}
	if log == nil {
		log = zap.NewNop()
	}

	nc, err := nats.Connect(url,
		nats.Name("unicrossed-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &NatsPublisher{nc: nc, subject: subject}, nil
}

func (p *NatsPublisher) PublishLinkFormed(ctx context.Context, link model.Link) error {
	msg, err := linkFormedMessage(ctx, p.subject, link)
	if err != nil {
		return err
	}
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

func linkFormedMessage(ctx context.Context, subject string, link model.Link) (*nats.Msg, error) {
	data, err := json.Marshal(LinkFormedEvent{
		EventID:   uuid.NewString(),
		LinkID:    link.ID,
		UserAID:   link.UserAID,
		UserBID:   link.UserBID,
		CreatedAt: link.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal link formed event: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
	return msg, nil
}

type NopPublisher struct{}

func (NopPublisher) PublishLinkFormed(context.Context, model.Link) error { return nil }

func (NopPublisher) Close() {}
