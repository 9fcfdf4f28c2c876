package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"liquidityLedger/internal/model"
)

// JetStreamConfig names the stream and durable consumer to read from.
type JetStreamConfig struct {
	Stream   string
	Subject  string
	Consumer string
	AckWait  time.Duration
}

// JetStream consumes typed events from a durable JetStream consumer. At most
// one message is in flight so the handler sees records in stream order.
type JetStream struct {
	js     jetstream.JetStream
	cfg    JetStreamConfig
	logger *zap.Logger
}

func NewJetStream(js jetstream.JetStream, cfg JetStreamConfig, logger *zap.Logger) *JetStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	return &JetStream{js: js, cfg: cfg, logger: logger}
}

// Run consumes until ctx is cancelled or the handler fails. A failed record
// is nak'ed so it is redelivered after restart.
func (s *JetStream) Run(ctx context.Context, handle Handler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.Stream, jetstream.ConsumerConfig{
		Durable:       s.cfg.Consumer,
		FilterSubject: s.cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       s.cfg.AckWait,
		MaxAckPending: 1,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", s.cfg.Consumer, err)
	}

	iter, err := consumer.Messages()
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.cfg.Consumer, err)
	}
	defer iter.Stop()

	stop := context.AfterFunc(ctx, iter.Stop)
	defer stop()

	s.logger.Info("jetstream consume start",
		zap.String("stream", s.cfg.Stream),
		zap.String("subject", s.cfg.Subject),
		zap.String("consumer", s.cfg.Consumer),
	)

	for {
		msg, err := iter.Next()
		if err != nil {
			if errors.Is(err, jetstream.ErrMsgIteratorClosed) {
				return ctx.Err()
			}
			return fmt.Errorf("next message: %w", err)
		}
		if err := s.handleMessage(ctx, msg, handle); err != nil {
			return err
		}
	}
}

func (s *JetStream) handleMessage(ctx context.Context, msg jetstream.Msg, handle Handler) error {
	var record model.TypedEventRecord
	if err := json.Unmarshal(msg.Data(), &record); err != nil {
		s.logger.Warn("decode typed event", zap.String("subject", msg.Subject()), zap.Error(err))
		// Redelivery cannot fix a malformed payload.
		if err := msg.Term(); err != nil {
			return fmt.Errorf("term message: %w", err)
		}
		return nil
	}

	if err := handle(ctx, record); err != nil {
		if nakErr := msg.Nak(); nakErr != nil {
			s.logger.Warn("nak failed", zap.Error(nakErr))
		}
		return err
	}
	if err := msg.Ack(); err != nil {
		return fmt.Errorf("ack message: %w", err)
	}
	return nil
}

// EnsureStream creates the typed event stream if it does not exist.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name, subject string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{subject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", name, err)
	}
	return nil
}

// Publish sends one typed event to subject. The message id deduplicates
// republished logs inside the stream's duplicate window.
func Publish(ctx context.Context, js jetstream.JetStream, subject string, event *model.TypedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	msgID := model.EventKey(event.ChainID, event.TxHash, event.LogIndex)
	if _, err := js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("publish %s: %w", msgID, err)
	}
	return nil
}

// Connect establishes a NATS connection and returns a JetStream context.
func Connect(url string, logger *zap.Logger) (*nats.Conn, jetstream.JetStream, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}
