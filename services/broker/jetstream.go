// Package broker publishes record changes to NATS JetStream and consumes them back.
package broker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
)

// Publisher implements crud.Publisher on a JetStream stream.
// Changes go to "<prefix>.<entity>.<action>", deduplicated by change ID.
type Publisher struct {
	js      jetstream.JetStream
	prefix  string
	timeout time.Duration
}

var _ crud.Publisher = (*Publisher)(nil)

// Connect dials the NATS server of conf and makes sure the stream exists.
func Connect(ctx context.Context, conf *core.Config) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(conf.NATS.URL, nats.Name(conf.AppName))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to NATS")
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, errors.Wrap(err, "creating JetStream context")
	}
	if err = EnsureStream(ctx, js, conf.NATS.Stream, conf.NATS.SubjectPrefix); err != nil {
		nc.Close()
		return nil, nil, err
	}
	return nc, js, nil
}

// EnsureStream creates or updates the stream holding every subject under prefix.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name, prefix string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{prefix + ".>"},
	})
	return errors.Wrapf(err, "creating stream %s", name)
}

func NewPublisher(js jetstream.JetStream, prefix string) *Publisher {
	return &Publisher{js: js, prefix: prefix, timeout: 5 * time.Second}
}

// subjectToken maps characters NATS does not allow inside a subject token.
var subjectToken = strings.NewReplacer(" ", "-", ".", "-", "*", "-", ">", "-", "\t", "-")

// Subject returns the subject a change is published on. The entity name is
// slugged ("major field" becomes "major-field").
func Subject(prefix string, entity string, action crud.Action) string {
	return strings.Join([]string{prefix, subjectToken.Replace(strings.ToLower(entity)), string(action)}, ".")
}

func (p *Publisher) Publish(ctx context.Context, change crud.Change) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, err := json.Marshal(change)
	if err != nil {
		return errors.Wrap(err, "encoding change")
	}
	msg := nats.NewMsg(Subject(p.prefix, change.Entity, change.Action))
	msg.Data = data
	if _, err = p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(change.ID)); err != nil {
		return errors.Wrapf(err, "publishing %s", msg.Subject)
	}
	return nil
}

// Subscription stops a running Subscribe.
type Subscription interface {
	Stop()
}

// Subscribe delivers the changes published on stream from now on to handle.
// Undecodable messages are reported to logger and dropped.
func Subscribe(ctx context.Context, js jetstream.JetStream, stream string, logger core.Logger, handle func(crud.Change)) (Subscription, error) {
	s, err := js.Stream(ctx, stream)
	if err != nil {
		return nil, errors.Wrapf(err, "getting stream %s", stream)
	}
	consumer, err := s.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating consumer")
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var change crud.Change
		if err := json.Unmarshal(msg.Data(), &change); err != nil {
			logger.Warn("dropping undecodable change on "+msg.Subject(), err)
			_ = msg.Term()
			return
		}
		handle(change)
		_ = msg.Ack()
	})
	if err != nil {
		return nil, errors.Wrap(err, "consuming changes")
	}
	return cc, nil
}
