package events

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/judnich/Kickoff/internal/config"
	"github.com/judnich/Kickoff/model"
)

// JetStreamPublisher publishes onto the KICKOFF stream, creating it if it
// does not already exist.
type JetStreamPublisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	log  zerolog.Logger
}

// NewJetStreamPublisher connects to cfg.URL and ensures the KICKOFF stream
// exists. Connection failures are returned so callers can decide whether a
// broken event bus should abort startup or merely disable publishing.
func NewJetStreamPublisher(cfg *config.EventsConfig, log zerolog.Logger) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Name("kickoff"),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     "KICKOFF",
		Subjects: []string{eventSubjectPrefix + ".>"},
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		nc.Close()
		return nil, err
	}

	return &JetStreamPublisher{conn: nc, js: js, log: log}, nil
}

func (p *JetStreamPublisher) Publish(kind EventKind, id model.TaskID) {
	subj := subjectFor(kind, id)
	if _, err := p.js.Publish(subj, nil); err != nil {
		p.log.Warn().Err(err).Str("subject", subj).Msg("failed to publish task event")
	}
}

func (p *JetStreamPublisher) Shutdown() {
	p.conn.Drain()
	p.conn.Close()
}
