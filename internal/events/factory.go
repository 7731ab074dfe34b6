package events

import (
	"github.com/rs/zerolog"

	"github.com/judnich/Kickoff/internal/config"
)

// New returns a NoopPublisher when cfg is nil (KICKOFF_NATS_URL unset),
// otherwise a connected JetStreamPublisher.
func New(cfg *config.EventsConfig, log zerolog.Logger) (Publisher, error) {
	if cfg == nil {
		return NoopPublisher{}, nil
	}
	return NewJetStreamPublisher(cfg, log)
}
