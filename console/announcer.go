package console

import (
	"context"

	"github.com/slotworks/vending/log"
)

// Announcer voices machine phrases. The original hardware spoke them through
// a text-to-speech engine; implementations here are free to log, play audio,
// or stay silent.
type Announcer interface {
	Say(ctx context.Context, phrase string)
}

// NopAnnouncer discards every phrase.
type NopAnnouncer struct{}

// Say drops the phrase.
func (NopAnnouncer) Say(_ context.Context, _ string) {}

// LogAnnouncer speaks through the structured logger.
type LogAnnouncer struct {
	Logger log.Logger
}

// Say logs the phrase at info level.
func (a LogAnnouncer) Say(ctx context.Context, phrase string) {
	if a.Logger == nil {
		return
	}

	a.Logger.Log(ctx, log.LevelInfo, "announce", log.String("phrase", phrase))
}
