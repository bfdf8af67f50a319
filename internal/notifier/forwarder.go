package notifier

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/state"
)

// Sender delivers formatted text to the outbound channel.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Forwarder pushes alert, briefing and review messages to a Sender.
type Forwarder struct {
	ctx     context.Context
	sender  Sender
	retries int
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewForwarder creates a forwarder. Sends stop when ctx is cancelled.
func NewForwarder(ctx context.Context, sender Sender, retries int, log zerolog.Logger) *Forwarder {
	return &Forwarder{
		ctx:     ctx,
		sender:  sender,
		retries: retries,
		log:     log.With().Str("component", "forwarder").Logger(),
	}
}

// Forwarded reports whether messages of kind k leave the process.
func Forwarded(k model.MessageKind) bool {
	switch k {
	case model.KindAlert, model.KindBriefing, model.KindReview:
		return true
	}
	return false
}

// Listen is a state.Listener. Delivery runs in the background.
func (f *Forwarder) Listen(fx state.Effects) {
	for _, m := range fx.Appended {
		if !Forwarded(m.Kind) {
			continue
		}
		text := FormatMessage(m)
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			if err := f.sender.SendWithRetry(f.ctx, text, f.retries); err != nil {
				f.log.Error().Err(err).Str("kind", string(m.Kind)).Msg("forward message")
			}
		}()
	}
}

// Wait blocks until pending deliveries finish.
func (f *Forwarder) Wait() {
	f.wg.Wait()
}
