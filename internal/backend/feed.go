package backend

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/swipeit/chatrelay/internal/metrics"
	"github.com/swipeit/chatrelay/internal/wire"
)

// Feed polls the message history for one match and delivers snapshots over a
// channel. One feed serves one conversation; switching conversations means
// cancelling this feed's context and starting a new one.
type Feed struct {
	client   *Client
	matchID  string
	interval time.Duration
	out      chan []wire.MessageRecord
	log      zerolog.Logger
}

// NewFeed creates a feed for the given match.
func NewFeed(client *Client, matchID string, interval time.Duration, log zerolog.Logger) *Feed {
	return &Feed{
		client:   client,
		matchID:  matchID,
		interval: interval,
		out:      make(chan []wire.MessageRecord, 1),
		log:      log.With().Str("component", "feed").Str("match_id", matchID).Logger(),
	}
}

// Snapshots is the consumer side of the feed. The channel closes when Run
// returns.
func (f *Feed) Snapshots() <-chan []wire.MessageRecord {
	return f.out
}

// Run polls until the context is cancelled. Transient errors back off
// exponentially and leave the previous snapshot standing; a successful poll
// resets the backoff.
func (f *Feed) Run(ctx context.Context) {
	defer close(f.out)

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = f.interval
	retry.MaxInterval = 10 * f.interval
	retry.MaxElapsedTime = 0 // retry until cancelled

	wait := time.Duration(0) // first poll is immediate
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		msgs, err := f.client.Messages(ctx, f.matchID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.FeedPolls.WithLabelValues("error").Inc()
			wait = retry.NextBackOff()
			f.log.Warn().Err(err).Dur("retry_in", wait).Msg("feed poll failed")
			continue
		}

		metrics.FeedPolls.WithLabelValues("ok").Inc()
		retry.Reset()
		wait = f.interval
		f.deliver(ctx, msgs)
	}
}

// deliver pushes a snapshot, replacing an unconsumed one; the consumer only
// ever needs the latest.
func (f *Feed) deliver(ctx context.Context, msgs []wire.MessageRecord) {
	for {
		select {
		case <-ctx.Done():
			return
		case f.out <- msgs:
			return
		default:
			select {
			case <-f.out:
			default:
			}
		}
	}
}
