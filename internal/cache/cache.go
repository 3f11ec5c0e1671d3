// Package cache is a lookaside store for resolved participant profiles, so
// identity lookups shared across conversations are not re-fetched. It is not
// a store of record; the backend owns all persistence.
package cache

import (
	"context"
	"time"

	"github.com/swipeit/chatrelay/internal/models"
)

const profileTTL = 15 * time.Minute

// ProfileCache stores participant profiles by id. Misses are silent.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*models.Participant, bool)
	Put(ctx context.Context, p *models.Participant)
}
