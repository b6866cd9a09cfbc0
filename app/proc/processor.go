// Package proc implements reference resolution on read and consistency maintenance on write
// across users, feeds and feed items collections.
//
// Multi-document mutations are sequences of independent single-document operations.
// A failure between the steps leaves whatever state the completed steps produced,
// nothing is rolled back.
package proc

import (
	"context"
	"time"

	"github.com/umputun/social-feed/app/models"
)

// UserStore is a users collection
type UserStore interface {
	Get(ctx context.Context, id models.ID) (models.User, error)
}

// FeedStore is a feeds collection
type FeedStore interface {
	Get(ctx context.Context, id models.ID) (models.Feed, error)
	Put(ctx context.Context, feed models.Feed) error
	List(ctx context.Context) ([]models.ID, error)
}

// FeedItemStore is a feed items collection
type FeedItemStore interface {
	Get(ctx context.Context, id models.ID) (models.FeedItem, error)
	Put(ctx context.Context, item models.FeedItem) error
	Insert(ctx context.Context, item models.FeedItem) (models.FeedItem, error)
	Delete(ctx context.Context, id models.ID) error
}

// Processor resolves feeds and performs mutations keeping collections consistent
type Processor struct {
	Conf      Conf
	Users     UserStore
	Feeds     FeedStore
	FeedItems FeedItemStore

	now func() time.Time
}

// Conf for processor
type Conf struct {
	Concurrent int // max number of feed items resolved in parallel
}

// NewProcessor makes processor with defaults applied
func NewProcessor(conf Conf, users UserStore, feeds FeedStore, items FeedItemStore) *Processor {
	p := &Processor{Conf: conf, Users: users, Feeds: feeds, FeedItems: items, now: time.Now}
	p.setDefaults()
	return p
}

func (p *Processor) setDefaults() {
	if p.Conf.Concurrent <= 0 {
		p.Conf.Concurrent = 8
	}
	if p.now == nil {
		p.now = time.Now
	}
}
