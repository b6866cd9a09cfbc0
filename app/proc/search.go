package proc

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/umputun/social-feed/app/models"
)

// Search scans actor's own feed for items with text containing the query, case-insensitive.
// Items outside of the actor's feed are never returned.
func (p *Processor) Search(ctx context.Context, actor models.ID, query string) ([]models.ResolvedFeedItem, error) {
	feed, err := p.userFeed(ctx, actor)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matched := []models.ID{}
	for _, id := range feed.Contents {
		item, err := p.FeedItems.Get(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "can't get feed item %s of feed %s", id, feed.ID)
		}
		if strings.Contains(strings.ToLower(item.Contents.Text), query) {
			matched = append(matched, id)
		}
	}

	return p.resolveFeedItems(ctx, matched)
}
