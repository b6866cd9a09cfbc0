package proc

import (
	"context"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"
	"github.com/pkg/errors"

	"github.com/umputun/social-feed/app/models"
)

// GetFeed loads user's feed with every item resolved, most recent first
func (p *Processor) GetFeed(ctx context.Context, userID models.ID) (models.ResolvedFeed, error) {
	feed, err := p.userFeed(ctx, userID)
	if err != nil {
		return models.ResolvedFeed{}, err
	}

	items, err := p.resolveFeedItems(ctx, feed.Contents)
	if err != nil {
		return models.ResolvedFeed{}, errors.Wrapf(err, "can't resolve feed %s", feed.ID)
	}
	return models.ResolvedFeed{ID: feed.ID, Contents: items}, nil
}

// ResolveFeedItem loads feed item by id and resolves it
func (p *Processor) ResolveFeedItem(ctx context.Context, itemID models.ID) (models.ResolvedFeedItem, error) {
	item, err := p.FeedItems.Get(ctx, itemID)
	if err != nil {
		return models.ResolvedFeedItem{}, errors.Wrapf(err, "can't get feed item %s", itemID)
	}
	return p.resolveItem(ctx, item)
}

// ResolveUsers maps user ids to users, keeping the order. Any unknown id fails the whole call.
func (p *Processor) ResolveUsers(ctx context.Context, ids []models.ID) ([]models.User, error) {
	res := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, err := p.lookupUser(ctx, id)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, nil
}

// ResolveComment replaces comment's author id with the user
func (p *Processor) ResolveComment(ctx context.Context, c models.Comment) (models.ResolvedComment, error) {
	author, err := p.lookupUser(ctx, c.Author)
	if err != nil {
		return models.ResolvedComment{}, errors.Wrap(err, "can't resolve comment author")
	}
	likes := c.LikeCounter
	if likes == nil {
		likes = []models.ID{}
	}
	return models.ResolvedComment{Author: author, Text: c.Text, PostDate: c.PostDate, LikeCounter: likes}, nil
}

// resolveItem expands author, like list and comment authors of the item
func (p *Processor) resolveItem(ctx context.Context, item models.FeedItem) (models.ResolvedFeedItem, error) {
	author, err := p.lookupUser(ctx, item.Contents.Author)
	if err != nil {
		return models.ResolvedFeedItem{}, errors.Wrapf(err, "can't resolve author of %s", item.ID)
	}

	likes, err := p.ResolveUsers(ctx, item.LikeCounter)
	if err != nil {
		return models.ResolvedFeedItem{}, errors.Wrapf(err, "can't resolve likes of %s", item.ID)
	}

	comments := make([]models.ResolvedComment, 0, len(item.Comments))
	for _, c := range item.Comments {
		rc, err := p.ResolveComment(ctx, c)
		if err != nil {
			return models.ResolvedFeedItem{}, errors.Wrapf(err, "can't resolve comments of %s", item.ID)
		}
		comments = append(comments, rc)
	}

	return models.ResolvedFeedItem{
		ID:   item.ID,
		Type: item.Type,
		Contents: models.ResolvedStatusUpdate{
			Author:   author,
			PostDate: item.Contents.PostDate,
			Location: item.Contents.Location,
			Text:     item.Contents.Text,
			Image:    item.Contents.Image,
		},
		LikeCounter: likes,
		Comments:    comments,
	}, nil
}

// resolveFeedItems resolves items concurrently, limited by Conf.Concurrent. Result keeps ids order.
func (p *Processor) resolveFeedItems(ctx context.Context, ids []models.ID) ([]models.ResolvedFeedItem, error) {
	res := make([]models.ResolvedFeedItem, len(ids))
	errs := make([]error, len(ids))

	swg := syncs.NewSizedGroup(p.Conf.Concurrent, syncs.Preemptive)
	for i, id := range ids {
		i, id := i, id
		swg.Go(func(context.Context) {
			res[i], errs[i] = p.ResolveFeedItem(ctx, id)
		})
	}
	swg.Wait()

	for i, err := range errs {
		if err != nil {
			log.Printf("[WARN] failed to resolve feed item %s, %v", ids[i], err)
			return nil, err
		}
	}
	return res, nil
}

// lookupUser gets user by id, missing user reported as wrapped ErrNotFound
func (p *Processor) lookupUser(ctx context.Context, id models.ID) (models.User, error) {
	u, err := p.Users.Get(ctx, id)
	if err != nil {
		return models.User{}, errors.Wrapf(err, "can't get user %s", id)
	}
	return u, nil
}

// userFeed loads the feed owned by the user
func (p *Processor) userFeed(ctx context.Context, userID models.ID) (models.Feed, error) {
	user, err := p.lookupUser(ctx, userID)
	if err != nil {
		return models.Feed{}, err
	}
	feed, err := p.Feeds.Get(ctx, user.FeedID)
	if err != nil {
		return models.Feed{}, errors.Wrapf(err, "can't get feed %s of user %s", user.FeedID, userID)
	}
	return feed, nil
}
