package proc

import (
	"context"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"

	"github.com/umputun/social-feed/app/models"
)

// StatusUpdateReq is a request to post a new status update
type StatusUpdateReq struct {
	UserID   models.ID
	Location string
	Text     string
	Image    string
}

// CommentReq is a request to post a comment. Author is declared by the payload.
type CommentReq struct {
	Author   models.ID
	Text     string
	PostDate int64
}

// PostStatusUpdate makes a new feed item and puts it to the front of the poster's feed only
func (p *Processor) PostStatusUpdate(ctx context.Context, actor models.ID, req StatusUpdateReq) (models.ResolvedFeedItem, error) {
	if actor != req.UserID {
		return models.ResolvedFeedItem{}, errors.Wrapf(models.ErrUnauthorized, "user %s can't post as %s", actor, req.UserID)
	}
	text := cleanText(req.Text)
	if isBlank(text) {
		return models.ResolvedFeedItem{}, errors.Wrap(models.ErrBadRequest, "empty status update")
	}

	// feed loaded before insert, unknown user doesn't leave an orphan item
	feed, err := p.userFeed(ctx, req.UserID)
	if err != nil {
		return models.ResolvedFeedItem{}, err
	}

	item, err := p.FeedItems.Insert(ctx, models.FeedItem{
		Type: models.StatusUpdateType,
		Contents: models.StatusUpdate{
			Author:   req.UserID,
			PostDate: p.now().UnixNano() / 1e6,
			Location: cleanText(req.Location),
			Text:     text,
			Image:    strings.TrimSpace(req.Image),
		},
		LikeCounter: []models.ID{},
		Comments:    []models.Comment{},
	})
	if err != nil {
		return models.ResolvedFeedItem{}, errors.Wrap(err, "can't insert status update")
	}

	feed.Contents = append([]models.ID{item.ID}, feed.Contents...)
	if err = p.Feeds.Put(ctx, feed); err != nil {
		return models.ResolvedFeedItem{}, errors.Wrapf(err, "can't add %s to feed %s", item.ID, feed.ID)
	}
	log.Printf("[INFO] user %s posted %s to feed %s", req.UserID, item.ID, feed.ID)

	return p.resolveItem(ctx, item)
}

// UpdateText replaces text of the feed item. Author, date, likes and comments are kept.
// Blank text is rejected, same as for new status updates and comments.
func (p *Processor) UpdateText(ctx context.Context, actor, itemID models.ID, text string) (models.ResolvedFeedItem, error) {
	item, err := p.authoredItem(ctx, actor, itemID)
	if err != nil {
		return models.ResolvedFeedItem{}, err
	}

	text = cleanText(text)
	if isBlank(text) {
		return models.ResolvedFeedItem{}, errors.Wrapf(models.ErrBadRequest, "empty text for %s", itemID)
	}
	item.Contents.Text = text
	if err = p.FeedItems.Put(ctx, item); err != nil {
		return models.ResolvedFeedItem{}, errors.Wrapf(err, "can't update feed item %s", itemID)
	}
	log.Printf("[DEBUG] user %s updated text of %s", actor, itemID)
	return p.resolveItem(ctx, item)
}

// DeleteFeedItem removes the feed item and scrubs it from every feed listing it.
// The item is deleted first; a failure while scrubbing leaves dangling references behind.
func (p *Processor) DeleteFeedItem(ctx context.Context, actor, itemID models.ID) error {
	if _, err := p.authoredItem(ctx, actor, itemID); err != nil {
		return err
	}

	if err := p.FeedItems.Delete(ctx, itemID); err != nil {
		return errors.Wrapf(err, "can't delete feed item %s", itemID)
	}

	feedIDs, err := p.Feeds.List(ctx)
	if err != nil {
		return errors.Wrapf(err, "can't list feeds to remove %s", itemID)
	}
	scrubbed := 0
	for _, feedID := range feedIDs {
		feed, err := p.Feeds.Get(ctx, feedID)
		if err != nil {
			return errors.Wrapf(err, "can't get feed %s to remove %s", feedID, itemID)
		}
		contents, removed := removeID(feed.Contents, itemID)
		if !removed {
			continue
		}
		feed.Contents = contents
		if err := p.Feeds.Put(ctx, feed); err != nil {
			return errors.Wrapf(err, "can't remove %s from feed %s", itemID, feedID)
		}
		scrubbed++
	}
	log.Printf("[INFO] user %s deleted %s, removed from %d feeds", actor, itemID, scrubbed)
	return nil
}

// LikeFeedItem adds user to the item's like set. Liking twice changes nothing.
func (p *Processor) LikeFeedItem(ctx context.Context, actor, itemID, userID models.ID) ([]models.User, error) {
	return p.setItemLike(ctx, actor, itemID, userID, true)
}

// UnlikeFeedItem removes user from the item's like set, no-op if not liked
func (p *Processor) UnlikeFeedItem(ctx context.Context, actor, itemID, userID models.ID) ([]models.User, error) {
	return p.setItemLike(ctx, actor, itemID, userID, false)
}

// PostComment appends comment to the item and returns resolved item with the new comment's index
func (p *Processor) PostComment(ctx context.Context, actor, itemID models.ID, req CommentReq) (models.ResolvedFeedItem, int, error) {
	if actor != req.Author {
		return models.ResolvedFeedItem{}, 0, errors.Wrapf(models.ErrUnauthorized, "user %s can't comment as %s", actor, req.Author)
	}
	text := cleanText(req.Text)
	if isBlank(text) {
		return models.ResolvedFeedItem{}, 0, errors.Wrap(models.ErrBadRequest, "empty comment")
	}
	if _, err := p.lookupUser(ctx, req.Author); err != nil {
		return models.ResolvedFeedItem{}, 0, err
	}

	item, err := p.FeedItems.Get(ctx, itemID)
	if err != nil {
		return models.ResolvedFeedItem{}, 0, errors.Wrapf(err, "can't get feed item %s", itemID)
	}
	item.Comments = append(item.Comments, models.Comment{
		Author:      req.Author,
		Text:        text,
		PostDate:    req.PostDate,
		LikeCounter: []models.ID{},
	})
	index := len(item.Comments) - 1
	if err = p.FeedItems.Put(ctx, item); err != nil {
		return models.ResolvedFeedItem{}, 0, errors.Wrapf(err, "can't add comment to %s", itemID)
	}
	log.Printf("[INFO] user %s commented %s, comment #%d", actor, itemID, index)

	res, err := p.resolveItem(ctx, item)
	return res, index, err
}

// LikeComment adds user to the like set of comment addressed by its position in the item
func (p *Processor) LikeComment(ctx context.Context, actor, itemID models.ID, index int, userID models.ID) (models.ResolvedComment, error) {
	return p.setCommentLike(ctx, actor, itemID, index, userID, true)
}

// UnlikeComment removes user from the like set of the comment, no-op if not liked
func (p *Processor) UnlikeComment(ctx context.Context, actor, itemID models.ID, index int, userID models.ID) (models.ResolvedComment, error) {
	return p.setCommentLike(ctx, actor, itemID, index, userID, false)
}

func (p *Processor) setItemLike(ctx context.Context, actor, itemID, userID models.ID, like bool) ([]models.User, error) {
	if actor != userID {
		return nil, errors.Wrapf(models.ErrUnauthorized, "user %s can't change likes of %s", actor, userID)
	}
	if _, err := p.lookupUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := p.FeedItems.Get(ctx, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "can't get feed item %s", itemID)
	}

	likes, changed := toggleLike(item.LikeCounter, userID, like)
	if changed {
		item.LikeCounter = likes
		if err = p.FeedItems.Put(ctx, item); err != nil {
			return nil, errors.Wrapf(err, "can't update likes of %s", itemID)
		}
		log.Printf("[DEBUG] user %s like=%v feed item %s", userID, like, itemID)
	}
	return p.ResolveUsers(ctx, likes)
}

func (p *Processor) setCommentLike(ctx context.Context, actor, itemID models.ID, index int, userID models.ID, like bool) (models.ResolvedComment, error) {
	if actor != userID {
		return models.ResolvedComment{}, errors.Wrapf(models.ErrUnauthorized, "user %s can't change likes of %s", actor, userID)
	}
	if _, err := p.lookupUser(ctx, userID); err != nil {
		return models.ResolvedComment{}, err
	}

	item, err := p.FeedItems.Get(ctx, itemID)
	if err != nil {
		return models.ResolvedComment{}, errors.Wrapf(err, "can't get feed item %s", itemID)
	}
	if index < 0 || index >= len(item.Comments) {
		return models.ResolvedComment{}, errors.Wrapf(models.ErrNotFound, "no comment #%d in %s", index, itemID)
	}

	comment := item.Comments[index]
	likes, changed := toggleLike(comment.LikeCounter, userID, like)
	if changed {
		comment.LikeCounter = likes
		item.Comments[index] = comment
		if err = p.FeedItems.Put(ctx, item); err != nil {
			return models.ResolvedComment{}, errors.Wrapf(err, "can't update likes of comment #%d in %s", index, itemID)
		}
		log.Printf("[DEBUG] user %s like=%v comment #%d of %s", userID, like, index, itemID)
	}
	return p.ResolveComment(ctx, comment)
}

// CheckAuthor reports ErrUnauthorized if actor is not the author of the item, ErrNotFound for unknown item
func (p *Processor) CheckAuthor(ctx context.Context, actor, itemID models.ID) error {
	_, err := p.authoredItem(ctx, actor, itemID)
	return err
}

// authoredItem loads the item and checks the actor is its author
func (p *Processor) authoredItem(ctx context.Context, actor, itemID models.ID) (models.FeedItem, error) {
	item, err := p.FeedItems.Get(ctx, itemID)
	if err != nil {
		return models.FeedItem{}, errors.Wrapf(err, "can't get feed item %s", itemID)
	}
	if item.Contents.Author != actor {
		return models.FeedItem{}, errors.Wrapf(models.ErrUnauthorized, "user %s is not the author of %s", actor, itemID)
	}
	return item, nil
}

// toggleLike adds or removes id keeping set semantics, reports whether the set changed
func toggleLike(likes []models.ID, id models.ID, like bool) ([]models.ID, bool) {
	if likes == nil {
		likes = []models.ID{}
	}
	if like {
		if models.HasLike(likes, id) {
			return likes, false
		}
		return append(likes, id), true
	}
	return removeID(likes, id)
}

// removeID drops all occurrences of id, returns a new slice
func removeID(ids []models.ID, id models.ID) ([]models.ID, bool) {
	res := make([]models.ID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			res = append(res, v)
		}
	}
	return res, len(res) != len(ids)
}
