package store

import (
	"context"

	"github.com/umputun/social-feed/app/models"
)

// Users collection
type Users struct{ c collection }

// Get user by id
func (u *Users) Get(ctx context.Context, id models.ID) (models.User, error) {
	res := models.User{}
	err := u.c.get(ctx, id, &res)
	return res, err
}

// Put overwrites existing user
func (u *Users) Put(ctx context.Context, user models.User) error {
	return u.c.put(ctx, user.ID, user)
}

// Insert stores user with a newly assigned id
func (u *Users) Insert(ctx context.Context, user models.User) (models.User, error) {
	id, err := u.c.insert(ctx, func(id models.ID) interface{} {
		user.ID = id
		return user
	})
	user.ID = id
	return user, err
}

// Delete user by id
func (u *Users) Delete(ctx context.Context, id models.ID) error { return u.c.delete(ctx, id) }

// List all user ids
func (u *Users) List(ctx context.Context) ([]models.ID, error) { return u.c.list(ctx) }

// Feeds collection
type Feeds struct{ c collection }

// Get feed by id
func (f *Feeds) Get(ctx context.Context, id models.ID) (models.Feed, error) {
	res := models.Feed{}
	err := f.c.get(ctx, id, &res)
	return res, err
}

// Put overwrites existing feed
func (f *Feeds) Put(ctx context.Context, feed models.Feed) error {
	return f.c.put(ctx, feed.ID, feed)
}

// Insert stores feed with a newly assigned id
func (f *Feeds) Insert(ctx context.Context, feed models.Feed) (models.Feed, error) {
	id, err := f.c.insert(ctx, func(id models.ID) interface{} {
		feed.ID = id
		return feed
	})
	feed.ID = id
	return feed, err
}

// Delete feed by id
func (f *Feeds) Delete(ctx context.Context, id models.ID) error { return f.c.delete(ctx, id) }

// List all feed ids
func (f *Feeds) List(ctx context.Context) ([]models.ID, error) { return f.c.list(ctx) }

// FeedItems collection
type FeedItems struct{ c collection }

// Get feed item by id
func (f *FeedItems) Get(ctx context.Context, id models.ID) (models.FeedItem, error) {
	res := models.FeedItem{}
	err := f.c.get(ctx, id, &res)
	return res, err
}

// Put overwrites existing feed item
func (f *FeedItems) Put(ctx context.Context, item models.FeedItem) error {
	return f.c.put(ctx, item.ID, item)
}

// Insert stores feed item with a newly assigned id
func (f *FeedItems) Insert(ctx context.Context, item models.FeedItem) (models.FeedItem, error) {
	id, err := f.c.insert(ctx, func(id models.ID) interface{} {
		item.ID = id
		return item
	})
	item.ID = id
	return item, err
}

// Delete feed item by id
func (f *FeedItems) Delete(ctx context.Context, id models.ID) error { return f.c.delete(ctx, id) }

// List all feed item ids
func (f *FeedItems) List(ctx context.Context) ([]models.ID, error) { return f.c.list(ctx) }
