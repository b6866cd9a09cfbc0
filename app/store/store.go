// Package store implements the document store on top of bolt db.
// Each collection lives in its own bucket, documents are JSON values keyed by id.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"strconv"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/umputun/social-feed/app/models"
)

const (
	bucketUsers     = "users"
	bucketFeeds     = "feeds"
	bucketFeedItems = "feedItems"
)

var buckets = []string{bucketUsers, bucketFeeds, bucketFeedItems}

// BoltStore keeps users, feeds and feed items, one bucket per collection.
// Every call is a separate bolt transaction, there are no cross-document transactions.
type BoltStore struct {
	DB   *bolt.DB
	seed models.Seed
}

// NewBoltStore makes persistent store with all collections created. Seed used by Reset.
func NewBoltStore(dbFile string, seed models.Seed) (*BoltStore, error) {
	log.Printf("[INFO] bolt (persistent) store, %s", dbFile)
	if err := os.MkdirAll(path.Dir(dbFile), 0700); err != nil {
		return nil, errors.Wrapf(err, "can't make directory for %s", dbFile)
	}

	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: 1 * time.Second}) // nolint
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", dbFile)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, e := tx.CreateBucketIfNotExists([]byte(name)); e != nil {
				return errors.Wrapf(e, "can't create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{DB: db, seed: seed}, nil
}

// Users returns users collection
func (b *BoltStore) Users() *Users { return &Users{c: collection{db: b.DB, name: bucketUsers}} }

// Feeds returns feeds collection
func (b *BoltStore) Feeds() *Feeds { return &Feeds{c: collection{db: b.DB, name: bucketFeeds}} }

// FeedItems returns feed items collection
func (b *BoltStore) FeedItems() *FeedItems {
	return &FeedItems{c: collection{db: b.DB, name: bucketFeedItems}}
}

// Close bolt db
func (b *BoltStore) Close() error {
	return b.DB.Close()
}

// Reset drops all collections and repopulates them from the seed, in a single bolt transaction.
// Callers must not run it concurrently with other operations relying on a consistent view.
func (b *BoltStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	docs := map[string]map[models.ID]interface{}{bucketUsers: {}, bucketFeeds: {}, bucketFeedItems: {}}
	for _, u := range b.seed.Users {
		docs[bucketUsers][u.ID] = u
	}
	for _, f := range b.seed.Feeds {
		docs[bucketFeeds][f.ID] = f
	}
	for _, fi := range b.seed.FeedItems {
		docs[bucketFeedItems][fi.ID] = fi
	}

	err := b.DB.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if e := tx.DeleteBucket([]byte(name)); e != nil && e != bolt.ErrBucketNotFound {
				return errors.Wrapf(e, "can't drop bucket %s", name)
			}
			bucket, e := tx.CreateBucket([]byte(name))
			if e != nil {
				return errors.Wrapf(e, "can't create bucket %s", name)
			}

			var maxSeq uint64
			for id, doc := range docs[name] {
				data, e := json.Marshal(doc)
				if e != nil {
					return errors.Wrapf(e, "can't marshal %s/%s", name, id)
				}
				if e = bucket.Put([]byte(id), data); e != nil {
					return errors.Wrapf(e, "can't put %s/%s", name, id)
				}
				if n, e := strconv.ParseUint(string(id), 10, 64); e == nil && n > maxSeq {
					maxSeq = n
				}
			}
			// inserted ids continue after the highest numeric seeded id
			if e := bucket.SetSequence(maxSeq); e != nil {
				return errors.Wrapf(e, "can't set sequence for %s", name)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[INFO] store reset, users=%d, feeds=%d, feed items=%d",
		len(b.seed.Users), len(b.seed.Feeds), len(b.seed.FeedItems))
	return nil
}

// collection implements get/put/insert/delete/list over a single bucket
type collection struct {
	db   *bolt.DB
	name string
}

func (c collection) get(ctx context.Context, id models.ID, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.View(func(tx *bolt.Tx) error {
		bucket, err := c.bucket(tx)
		if err != nil {
			return err
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return errors.Wrapf(models.ErrNotFound, "no %s/%s", c.name, id)
		}
		return errors.Wrapf(json.Unmarshal(data, v), "can't unmarshal %s/%s", c.name, id)
	})
}

// put overwrites existing document, absent document is not created
func (c collection) put(ctx context.Context, id models.ID, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "can't marshal %s/%s", c.name, id)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, e := c.bucket(tx)
		if e != nil {
			return e
		}
		if bucket.Get([]byte(id)) == nil {
			return errors.Wrapf(models.ErrNotFound, "no %s/%s", c.name, id)
		}
		log.Printf("[DEBUG] put %s/%s", c.name, id)
		return errors.Wrapf(bucket.Put([]byte(id), data), "can't put %s/%s", c.name, id)
	})
}

// insert assigns the next id of the bucket sequence and stores document made by mk
func (c collection) insert(ctx context.Context, mk func(id models.ID) interface{}) (models.ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var id models.ID
	err := c.db.Update(func(tx *bolt.Tx) error {
		bucket, e := c.bucket(tx)
		if e != nil {
			return e
		}
		seq, e := bucket.NextSequence()
		if e != nil {
			return errors.Wrapf(e, "can't get next id for %s", c.name)
		}
		id = models.ID(strconv.FormatUint(seq, 10))
		data, e := json.Marshal(mk(id))
		if e != nil {
			return errors.Wrapf(e, "can't marshal %s/%s", c.name, id)
		}
		log.Printf("[DEBUG] insert %s/%s", c.name, id)
		return errors.Wrapf(bucket.Put([]byte(id), data), "can't put %s/%s", c.name, id)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c collection) delete(ctx context.Context, id models.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, e := c.bucket(tx)
		if e != nil {
			return e
		}
		if bucket.Get([]byte(id)) == nil {
			return errors.Wrapf(models.ErrNotFound, "no %s/%s", c.name, id)
		}
		log.Printf("[DEBUG] delete %s/%s", c.name, id)
		return errors.Wrapf(bucket.Delete([]byte(id)), "can't delete %s/%s", c.name, id)
	})
}

func (c collection) list(ctx context.Context) ([]models.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := []models.ID{}
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket, e := c.bucket(tx)
		if e != nil {
			return e
		}
		return bucket.ForEach(func(k, _ []byte) error {
			res = append(res, models.ID(k))
			return nil
		})
	})
	return res, err
}

func (c collection) bucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(c.name))
	if bucket == nil {
		return nil, errors.Errorf("no bucket for %s", c.name)
	}
	return bucket, nil
}
