// Package models contains DAO objects stored in collections and their resolved forms
package models

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// ID is an opaque document id, stable across the document lifetime
type ID string

// UnmarshalJSON accepts both string ids and non-negative integer ids
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return errors.Errorf("id should be a string or a number, got %s", string(data))
	}
	n, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return errors.Errorf("id should be a non-negative integer, got %s", num.String())
	}
	*id = ID(strconv.FormatUint(n, 10))
	return nil
}

// StatusUpdateType is the only feed item type created by the service
const StatusUpdateType = "statusUpdate"

// User presents a member of the network. Users are never edited by the service.
type User struct {
	ID       ID     `json:"_id" yaml:"id"`
	FullName string `json:"fullName" yaml:"fullName"`
	FeedID   ID     `json:"feed" yaml:"feed"`
}

// Feed presents the ordered list of feed item ids owned by a single user, most recent first
type Feed struct {
	ID       ID   `json:"_id" yaml:"id"`
	Contents []ID `json:"contents" yaml:"contents"`
}

// FeedItem presents a post with its likes and embedded comments
type FeedItem struct {
	ID          ID           `json:"_id" yaml:"id"`
	Type        string       `json:"type" yaml:"type"`
	Contents    StatusUpdate `json:"contents" yaml:"contents"`
	LikeCounter []ID         `json:"likeCounter" yaml:"likeCounter"`
	Comments    []Comment    `json:"comments" yaml:"comments"`
}

// StatusUpdate is the payload of a feed item. Author is immutable after creation.
type StatusUpdate struct {
	Author   ID     `json:"author" yaml:"author"`
	PostDate int64  `json:"postDate" yaml:"postDate"` // unix time, ms
	Location string `json:"location" yaml:"location"`
	Text     string `json:"contents" yaml:"contents"`
	Image    string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Comment is embedded into its feed item and addressed by position in FeedItem.Comments.
// The position is not a stable identifier if comments are ever removed.
type Comment struct {
	Author      ID     `json:"author" yaml:"author"`
	Text        string `json:"contents" yaml:"contents"`
	PostDate    int64  `json:"postDate" yaml:"postDate"`
	LikeCounter []ID   `json:"likeCounter" yaml:"likeCounter"`
}

// ResolvedFeed is a feed with every item id replaced by the resolved item
type ResolvedFeed struct {
	ID       ID                 `json:"_id"`
	Contents []ResolvedFeedItem `json:"contents"`
}

// ResolvedFeedItem is a feed item with author, likes and comment authors resolved to users
type ResolvedFeedItem struct {
	ID          ID                   `json:"_id"`
	Type        string               `json:"type"`
	Contents    ResolvedStatusUpdate `json:"contents"`
	LikeCounter []User               `json:"likeCounter"`
	Comments    []ResolvedComment    `json:"comments"`
}

// ResolvedStatusUpdate is StatusUpdate with the author resolved
type ResolvedStatusUpdate struct {
	Author   User   `json:"author"`
	PostDate int64  `json:"postDate"`
	Location string `json:"location"`
	Text     string `json:"contents"`
	Image    string `json:"image,omitempty"`
}

// ResolvedComment is Comment with the author resolved. Likes stay as ids, as the original service did.
type ResolvedComment struct {
	Author      User   `json:"author"`
	Text        string `json:"contents"`
	PostDate    int64  `json:"postDate"`
	LikeCounter []ID   `json:"likeCounter"`
}

// Seed is the fixed data set used to repopulate collections on reset
type Seed struct {
	Users     []User     `yaml:"users"`
	Feeds     []Feed     `yaml:"feeds"`
	FeedItems []FeedItem `yaml:"feedItems"`
}

// HasLike checks if id is in the like set
func HasLike(likes []ID, id ID) bool {
	for _, l := range likes {
		if l == id {
			return true
		}
	}
	return false
}
