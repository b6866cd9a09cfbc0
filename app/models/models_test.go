package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tbl := []struct {
		in  string
		res ID
		err bool
	}{
		{`"4"`, "4", false},
		{`"000000000000000000000004"`, "000000000000000000000004", false},
		{`4`, "4", false},
		{`0`, "0", false},
		{`-1`, "", true},
		{`1.5`, "", true},
		{`true`, "", true},
		{`{"id":1}`, "", true},
	}

	for _, tt := range tbl {
		t.Run(tt.in, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.res, id)
		})
	}
}

func TestFeedItem_JSON(t *testing.T) {
	item := FeedItem{ID: "1", Type: StatusUpdateType, LikeCounter: []ID{"2"},
		Contents: StatusUpdate{Author: "1", PostDate: 1453668480000, Location: "Austin, TX", Text: "ugh."},
		Comments: []Comment{{Author: "2", Text: "hope everything is ok!", PostDate: 1453690800000, LikeCounter: []ID{}}}}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"1","type":"statusUpdate","likeCounter":["2"],
		"contents":{"author":"1","postDate":1453668480000,"location":"Austin, TX","contents":"ugh."},
		"comments":[{"author":"2","contents":"hope everything is ok!","postDate":1453690800000,"likeCounter":[]}]}`,
		string(data))

	// numeric ids from clients are accepted
	res := FeedItem{}
	require.NoError(t, json.Unmarshal([]byte(`{"_id":1,"likeCounter":[2,"3"],"contents":{"author":1}}`), &res))
	assert.Equal(t, ID("1"), res.ID)
	assert.Equal(t, []ID{"2", "3"}, res.LikeCounter)
	assert.Equal(t, ID("1"), res.Contents.Author)
}

func TestHasLike(t *testing.T) {
	assert.True(t, HasLike([]ID{"1", "2"}, "2"))
	assert.False(t, HasLike([]ID{"1", "2"}, "3"))
	assert.False(t, HasLike(nil, "1"))
}
