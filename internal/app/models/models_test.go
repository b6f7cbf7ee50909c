package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayName(t *testing.T) {
	u := &User{ID: 1, Username: "keeper1"}
	assert.Equal(t, "keeper1", u.DisplayName())

	u.FullName = "Gianluigi Buffon"
	assert.Equal(t, "Gianluigi Buffon", u.Summary().FullName)
}

func TestParseFeedFilter(t *testing.T) {
	cases := []struct {
		label string
		want  PostType
		ok    bool
	}{
		{"", "", true},
		{"all", "", true},
		{"highlights", PostTypeVideo, true},
		{"Matches", PostTypeStats, true},
		{"achievement", PostTypeAchievement, true},
		{"text", PostTypeText, true},
		{"podcasts", "", false},
	}
	for _, c := range cases {
		got, ok := ParseFeedFilter(c.label)
		assert.Equal(t, c.ok, ok, c.label)
		assert.Equal(t, c.want, got, c.label)
	}
}

func TestConnectionParties(t *testing.T) {
	c := &Connection{RequesterID: 1, ReceiverID: 2}
	assert.Equal(t, int64(2), c.OtherParty(1))
	assert.Equal(t, int64(1), c.OtherParty(2))
	assert.True(t, c.SamePair(2, 1))
	assert.False(t, c.SamePair(1, 3))
	assert.False(t, c.Involves(3))
}

func TestUserUpdateApply(t *testing.T) {
	club := "Ajax"
	u := &User{Club: "PSV", Position: "Winger"}
	UserUpdate{Club: &club}.Apply(u)

	assert.Equal(t, "Ajax", u.Club)
	assert.Equal(t, "Winger", u.Position)
	assert.True(t, UserUpdate{}.IsEmpty())
}
