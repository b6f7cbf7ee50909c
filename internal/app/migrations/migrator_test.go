package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"002_listings.sql": {Data: []byte("CREATE TABLE events ();")},
		"001_init.sql":     {Data: []byte("CREATE TABLE users ();")},
		"README.md":        {Data: []byte("notes")},
		"drafts/003.sql":   {Data: []byte("-- nested files are ignored")},
	}

	all, err := Discover(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: "001", Name: "001_init.sql"},
		{Version: "002", Name: "002_listings.sql"},
	}, all)
}

func TestDiscover_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.sql":  {Data: []byte("")},
		"001_again.sql": {Data: []byte("")},
	}

	_, err := Discover(fsys)
	assert.ErrorContains(t, err, "duplicate migration version 001")
}

func TestPending(t *testing.T) {
	all := []Migration{{"001", "001_init.sql"}, {"002", "002_a.sql"}, {"003", "003_b.sql"}}

	assert.Equal(t, all[1:], Pending(all, map[string]bool{"001": true}))
	assert.Empty(t, Pending(all, map[string]bool{"001": true, "002": true, "003": true}))
	assert.Equal(t, all, Pending(all, nil))
}
