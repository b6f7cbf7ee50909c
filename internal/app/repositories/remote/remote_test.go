package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:            srv.URL + "/rest/v1/",
		APIKey:             "service-key",
		Timeout:            2 * time.Second,
		BreakerMinRequests: 2,
		BreakerTimeout:     time.Minute,
	}, zerolog.Nop())
}

func TestParseContentRange(t *testing.T) {
	n, err := parseContentRange("0-24/3573")
	require.NoError(t, err)
	assert.Equal(t, 3573, n)

	n, err = parseContentRange("*/0")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = parseContentRange("0-24/")
	assert.Error(t, err)
}

func TestUserCreate_SendsCredentialsAndMapsDuplicate(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		if calls == 1 {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`[{"id":7,"username":"striker9","created_at":"2024-05-01T10:00:00Z"}]`))
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	})
	repo := NewRepositories(client).UserRepository

	user := &models.User{Username: "striker9", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	err := repo.Create(context.Background(), &models.User{Username: "Striker9", Password: "hash"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
}

func TestUserGetByUsername_NarrowsWildcardMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ilike.keeper_1", r.URL.Query().Get("username"))
		_, _ = w.Write([]byte(`[{"id":1,"username":"keeperX1"},{"id":2,"username":"Keeper_1"}]`))
	})
	repo := NewRepositories(client).UserRepository

	user, err := repo.GetByUsername(context.Background(), "keeper_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
}

func TestUserSearch_EscapesLikeMetacharacters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		pattern := `"*a\\_c\\%*"`
		assert.Equal(t, "(username.ilike."+pattern+",full_name.ilike."+pattern+",club.ilike."+pattern+")",
			r.URL.Query().Get("or"))
		_, _ = w.Write([]byte(`[]`))
	})
	repo := NewRepositories(client).UserRepository

	users, err := repo.Search(context.Background(), "a_c%", 10)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestPostList_FiltersAndLikeAggregate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, postSelect, q.Get("select"))
		assert.Equal(t, "eq.video", q.Get("type"))
		assert.Equal(t, "in.(3,4)", q.Get("author_id"))
		assert.Equal(t, "created_at.desc,id.desc", q.Get("order"))
		_, _ = w.Write([]byte(`[{"id":11,"author_id":3,"type":"video","content":"goal","likes":[{"count":4}]}]`))
	})
	repo := NewRepositories(client).PostRepository

	posts, err := repo.List(context.Background(), models.PostFilter{Type: models.PostTypeVideo, AuthorIDs: []int64{3, 4, 3}})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 4, posts[0].Likes)

	// an empty author set short-circuits without a request
	posts, err = repo.List(context.Background(), models.PostFilter{AuthorIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLikeToggle(t *testing.T) {
	liked := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/rest/v1/posts":
			_, _ = w.Write([]byte(`[{"id":5}]`))
		case r.Method == http.MethodDelete:
			if liked {
				liked = false
				_, _ = w.Write([]byte(`[{"post_id":5,"user_id":2}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPost:
			liked = true
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodHead:
			assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
			if liked {
				w.Header().Set("Content-Range", "0-0/1")
			} else {
				w.Header().Set("Content-Range", "*/0")
			}
		}
	})
	repo := NewRepositories(client).LikeRepository

	on, likes, err := repo.Toggle(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, 1, likes)

	on, likes, err = repo.Toggle(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, 0, likes)
}

func TestLikeToggle_MissingPost(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	_, _, err := NewRepositories(client).LikeRepository.Toggle(context.Background(), 99, 1)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestConnectionCreate_RejectsExistingPair(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pairFilter(2, 1), r.URL.Query().Get("or"))
		_, _ = w.Write([]byte(`[{"id":3,"requester_id":1,"receiver_id":2,"status":"declined"}]`))
	})
	err := NewRepositories(client).ConnectionRepository.Create(context.Background(), &models.Connection{RequesterID: 2, ReceiverID: 1})
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)
}

func TestConnectionUpdateStatus_Conditional(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.pending", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := NewRepositories(client).ConnectionRepository.UpdateStatus(context.Background(), 3, models.ConnectionPending, models.ConnectionAccepted)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)
}

func TestMessageCreate_UnknownReceiver(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23503","message":"violates foreign key constraint"}`))
	})
	err := NewRepositories(client).MessageRepository.Create(context.Background(), &models.Message{SenderID: 1, ReceiverID: 404, Content: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	hits := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	})
	repo := NewRepositories(client).EventRepository

	for i := 0; i < 2; i++ {
		_, err := repo.List(context.Background())
		require.Error(t, err)
	}
	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.Equal(t, 2, hits)
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	repo := NewRepositories(client).OpportunityRepository

	for i := 0; i < 4; i++ {
		_, err := repo.List(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrStorageUnavailable)
	}
}
