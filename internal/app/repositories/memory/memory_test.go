package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

// steppingClock returns a clock that advances one second per call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestRepos(t *testing.T) *repositories.Repositories {
	t.Helper()
	return NewRepositories(WithClock(steppingClock()))
}

func createUser(t *testing.T, repos *repositories.Repositories, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, repos.UserRepository.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	user := createUser(t, repos, "striker9")
	assert.Equal(t, int64(1), user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	err := repos.UserRepository.Create(ctx, &models.User{Username: "Striker9"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)

	found, err := repos.UserRepository.GetByUsername(ctx, "striker9")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repos.UserRepository.GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_ListExcludingNewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	a := createUser(t, repos, "a")
	b := createUser(t, repos, "b")
	c := createUser(t, repos, "c")
	d := createUser(t, repos, "d")

	users, err := repos.UserRepository.ListExcluding(ctx, []int64{a.ID, c.ID}, 5)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, d.ID, users[0].ID)
	assert.Equal(t, b.ID, users[1].ID)

	users, err = repos.UserRepository.ListExcluding(ctx, nil, 3)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestUserRepository_UpdateAndSearch(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "midfielder")

	club := "Feyenoord"
	updated, err := repos.UserRepository.Update(ctx, user.ID, models.UserUpdate{Club: &club})
	require.NoError(t, err)
	assert.Equal(t, "Feyenoord", updated.Club)

	results, err := repos.UserRepository.Search(ctx, "feyen", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, user.ID, results[0].ID)
}

func TestLikeRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	author := createUser(t, repos, "author")
	fan := createUser(t, repos, "fan")

	post := &models.Post{AuthorID: author.ID, Content: "Hello", Type: models.PostTypeText}
	require.NoError(t, repos.PostRepository.Create(ctx, post))

	liked, likes, err := repos.LikeRepository.Toggle(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, likes)

	stored, err := repos.PostRepository.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Likes)

	liked, likes, err = repos.LikeRepository.Toggle(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, likes)

	_, _, err = repos.LikeRepository.Toggle(ctx, 404, fan.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestLikeRepository_ConcurrentTogglesKeepCountConsistent(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	author := createUser(t, repos, "author")
	post := &models.Post{AuthorID: author.ID, Content: "Hello", Type: models.PostTypeText}
	require.NoError(t, repos.PostRepository.Create(ctx, post))

	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, _, _ = repos.LikeRepository.Toggle(ctx, post.ID, userID)
		}(100 + i)
	}
	wg.Wait()

	count, err := repos.LikeRepository.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}

func TestPostRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	a := createUser(t, repos, "a")
	b := createUser(t, repos, "b")

	require.NoError(t, repos.PostRepository.Create(ctx, &models.Post{AuthorID: a.ID, Content: "one", Type: models.PostTypeText}))
	require.NoError(t, repos.PostRepository.Create(ctx, &models.Post{AuthorID: b.ID, Content: "two", Type: models.PostTypeVideo}))
	require.NoError(t, repos.PostRepository.Create(ctx, &models.Post{AuthorID: a.ID, Content: "three", Type: models.PostTypeVideo}))

	all, err := repos.PostRepository.List(ctx, models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Content)

	videos, err := repos.PostRepository.List(ctx, models.PostFilter{Type: models.PostTypeVideo, AuthorIDs: []int64{a.ID}})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "three", videos[0].Content)

	none, err := repos.PostRepository.List(ctx, models.PostFilter{AuthorIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommentRepository_AscendingOrder(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	a := createUser(t, repos, "a")
	post := &models.Post{AuthorID: a.ID, Content: "post", Type: models.PostTypeText}
	require.NoError(t, repos.PostRepository.Create(ctx, post))

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, repos.CommentRepository.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: a.ID, Content: text}))
	}

	comments, err := repos.CommentRepository.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i := 1; i < len(comments); i++ {
		assert.False(t, comments[i].CreatedAt.Before(comments[i-1].CreatedAt))
	}
	assert.Equal(t, "first", comments[0].Content)

	err = repos.CommentRepository.Create(ctx, &models.Comment{PostID: 77, AuthorID: a.ID, Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestConnectionRepository_PairUniquenessAndTransitions(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	conn := &models.Connection{RequesterID: 1, ReceiverID: 2}
	require.NoError(t, repos.ConnectionRepository.Create(ctx, conn))
	assert.Equal(t, models.ConnectionPending, conn.Status)

	err := repos.ConnectionRepository.Create(ctx, &models.Connection{RequesterID: 2, ReceiverID: 1})
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)

	found, err := repos.ConnectionRepository.FindBetween(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, conn.ID, found.ID)

	accepted, err := repos.ConnectionRepository.UpdateStatus(ctx, conn.ID, models.ConnectionPending, models.ConnectionAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, accepted.Status)

	_, err = repos.ConnectionRepository.UpdateStatus(ctx, conn.ID, models.ConnectionPending, models.ConnectionDeclined)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)

	_, err = repos.ConnectionRepository.UpdateStatus(ctx, 42, models.ConnectionPending, models.ConnectionAccepted)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)

	list, err := repos.ConnectionRepository.ListForUser(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMessageRepository_ConversationAndMarkRead(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	a := createUser(t, repos, "a")
	b := createUser(t, repos, "b")
	c := createUser(t, repos, "c")

	m1 := &models.Message{SenderID: a.ID, ReceiverID: b.ID, Content: "hi"}
	m2 := &models.Message{SenderID: b.ID, ReceiverID: a.ID, Content: "hey"}
	m3 := &models.Message{SenderID: c.ID, ReceiverID: a.ID, Content: "yo"}
	for _, m := range []*models.Message{m1, m2, m3} {
		require.NoError(t, repos.MessageRepository.Create(ctx, m))
	}

	conv, err := repos.MessageRepository.ListConversation(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, m1.ID, conv[0].ID)

	all, err := repos.MessageRepository.ListForUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repos.MessageRepository.MarkRead(ctx, m1.ID, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	read, err := repos.MessageRepository.MarkRead(ctx, m1.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	err = repos.MessageRepository.Create(ctx, &models.Message{SenderID: a.ID, ReceiverID: 99, Content: "?"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestEventRepository_DateAscending(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	later := &models.Event{Title: "Final", Date: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)}
	sooner := &models.Event{Title: "Trial", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repos.EventRepository.Create(ctx, later))
	require.NoError(t, repos.EventRepository.Create(ctx, sooner))

	events, err := repos.EventRepository.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Trial", events[0].Title)
}
