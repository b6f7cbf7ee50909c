package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/footlink/internal/app/migrations"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/db"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

// openTestRepos connects to FOOTLINK_TEST_DATABASE_URL, applies migrations and truncates all tables.
func openTestRepos(t *testing.T) *repositories.Repositories {
	t.Helper()

	dsn := os.Getenv("FOOTLINK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FOOTLINK_TEST_DATABASE_URL not set")
	}

	pg, err := db.Connect(dsn, db.PoolOptions{MaxConns: 10})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, migrations.NewMigrator(pg.Pool, zerolog.Nop()).MigrateFromDirectory(ctx, "../../../../migrations"))

	_, err = pg.Pool.Exec(ctx, `TRUNCATE messages, events, opportunities, connections, comments, likes, posts, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	repos := NewRepositories(pg)
	t.Cleanup(repos.Shutdown)
	return repos
}

func mustCreateUser(t *testing.T, repos *repositories.Repositories, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, repos.UserRepository.Create(context.Background(), user))
	return user
}

func TestPostgres_UserUniqueness(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	mustCreateUser(t, repos, "winger7")
	err := repos.UserRepository.Create(ctx, &models.User{Username: "WINGER7", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)

	bio := "Left footed"
	user, err := repos.UserRepository.GetByUsername(ctx, "winger7")
	require.NoError(t, err)
	updated, err := repos.UserRepository.Update(ctx, user.ID, models.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Left footed", updated.Bio)
}

func TestPostgres_LikeToggleAndCount(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	a := mustCreateUser(t, repos, "a")
	b := mustCreateUser(t, repos, "b")
	post := &models.Post{AuthorID: a.ID, Content: "Hello", Type: models.PostTypeStats, StatsData: map[string]any{"goals": 2}}
	require.NoError(t, repos.PostRepository.Create(ctx, post))

	liked, likes, err := repos.LikeRepository.Toggle(ctx, post.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, likes)

	stored, err := repos.PostRepository.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Likes)
	assert.EqualValues(t, 2, stored.StatsData["goals"])

	liked, likes, err = repos.LikeRepository.Toggle(ctx, post.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, likes)

	_, _, err = repos.LikeRepository.Toggle(ctx, 9999, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestPostgres_ConcurrentLikes(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	author := mustCreateUser(t, repos, "author")
	post := &models.Post{AuthorID: author.ID, Content: "Hello", Type: models.PostTypeText}
	require.NoError(t, repos.PostRepository.Create(ctx, post))

	fans := make([]*models.User, 8)
	for i := range fans {
		fans[i] = mustCreateUser(t, repos, fmt.Sprintf("fan%d", i))
	}

	var wg sync.WaitGroup
	for _, fan := range fans {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, _, err := repos.LikeRepository.Toggle(ctx, post.ID, userID)
			assert.NoError(t, err)
		}(fan.ID)
	}
	wg.Wait()

	count, err := repos.LikeRepository.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, len(fans), count)
}

func TestPostgres_ConnectionPairAndStatus(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	a := mustCreateUser(t, repos, "a")
	b := mustCreateUser(t, repos, "b")

	conn := &models.Connection{RequesterID: a.ID, ReceiverID: b.ID}
	require.NoError(t, repos.ConnectionRepository.Create(ctx, conn))

	err := repos.ConnectionRepository.Create(ctx, &models.Connection{RequesterID: b.ID, ReceiverID: a.ID})
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)

	_, err = repos.ConnectionRepository.UpdateStatus(ctx, conn.ID, models.ConnectionPending, models.ConnectionAccepted)
	require.NoError(t, err)
	_, err = repos.ConnectionRepository.UpdateStatus(ctx, conn.ID, models.ConnectionPending, models.ConnectionDeclined)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)
}

func TestPostgres_SuggestionQueryOrdering(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	a := mustCreateUser(t, repos, "a")
	time.Sleep(5 * time.Millisecond)
	b := mustCreateUser(t, repos, "b")
	time.Sleep(5 * time.Millisecond)
	c := mustCreateUser(t, repos, "c")

	users, err := repos.UserRepository.ListExcluding(ctx, []int64{a.ID}, 5)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, c.ID, users[0].ID)
	assert.Equal(t, b.ID, users[1].ID)
}

func TestPostgres_MessagesAndComments(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	a := mustCreateUser(t, repos, "a")
	b := mustCreateUser(t, repos, "b")

	msg := &models.Message{SenderID: a.ID, ReceiverID: b.ID, Content: "Trial on Monday?"}
	require.NoError(t, repos.MessageRepository.Create(ctx, msg))
	_, err := repos.MessageRepository.MarkRead(ctx, msg.ID, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
	read, err := repos.MessageRepository.MarkRead(ctx, msg.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	post := &models.Post{AuthorID: a.ID, Content: "Hello", Type: models.PostTypeText}
	require.NoError(t, repos.PostRepository.Create(ctx, post))
	for _, text := range []string{"one", "two"} {
		require.NoError(t, repos.CommentRepository.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: b.ID, Content: text}))
	}
	comments, err := repos.CommentRepository.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Content)
}
