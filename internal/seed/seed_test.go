package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories/memory"
	"github.com/yigit/footlink/internal/pkg/auth"
)

func TestRun(t *testing.T) {
	auth.BcryptCost = 4
	ctx := context.Background()
	repos := memory.NewRepositories()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Run(ctx, repos, now, zerolog.Nop()))

	user, err := repos.UserRepository.GetByUsername(ctx, "marco_rossi")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.Password, DefaultPassword))

	posts, err := repos.PostRepository.List(ctx, models.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, posts, len(samplePosts))

	events, err := repos.EventRepository.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, len(sampleEvents))
	assert.Equal(t, "Scouting Showcase", events[0].Title, "events are listed soonest first")
	assert.Equal(t, now.AddDate(0, 0, 7), events[0].Date)

	conns, err := repos.ConnectionRepository.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, conns, 3)

	// second run leaves the data untouched
	require.NoError(t, Run(ctx, repos, now, zerolog.Nop()))
	opportunities, err := repos.OpportunityRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, opportunities, len(sampleOpportunities))
}
