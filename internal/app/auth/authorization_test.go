package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories/memory"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

func TestAuthorizationService(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	authz := NewAuthorizationService(repos.ConnectionRepository, repos.MessageRepository)

	for _, name := range []string{"alice", "bruno"} {
		require.NoError(t, repos.UserRepository.Create(ctx, &models.User{Username: name, Password: "x"}))
	}

	conn := &models.Connection{RequesterID: 1, ReceiverID: 2}
	require.NoError(t, repos.ConnectionRepository.Create(ctx, conn))

	t.Run("profile owner", func(t *testing.T) {
		assert.NoError(t, authz.ValidateProfileOwner(1, 1))
		assert.ErrorIs(t, authz.ValidateProfileOwner(1, 2), apperrors.ErrPermissionDenied)
	})

	t.Run("connection receiver", func(t *testing.T) {
		got, err := authz.ValidateConnectionReceiver(ctx, 2, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, conn.ID, got.ID)

		_, err = authz.ValidateConnectionReceiver(ctx, 1, conn.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		_, err = authz.ValidateConnectionReceiver(ctx, 2, 999)
		assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)
	})

	t.Run("message participant", func(t *testing.T) {
		msg := &models.Message{SenderID: 1, ReceiverID: 2, Content: "hi"}
		require.NoError(t, repos.MessageRepository.Create(ctx, msg))

		_, err := authz.ValidateMessageParticipant(ctx, 2, msg.ID)
		assert.NoError(t, err)
		_, err = authz.ValidateMessageParticipant(ctx, 3, msg.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}
