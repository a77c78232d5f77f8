package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

func TestAddComment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	agent := env.seedUser(t, "agent", domain.RoleAgent)
	ticket := env.seedTicket(t, alice, "t")

	for _, text := range []string{"", "   "} {
		_, err := env.comments.Add(ctx, alice, ticket.ID, text)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeEmptyComment))
		assert.Equal(t, "/tickets/"+ticket.ID, apperrors.ToDomainError(err).Redirect)
	}

	comment, err := env.comments.Add(ctx, alice, ticket.ID, "  Looks good ")
	require.NoError(t, err)
	assert.Equal(t, "Looks good", comment.Body)
	assert.Equal(t, "alice", comment.UserName)

	_, err = env.comments.Add(ctx, agent, ticket.ID, "On it")
	require.NoError(t, err)

	comments, err := env.comments.List(ctx, alice, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Looks good", comments[0].Body)
	assert.Equal(t, "On it", comments[1].Body)
	assert.Contains(t, env.dispatcher.Types(), events.EventCommentAdded)
}

func TestAddCommentOnMissingTicket(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", domain.RoleUser)

	_, err := env.comments.Add(context.Background(), alice, uuid.NewString(), "hello")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Zero(t, env.store.CommentCount())
}
