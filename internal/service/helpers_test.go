package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opsdesk/helpdesk/internal/authz"
	"github.com/opsdesk/helpdesk/internal/config"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/testutil/memstore"
)

type testEnv struct {
	store      *memstore.Store
	dispatcher *memstore.Dispatcher
	revoker    *memstore.Revoker
	auth       *AuthService
	tickets    *TicketService
	comments   *CommentService
	users      *UserService
	dashboard  *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	dispatcher := &memstore.Dispatcher{}
	revoker := &memstore.Revoker{}
	authorizer, err := authz.NewAuthorizer(authz.Config{})
	require.NoError(t, err)

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", SessionTTLMinutes: 60, BcryptCost: 4}}
	userRepo := store.Users()
	ticketRepo := store.Tickets()
	commentRepo := store.Comments()

	return &testEnv{
		store:      store,
		dispatcher: dispatcher,
		revoker:    revoker,
		auth:       NewAuthService(cfg, AuthDependencies{UserRepo: userRepo, Revoker: revoker}),
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:  ticketRepo,
			CommentRepo: commentRepo,
			HistoryRepo: store.History(),
			UserRepo:    userRepo,
			Authorizer:  authorizer,
			Dispatcher:  dispatcher,
		}),
		comments: NewCommentService(CommentDependencies{
			CommentRepo: commentRepo,
			TicketRepo:  ticketRepo,
			Authorizer:  authorizer,
			Dispatcher:  dispatcher,
		}),
		users: NewUserService(UserDependencies{
			UserRepo:   userRepo,
			Authorizer: authorizer,
			Dispatcher: dispatcher,
		}),
		dashboard: NewDashboardService(ticketRepo, authorizer),
	}
}

// seedUser registers an account, promotes it and logs it in.
func (e *testEnv) seedUser(t *testing.T, name string, role domain.Role) domain.Identity {
	t.Helper()
	ctx := context.Background()
	email := name + "@example.com"
	_, err := e.auth.Register(ctx, name, email, "pw-"+name)
	require.NoError(t, err)
	if role != domain.RoleUser {
		_, err = e.users.SetRoleByEmail(ctx, email, role)
		require.NoError(t, err)
	}
	_, _, identity, err := e.auth.Login(ctx, email, "pw-"+name)
	require.NoError(t, err)
	return identity
}

func (e *testEnv) seedTicket(t *testing.T, owner domain.Identity, title string) *domain.Ticket {
	t.Helper()
	ticket, err := e.tickets.Create(context.Background(), owner, TicketCreateInput{Title: title, Description: title + " details"})
	require.NoError(t, err)
	return ticket
}
