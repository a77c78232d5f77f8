package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func actorOf(identity domain.Identity) events.Actor {
	return events.Actor{UserID: identity.UserID, Role: identity.Role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// requireID rejects ids that cannot name a row, so they never reach Postgres
// as a malformed uuid.
func requireID(id, resource, redirect string) (string, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.WithRedirect(apperrors.NewNotFound(resource, map[string]any{"id": id}), redirect)
	}
	return id, nil
}

func ticketPath(ticketID string) string {
	return "/tickets/" + ticketID
}
