package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/platform/apierr"
	"github.com/yungbote/careerbridge-backend/internal/platform/ctxutil"
)

var errNotAuthenticated = apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))

// requestUserID returns the authenticated caller or a 401 API error.
func requestUserID(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, errNotAuthenticated
	}
	return id, nil
}
