package client

import (
	"context"
	"net/http"

	models "github.com/phillip/lifedrop-go/models"
)

type GuardResult int

const (
	GuardUnauthenticated GuardResult = iota
	GuardUnauthorized
	GuardAllowed
)

func (g GuardResult) String() string {
	switch g {
	case GuardUnauthenticated:
		return "unauthenticated"
	case GuardUnauthorized:
		return "unauthorized"
	case GuardAllowed:
		return "allowed"
	}
	return "unknown"
}

// RoleFetcher is the async role lookup a dashboard waits on; *Client
// satisfies it.
type RoleFetcher interface {
	Role(ctx context.Context) (*RoleStatus, error)
}

// Guard resolves the dashboard gate for roles. With no roles any active,
// registered user is allowed. Transport failures are returned as errors so
// the caller can keep showing its loading state or an error notice.
func Guard(ctx context.Context, f RoleFetcher, roles ...string) (GuardResult, error) {
	rs, err := f.Role(ctx)
	switch StatusOf(err) {
	case 0:
		if err != nil {
			return GuardUnauthenticated, err
		}
	case http.StatusUnauthorized:
		return GuardUnauthenticated, nil
	case http.StatusNotFound, http.StatusForbidden:
		return GuardUnauthorized, nil
	default:
		return GuardUnauthenticated, err
	}

	if rs.Status == models.StatusBlocked {
		return GuardUnauthorized, nil
	}
	if len(roles) == 0 {
		return GuardAllowed, nil
	}
	for _, r := range roles {
		if rs.Role == r {
			return GuardAllowed, nil
		}
	}
	return GuardUnauthorized, nil
}
