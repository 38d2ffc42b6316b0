package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/auth"
	"github.com/hongminglow/mediavault/internal/http/respond"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/models"
)

// GateState is where a request stands on its way to a handler. States only
// move forward; a failure stops the request in the state it reached.
type GateState int

const (
	Unauthenticated GateState = iota
	TokenPresented
	TokenValidated
	RoleAuthorized
	Executed
)

func (s GateState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case TokenPresented:
		return "token_presented"
	case TokenValidated:
		return "token_validated"
	case RoleAuthorized:
		return "role_authorized"
	case Executed:
		return "executed"
	default:
		return "unknown"
	}
}

// Policy is the requirement a route places on its caller.
type Policy struct {
	MinLevel int
	// Fresh re-reads the caller's role from the user store instead of
	// trusting the token.
	Fresh bool
}

var (
	// Authenticated admits any valid token.
	Authenticated = Policy{MinLevel: auth.LevelViewer}
	// Moderator admits moderators and admins based on the token's role.
	Moderator = Policy{MinLevel: auth.LevelModerator}
	// AdminFresh admits admins only, checked against the stored role.
	AdminFresh = Policy{MinLevel: auth.LevelAdmin, Fresh: true}
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (models.Claims, error)
}

// RoleStore loads the authoritative role for a user.
type RoleStore interface {
	ResolveFromStore(ctx context.Context, userID int64) (models.Role, auth.PermissionSet, error)
}

// RejectObserver is told where rejected requests stopped.
type RejectObserver interface {
	GateRejected(state string)
}

// Gate authenticates and authorizes requests before they reach a handler.
type Gate struct {
	tokens   TokenVerifier
	roles    RoleStore
	logger   logging.Logger
	observer RejectObserver
}

func NewGate(tokens TokenVerifier, roles RoleStore, logger logging.Logger, observer RejectObserver) *Gate {
	return &Gate{
		tokens:   tokens,
		roles:    roles,
		logger:   logger.With("module", "gate"),
		observer: observer,
	}
}

// Require wraps next so it only runs for callers satisfying p. The caller's
// identity is available to next through auth.IdentityFrom.
func (g *Gate) Require(p Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, state, err := g.admit(r, p)
		if err != nil {
			if g.observer != nil {
				g.observer.GateRejected(state.String())
			}
			g.logger.Debug(r.Context(), "request rejected", "state", state.String(), "path", r.URL.Path, "err", err)
			respond.Failure(w, r, g.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		g.logger.Debug(r.Context(), "request handled", "state", Executed.String(), "user_id", id.Claims.UserID)
	})
}

// RequireFunc is Require for handler functions.
func (g *Gate) RequireFunc(p Policy, next http.HandlerFunc) http.Handler {
	return g.Require(p, next)
}

// admit walks the request through the gate states. It returns the state the
// request stopped in alongside any error.
func (g *Gate) admit(r *http.Request, p Policy) (auth.Identity, GateState, error) {
	var (
		token  string
		claims models.Claims
		id     auth.Identity
	)
	state := Unauthenticated
	for {
		switch state {
		case Unauthenticated:
			token = bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				return auth.Identity{}, state, fmt.Errorf("missing bearer token: %w", apperr.ErrAuthenticationMissing)
			}
			state = TokenPresented

		case TokenPresented:
			c, err := g.tokens.Verify(token)
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				return auth.Identity{}, state, fmt.Errorf("token expired: %w", apperr.ErrAuthenticationExpired)
			case err != nil:
				return auth.Identity{}, state, fmt.Errorf("invalid token: %w", apperr.ErrAuthenticationMissing)
			}
			claims = c
			state = TokenValidated

		case TokenValidated:
			perms := auth.Resolve(claims.Role)
			if p.Fresh {
				role, fresh, err := g.roles.ResolveFromStore(r.Context(), claims.UserID)
				if err != nil {
					return auth.Identity{}, state, err
				}
				claims.Role = role
				perms = fresh
			}
			if !perms.AtLeast(p.MinLevel) {
				return auth.Identity{}, state, fmt.Errorf("role %s: %w", claims.Role, apperr.ErrAuthorizationDenied)
			}
			id = auth.Identity{Claims: claims, Permissions: perms}
			state = RoleAuthorized

		case RoleAuthorized:
			return id, state, nil

		default:
			return auth.Identity{}, state, fmt.Errorf("gate in unexpected state %s", state)
		}
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
