package auth

import (
	"context"
	"log/slog"

	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// IdentityResolver turns a bearer token into the user it was issued for.
// It is the single choke point for authenticating protected calls: the auth
// middleware hands every extracted token to Resolve and nothing else, so no
// route can reach a task operation without passing through here.
type IdentityResolver struct {
	jwtService JWTService
	userStore  store.UserStore
	logger     *slog.Logger
}

// NewIdentityResolver creates a new IdentityResolver with the given dependencies.
// If logger is nil, a default logger will be used.
func NewIdentityResolver(
	jwtService JWTService,
	userStore store.UserStore,
	log *slog.Logger,
) *IdentityResolver {
	if log == nil {
		log = slog.Default()
	}

	return &IdentityResolver{
		jwtService: jwtService,
		userStore:  userStore,
		logger:     log.With(slog.String("component", "identity_resolver")),
	}
}

// Resolve validates the token and loads the user its subject claim names.
//
// Every failure collapses to ErrUnauthorized: a bad signature, an expired
// token, and a subject whose account no longer exists are deliberately
// indistinguishable to the caller, which prevents both token probing and
// account enumeration. The precise cause is still logged at debug level.
func (r *IdentityResolver) Resolve(ctx context.Context, tokenString string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if tokenString == "" {
		log.Debug("identity resolution failed: empty token")
		return nil, ErrUnauthorized
	}

	claims, err := r.jwtService.ValidateToken(ctx, tokenString)
	if err != nil {
		log.Debug("identity resolution failed: token validation",
			slog.String("error", err.Error()))
		return nil, ErrUnauthorized
	}

	user, err := r.userStore.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if store.IsNotFoundError(err) {
			// The account may have been deleted after the token was issued.
			log.Debug("identity resolution failed: subject has no account")
			return nil, ErrUnauthorized
		}
		log.Error("identity resolution failed: user lookup",
			slog.String("error", err.Error()))
		return nil, ErrUnauthorized
	}

	return user, nil
}
