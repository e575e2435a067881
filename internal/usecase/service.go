package usecase

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/extract"
	"gitlab.com/timkado/api/agency-core/internal/filestore"
	"gitlab.com/timkado/api/agency-core/internal/llm"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
	"gitlab.com/timkado/api/agency-core/internal/voice"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, username string, isStaff bool) (string, time.Time, error)
}

// Dependencies are the collaborators of a Service. Repo is required; the rest
// are only needed by the operations that use them.
type Dependencies struct {
	Repo      storage.Repository
	Files     filestore.Store
	Extractor extract.Extractor
	Pool      *extract.Pool
	Providers *llm.Registry
	Caller    voice.Caller
	Tokens    TokenIssuer
}

// Service implements the agency workflows on top of scoped storage.
type Service struct {
	repo      storage.Repository
	authz     *access.Authorizer
	files     filestore.Store
	extractor extract.Extractor
	pool      *extract.Pool
	providers *llm.Registry
	caller    voice.Caller
	tokens    TokenIssuer
}

// NewService creates a new agency service
func NewService(deps Dependencies) *Service {
	extractor := deps.Extractor
	if extractor == nil {
		extractor = extract.StaticACORDExtractor{}
	}
	providers := deps.Providers
	if providers == nil {
		providers = llm.NewRegistry()
	}
	return &Service{
		repo:      deps.Repo,
		authz:     access.NewAuthorizer(deps.Repo),
		files:     deps.Files,
		extractor: extractor,
		pool:      deps.Pool,
		providers: providers,
		caller:    deps.Caller,
		tokens:    deps.Tokens,
	}
}

// principal returns the authenticated actor of ctx.
func principal(ctx context.Context) (tenant.Principal, error) {
	p, err := tenant.PrincipalFromContext(ctx)
	if err != nil {
		return tenant.Principal{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}
	return p, nil
}
