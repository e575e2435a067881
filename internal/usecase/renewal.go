package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/extract"
	"gitlab.com/timkado/api/agency-core/internal/llm"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/renewal"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// RenewalComparison is the outcome of a renewal comparison request.
type RenewalComparison struct {
	Status     string             `json:"status"`
	Provider   string             `json:"provider"`
	Context    renewal.Context    `json:"context"`
	Comparison renewal.Comparison `json:"comparison"`
	Documents  []string           `json:"documents"`
	Skipped    []string           `json:"skipped,omitempty"`
}

// GenerateRenewalComparison asks a text generation provider to compare the
// documents attached to a policy and draft a client email. The provider name
// is checked before anything else; a policy without documents never reaches
// the provider.
func (s *Service) GenerateRenewalComparison(ctx context.Context, policyID int64, providerName string) (*RenewalComparison, error) {
	if !llm.Supported(providerName) {
		return nil, fmt.Errorf("%w: %q (supported: %s, %s)", apperrors.ErrUnsupportedProvider, providerName, llm.ProviderAnthropic, llm.ProviderOpenAI)
	}
	providerName = strings.ToLower(strings.TrimSpace(providerName))
	log := logger.FromContext(ctx).With(zap.Int64("policy_id", policyID), zap.String("provider", providerName))

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	policy, err := s.repo.FindPolicy(ctx, access.PolicyScope(p), policyID)
	if err != nil {
		return nil, err
	}
	if len(policy.Documents) == 0 {
		return nil, fmt.Errorf("%w: policy %d", apperrors.ErrNoDocuments, policyID)
	}
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	docs, used, skipped := s.renewalDocuments(ctx, policy.Documents)
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: none of the %d documents of policy %d could be read", apperrors.ErrNoDocuments, len(policy.Documents), policyID)
	}

	rc, err := s.renewalContext(ctx, policy.BusinessID)
	if err != nil {
		return nil, err
	}
	system, err := renewal.SystemPrompt(rc)
	if err != nil {
		return nil, err
	}
	user, err := renewal.UserPrompt(docs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := provider.Complete(ctx, system, user)
	if err != nil {
		log.Error("Renewal comparison failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		if !errors.Is(err, apperrors.ErrExternalService) {
			err = fmt.Errorf("%w: %w", apperrors.ErrExternalService, err)
		}
		return nil, err
	}

	comparison := renewal.Parse(response)
	if !comparison.Parsed() {
		log.Warn("Renewal response could not be parsed", zap.String("parsing_error", comparison.ParsingError))
	}
	log.Info("Renewal comparison generated",
		zap.Int("documents", len(docs)),
		zap.Int("skipped", len(skipped)),
		zap.Duration("duration", time.Since(start)),
	)
	return &RenewalComparison{
		Status:     "success",
		Provider:   provider.Name(),
		Context:    rc,
		Comparison: comparison,
		Documents:  used,
		Skipped:    skipped,
	}, nil
}

// renewalDocuments extracts the text of every document. Unreadable ones are
// logged and skipped.
func (s *Service) renewalDocuments(ctx context.Context, uploads []model.UploadedBusinessDocument) ([]renewal.Document, []string, []string) {
	log := logger.FromContext(ctx)

	sources := make([]extract.Source, 0, len(uploads))
	for _, up := range uploads {
		path := up.FilePath
		sources = append(sources, extract.Source{
			ID:          up.ID,
			Name:        up.Name,
			ContentType: up.ContentType,
			Load: func(ctx context.Context) ([]byte, error) {
				if s.files == nil {
					return nil, errors.New("file storage is not configured")
				}
				return s.files.Read(ctx, path)
			},
		})
	}

	var (
		docs          []renewal.Document
		used, skipped []string
	)
	for _, res := range s.pool.ExtractAll(ctx, sources) {
		if res.Err != nil {
			log.Warn("Skipping unreadable policy document",
				zap.Int64("uploaded_document_id", res.Source.ID),
				zap.String("name", res.Source.Name),
				zap.Error(res.Err),
			)
			skipped = append(skipped, res.Source.Name)
			continue
		}
		docs = append(docs, renewal.Document{Name: res.Source.Name, Content: res.Text})
		used = append(used, res.Source.Name)
	}
	return docs, used, skipped
}

func (s *Service) renewalContext(ctx context.Context, businessID int64) (renewal.Context, error) {
	business, err := s.repo.FindBusinessWithOwner(ctx, businessID)
	if err != nil {
		return renewal.Context{}, err
	}
	var members []model.AgencyUser
	if business.Customer != nil && business.Customer.Agency != nil {
		members, err = s.repo.ListAgencyMembers(ctx, business.Customer.Agency.ID)
		if err != nil {
			return renewal.Context{}, err
		}
	}
	return renewal.ResolveContext(business, members), nil
}
