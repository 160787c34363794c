package medication

import (
	"context"

	"go.uber.org/zap"
)

// ServiceConfig holds tunables for the medication service.
type ServiceConfig struct {
	// DefaultBasePrice is the catalog price assumed when a create request
	// omits base_price. Clients never send it, yet total_cost depends on it.
	DefaultBasePrice float64
	// StrictLookup makes name lookups with multiple matches fail instead
	// of returning the oldest match.
	StrictLookup bool
}

// DefaultServiceConfig returns the defaults used by the API server.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{DefaultBasePrice: 100.00}
}

// Service exposes the medication create/lookup operations, orchestrating
// the store, resolver and cost calculator.
type Service struct {
	store    Store
	resolver *Resolver
	cfg      ServiceConfig
	logger   *zap.Logger
}

// NewService creates a medication service over the given store.
func NewService(store Store, cfg ServiceConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultBasePrice <= 0 {
		cfg.DefaultBasePrice = DefaultServiceConfig().DefaultBasePrice
	}
	resolver := NewResolver(store)
	resolver.Strict = cfg.StrictLookup
	return &Service{store: store, resolver: resolver, cfg: cfg, logger: logger}
}

// CreateInput carries the fields of a create request. BasePrice is a
// pointer so an omitted price can fall back to the catalog default.
type CreateInput struct {
	Code               string
	Name               string
	CoveragePercentage float64
	Deductible         float64
	BasePrice          *float64
}

// UpdateInput carries a partial update; nil fields keep their value.
type UpdateInput struct {
	Name               *string
	CoveragePercentage *float64
	Deductible         *float64
	BasePrice          *float64
}

// Response is the record plus its freshly derived total cost.
type Response struct {
	Code               string  `json:"code"`
	MedicationName     string  `json:"medication_name"`
	CoveragePercentage float64 `json:"coverage_percentage"`
	Deductible         float64 `json:"deductible"`
	BasePrice          float64 `json:"base_price"`
	TotalCost          float64 `json:"total_cost"`
}

// Create validates and persists a new medication, returning the stored
// record with its computed total cost. A missing code is generated; a
// missing base price falls back to the catalog default.
func (s *Service) Create(ctx context.Context, in CreateInput) (Response, error) {
	rec := Record{
		Code:               in.Code,
		Name:               in.Name,
		CoveragePercentage: in.CoveragePercentage,
		Deductible:         in.Deductible,
		BasePrice:          s.cfg.DefaultBasePrice,
	}
	if in.BasePrice != nil {
		rec.BasePrice = *in.BasePrice
	}
	if rec.Code == "" {
		rec.Code = NewCode()
	}
	if err := rec.Validate(); err != nil {
		return Response{}, err
	}

	stored, err := s.store.Put(ctx, rec)
	if err != nil {
		return Response{}, err
	}

	s.logger.Info("medication created",
		zap.String("code", stored.Code),
		zap.String("name", stored.Name),
	)
	return s.respond(stored)
}

// Query resolves a code/name lookup and computes total_cost fresh. The
// cost is never cached: coverage or deductible may have changed since the
// record was created.
func (s *Service) Query(ctx context.Context, code, name string) (Response, error) {
	rec, err := s.resolver.Resolve(ctx, code, name)
	if err != nil {
		return Response{}, err
	}
	return s.respond(rec)
}

// Update applies a partial update to an existing medication. The code is
// immutable and identifies the record.
func (s *Service) Update(ctx context.Context, code string, in UpdateInput) (Response, error) {
	rec, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return Response{}, err
	}

	if in.Name != nil {
		rec.Name = *in.Name
	}
	if in.CoveragePercentage != nil {
		rec.CoveragePercentage = *in.CoveragePercentage
	}
	if in.Deductible != nil {
		rec.Deductible = *in.Deductible
	}
	if in.BasePrice != nil {
		rec.BasePrice = *in.BasePrice
	}
	if err := rec.Validate(); err != nil {
		return Response{}, err
	}

	stored, err := s.store.Update(ctx, rec)
	if err != nil {
		return Response{}, err
	}

	s.logger.Info("medication updated", zap.String("code", stored.Code))
	return s.respond(stored)
}

// Delete removes a medication and returns the deleted record's code.
func (s *Service) Delete(ctx context.Context, code string) (Record, error) {
	rec, err := s.store.Delete(ctx, code)
	if err != nil {
		return Record{}, err
	}
	s.logger.Info("medication deleted", zap.String("code", rec.Code))
	return rec, nil
}

func (s *Service) respond(rec Record) (Response, error) {
	total, err := rec.TotalCost()
	if err != nil {
		return Response{}, NewError(CodeInternal, "stored record failed cost computation", err)
	}
	return Response{
		Code:               rec.Code,
		MedicationName:     rec.Name,
		CoveragePercentage: rec.CoveragePercentage,
		Deductible:         rec.Deductible,
		BasePrice:          rec.BasePrice,
		TotalCost:          total,
	}, nil
}
