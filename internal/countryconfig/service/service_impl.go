package service

import (
	"context"
	"strings"
	"sync"

	"github.com/smallbiznis/causeway/internal/countryconfig/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository

	mu    sync.RWMutex
	cache map[string]domain.CountryConfig
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("countryconfig.service"),
		repo:  p.Repo,
		cache: make(map[string]domain.CountryConfig),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.CountryConfig, error) {
	configs, err := s.repo.List(ctx, s.db)
	if err != nil || len(configs) == 0 {
		if err != nil {
			s.log.Warn("country catalog unavailable, serving compiled defaults", zap.Error(err))
		}
		return domain.Defaults(), nil
	}

	s.mu.Lock()
	for _, config := range configs {
		s.cache[config.Code] = config
	}
	s.mu.Unlock()

	return configs, nil
}

func (s *Service) Resolve(ctx context.Context, code string) (domain.CountryConfig, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.CountryConfig{}, domain.ErrCountryNotFound
	}

	s.mu.RLock()
	cached, ok := s.cache[code]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	config, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		s.log.Warn("country lookup failed, falling back to compiled defaults",
			zap.String("code", code), zap.Error(err))
		if fallback, ok := defaultFor(code); ok {
			return fallback, nil
		}
		return domain.CountryConfig{}, domain.ErrCountryNotFound
	}
	if config == nil {
		if fallback, ok := defaultFor(code); ok {
			return fallback, nil
		}
		return domain.CountryConfig{}, domain.ErrCountryNotFound
	}

	s.mu.Lock()
	s.cache[code] = *config
	s.mu.Unlock()

	return *config, nil
}

// ValidateField delegates to the pure rule evaluation in the domain
// package, so no network call happens per keystroke.
func (s *Service) ValidateField(field, value, code string) domain.FieldResult {
	return domain.Validate(field, value, code)
}

func defaultFor(code string) (domain.CountryConfig, bool) {
	for _, config := range domain.Defaults() {
		if config.Code == code {
			return config, true
		}
	}
	return domain.CountryConfig{}, false
}
