package catalog

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/cache"
	"github.com/Additional-Code/planta/internal/config"
	"github.com/Additional-Code/planta/internal/entity"
	repo "github.com/Additional-Code/planta/internal/repository/catalog"
	"github.com/Additional-Code/planta/internal/service"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/planta/service/catalog")

const (
	slidersKey = "catalog:sliders"
	defectsKey = "catalog:defects"
)

// Store is the slice of the catalog repository the service needs.
type Store interface {
	Sliders(ctx context.Context) ([]entity.Slider, error)
	Defects(ctx context.Context) ([]entity.Defect, error)
}

// Service serves slider and defect reference data, cached since it only
// changes through external tooling.
type Service struct {
	store    Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return New(p.Repository, p.Cache, p.Config.Cache.CatalogTTL, p.Logger)
}

// New builds a Service from explicit collaborators.
func New(store Store, c cache.Store, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: c, cacheTTL: ttl, logger: logger}
}

// Sliders lists every slider.
func (s *Service) Sliders(ctx context.Context) ([]entity.Slider, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Sliders")
	defer span.End()

	return cached(ctx, s, slidersKey, func(ctx context.Context) ([]entity.Slider, error) {
		sliders, err := s.store.Sliders(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, service.StoreError(err, "failed to load sliders")
		}
		return sliders, nil
	})
}

// Defects lists every defect.
func (s *Service) Defects(ctx context.Context) ([]entity.Defect, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Defects")
	defer span.End()

	return cached(ctx, s, defectsKey, func(ctx context.Context) ([]entity.Defect, error) {
		defects, err := s.store.Defects(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, service.StoreError(err, "failed to load defects")
		}
		return defects, nil
	})
}

// Invalidate drops cached reference data so the next read hits the store.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, slidersKey, defectsKey); err != nil {
		s.logger.Warn("catalog cache delete failed", zap.Error(err))
	}
}

// cached reads key from the cache, falling back to load and storing its
// result. Cache failures never fail the call.
func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache != nil {
		items, err := cache.GetJSON[[]T](ctx, s.cache, key)
		switch {
		case err == nil:
			return items, nil
		case errors.Is(err, cache.ErrCorrupt):
			s.logger.Warn("catalog cache entry corrupt", zap.String("key", key))
		case !errors.Is(err, cache.ErrCacheMiss):
			s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, items, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}
