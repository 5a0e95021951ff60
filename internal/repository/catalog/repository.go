package catalog

import (
	"context"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/planta/repository/catalog")

// Repository reads the slider and defect reference tables.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires a repository backed by the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// Sliders returns every slider ordered by id.
func (r *Repository) Sliders(ctx context.Context) ([]entity.Slider, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Sliders")
	defer span.End()

	sliders := make([]entity.Slider, 0)
	if err := r.reader.NewSelect().Model(&sliders).Order("id_sliders ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, database.Classify(err)
	}
	span.SetAttributes(attribute.Int("catalog.count", len(sliders)))
	return sliders, nil
}

// Defects returns every defect ordered by id.
func (r *Repository) Defects(ctx context.Context) ([]entity.Defect, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Defects")
	defer span.End()

	defects := make([]entity.Defect, 0)
	if err := r.reader.NewSelect().Model(&defects).Order("id_defecto ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, database.Classify(err)
	}
	span.SetAttributes(attribute.Int("catalog.count", len(defects)))
	return defects, nil
}
