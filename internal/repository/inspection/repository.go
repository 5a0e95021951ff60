package inspection

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/planta/repository/inspection")

// Repository encapsulates access to the inspection sheet.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create inserts a record; the generated id is set on rec.
func (r *Repository) Create(ctx context.Context, rec *entity.InspectionRecord) error {
	if rec == nil {
		return errors.New("nil inspection record")
	}
	ctx, span := repoTracer.Start(ctx, "InspectionRepository.Create", trace.WithAttributes(
		attribute.Int64("slider.id", rec.SliderID),
		attribute.Int64("defect.id", rec.DefectID),
	))
	defer span.End()

	if _, err := r.writer.NewInsert().Model(rec).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return database.Classify(err)
	}
	return nil
}

// Between lists records dated in [from, to), newest id first.
func (r *Repository) Between(ctx context.Context, from, to time.Time) ([]entity.InspectionRecord, error) {
	ctx, span := repoTracer.Start(ctx, "InspectionRepository.Between", trace.WithAttributes(
		attribute.String("range.from", from.Format(time.DateOnly)),
		attribute.String("range.to", to.Format(time.DateOnly)),
	))
	defer span.End()

	records := make([]entity.InspectionRecord, 0)
	err := r.reader.NewSelect().
		Model(&records).
		Where("fecha >= ?", from).
		Where("fecha < ?", to).
		Order("id_inspeccion DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, database.Classify(err)
	}
	return records, nil
}
