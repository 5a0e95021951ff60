package order

import (
	"context"
	"database/sql"
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

var repoTracer = otel.Tracer("github.com/Additional-Code/planta/repository/order")

var (
	// ErrNotFound is returned when an order line is missing.
	ErrNotFound = errors.New("order line not found")
	// ErrNoEligibleLines is returned by Finalize when every line is already assigned.
	ErrNoEligibleLines = errors.New("no order lines eligible for a new order")
)

// Repository encapsulates read/write access for order lines and orders.
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

// CreateLine persists a new order line using the write connection.
func (r *Repository) CreateLine(ctx context.Context, line *entity.OrderLine) error {
	if line == nil {
		return errors.New("nil order line")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CreateLine", trace.WithAttributes(attribute.Int64("slider.id", line.SliderID)))
	defer span.End()

	if _, err := r.writer.NewInsert().Model(line).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return database.Classify(err)
	}
	return nil
}

// LinesByStatus lists order lines in the given state ordered by id.
func (r *Repository) LinesByStatus(ctx context.Context, status string) ([]entity.OrderLine, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.LinesByStatus", trace.WithAttributes(attribute.String("line.status", status)))
	defer span.End()

	lines := make([]entity.OrderLine, 0)
	err := r.reader.NewSelect().
		Model(&lines).
		Where("estado = ?", status).
		Order("id_registropedido ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, database.Classify(err)
	}
	return lines, nil
}

// UpdateLine overwrites slider, sequence and quantity of an existing line.
// The status column is left alone.
func (r *Repository) UpdateLine(ctx context.Context, line *entity.OrderLine) error {
	if line == nil {
		return errors.New("nil order line")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateLine", trace.WithAttributes(attribute.Int64("line.id", line.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.OrderLine)(nil)).
		Set("id_slider = ?", line.SliderID).
		Set("secuencia = ?", line.Sequence).
		Set("cantidad = ?", line.Quantity).
		Where("id_registropedido = ?", line.ID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return database.Classify(err)
	}
	return r.expectRow(ctx, res, line.ID)
}

// DeleteLine removes an order line whatever its status.
func (r *Repository) DeleteLine(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.DeleteLine", trace.WithAttributes(attribute.Int64("line.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.OrderLine)(nil)).
		Where("id_registropedido = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return database.Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// expectRow turns a zero rows-affected update into ErrNotFound. MySQL
// reports 0 when the new values equal the old ones, so a zero count is
// confirmed with a lookup before giving up.
func (r *Repository) expectRow(ctx context.Context, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return nil
	}
	exists, err := r.writer.NewSelect().
		Model((*entity.OrderLine)(nil)).
		Where("id_registropedido = ?", id).
		Exists(ctx)
	if err != nil {
		return database.Classify(err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// Finalized describes the order created by Finalize.
type Finalized struct {
	Number       int64
	LineIDs      []int64
	RegisteredAt time.Time
}

// Finalize groups every line not yet assigned under a new order number in a
// single transaction. The number is max(numero_pedido)+1; a concurrent run
// that picked the same number fails on the pedido_numero primary key and
// rolls back.
func (r *Repository) Finalize(ctx context.Context, registeredAt time.Time) (*Finalized, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Finalize")
	defer span.End()

	result := &Finalized{RegisteredAt: registeredAt}
	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var next int64
		if err := tx.NewSelect().
			Model((*entity.Order)(nil)).
			ColumnExpr("COALESCE(MAX(numero_pedido), 0) + 1").
			Scan(ctx, &next); err != nil {
			return err
		}

		var lines []entity.OrderLine
		if err := tx.NewSelect().
			Model(&lines).
			Column("id_registropedido").
			Where("estado IS NULL").
			WhereOr("estado <> ?", entity.StatusAssigned).
			Order("id_registropedido ASC").
			Scan(ctx); err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrNoEligibleLines
		}

		claim := &entity.OrderNumber{Number: next, RegisteredAt: registeredAt}
		if _, err := tx.NewInsert().Model(claim).Exec(ctx); err != nil {
			return err
		}

		ids := make([]int64, len(lines))
		orders := make([]entity.Order, len(lines))
		for i, line := range lines {
			ids[i] = line.ID
			orders[i] = entity.Order{LineID: line.ID, Number: next, RegisteredAt: registeredAt}
		}
		if _, err := tx.NewInsert().Model(&orders).Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model((*entity.OrderLine)(nil)).
			Set("estado = ?", entity.StatusAssigned).
			Where("id_registropedido IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return err
		}

		result.Number = next
		result.LineIDs = ids
		return nil
	})
	if errors.Is(err, ErrNoEligibleLines) {
		span.SetStatus(codes.Error, "no eligible lines")
		return nil, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalize failed")
		return nil, database.Classify(err)
	}
	span.SetAttributes(
		attribute.Int64("order.number", result.Number),
		attribute.Int("order.lines", len(result.LineIDs)),
	)
	return result, nil
}

// Orders lists every order row.
func (r *Repository) Orders(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Orders")
	defer span.End()

	orders := make([]entity.Order, 0)
	err := r.reader.NewSelect().
		Model(&orders).
		Order("numero_pedido ASC", "id_registropedido ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, database.Classify(err)
	}
	return orders, nil
}

// Details joins orders with their lines and sliders, newest order first.
func (r *Repository) Details(ctx context.Context) ([]entity.OrderLineDetail, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Details")
	defer span.End()

	rows := make([]entity.OrderLineDetail, 0)
	err := r.detailQuery(r.reader).
		OrderExpr("p.numero_pedido DESC").
		OrderExpr("rp.id_registropedido ASC").
		Scan(ctx, &rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, database.Classify(err)
	}
	return rows, nil
}

// DetailsByNumber returns the lines of one order.
func (r *Repository) DetailsByNumber(ctx context.Context, number int64) ([]entity.OrderLineDetail, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.DetailsByNumber", trace.WithAttributes(attribute.Int64("order.number", number)))
	defer span.End()

	rows := make([]entity.OrderLineDetail, 0)
	err := r.detailQuery(r.reader).
		Where("p.numero_pedido = ?", number).
		OrderExpr("rp.id_registropedido ASC").
		Scan(ctx, &rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, database.Classify(err)
	}
	return rows, nil
}

func (r *Repository) detailQuery(db *bun.DB) *bun.SelectQuery {
	return db.NewSelect().
		TableExpr("pedido AS p").
		ColumnExpr("p.numero_pedido").
		ColumnExpr("rp.id_slider").
		ColumnExpr("s.nombreslider").
		ColumnExpr("rp.secuencia").
		ColumnExpr("rp.cantidad").
		Join("JOIN registropedido AS rp ON rp.id_registropedido = p.id_registropedido").
		Join("JOIN sliders AS s ON s.id_sliders = rp.id_slider")
}
