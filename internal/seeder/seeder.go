package seeder

import (
	"context"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/internal/entity"
	servicecatalog "github.com/Additional-Code/planta/internal/service/catalog"
)

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

var (
	sampleSliders = []string{"S-10", "S-20", "S-30", "S-45"}
	sampleDefects = []string{"Rayado", "Golpe", "Rebaba", "Mancha", "Fisura"}
)

// Invalidator drops cached reference data after seeding.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db      *bun.DB
	catalog Invalidator
	logger  *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, catalog *servicecatalog.Service, logger *zap.Logger) *Seeder {
	return NewForDB(conns.Writer, catalog, logger)
}

// NewForDB constructs a Seeder for an already opened database.
func NewForDB(db *bun.DB, catalog Invalidator, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, catalog: catalog, logger: logger}
}

// Catalog seeds example sliders and defects if they are missing. Rows are
// matched by name, so running it twice inserts nothing new.
func (s *Seeder) Catalog(ctx context.Context) (int, error) {
	inserted := 0
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, name := range sampleSliders {
			ok, err := insertMissing(ctx, tx, &entity.Slider{Name: name}, "nombreslider", name)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		for _, name := range sampleDefects {
			ok, err := insertMissing(ctx, tx, &entity.Defect{Name: name}, "nombredefecto", name)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, database.Classify(err)
	}

	if inserted > 0 && s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	s.logger.Info("seeded catalog", zap.Int("inserted", inserted))
	return inserted, nil
}

// insertMissing inserts model unless a row with column = name exists.
// ON CONFLICT has no portable spelling across the supported dialects.
func insertMissing(ctx context.Context, tx bun.Tx, model any, column, name string) (bool, error) {
	exists, err := tx.NewSelect().Model(model).Where("? = ?", bun.Ident(column), name).Exists(ctx)
	if err != nil || exists {
		return false, err
	}
	if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}
