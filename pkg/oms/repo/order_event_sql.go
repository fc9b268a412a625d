package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/limitbook/pkg/oms/model"
)

type OrderEventSQLRepo struct {
	db *gorm.DB
}

func NewOrderEventSQLRepo(db *gorm.DB) *OrderEventSQLRepo {
	return &OrderEventSQLRepo{
		db: db,
	}
}

func (s *OrderEventSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Create inserts one event; replays of the same event id are ignored so the
// worker can redeliver safely.
func (s *OrderEventSQLRepo) Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error) {
	return record, s.dbWithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record).Error
}

func (s *OrderEventSQLRepo) BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error) {
	if len(records) == 0 {
		return records, nil
	}
	return records, s.dbWithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(records).Error
}

func (s *OrderEventSQLRepo) ListByOrderID(ctx context.Context, orderID int64) ([]*model.OrderEvent, error) {
	var out []*model.OrderEvent
	err := s.dbWithContext(ctx).
		Where("order_id = ?", orderID).
		Order("timestamp asc").
		Find(&out).Error
	return out, err
}
