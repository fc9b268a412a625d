package repo

import (
	"context"

	"github.com/joripage/limitbook/pkg/oms/model"
)

type IOrderEvent interface {
	Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error)
	BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]*model.OrderEvent, error)
}
