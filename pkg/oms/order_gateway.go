package oms

import (
	"context"

	"github.com/joripage/limitbook/pkg/oms/model"
)

// OrderGateway is the transport collaborator: it feeds commands into the
// OMS and receives execution reports back. Implementations must serialize
// their calls per order; the engine does not defend against a gateway that
// races itself.
type OrderGateway interface {
	Start(ctx context.Context) error

	// oms to client
	OnOrderReport(ctx context.Context, order model.Order)
}
