package oms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/limitbook/pkg/oms/model"
)

type stubGateway struct {
	mu      sync.Mutex
	reports []model.Order
}

func (g *stubGateway) Start(ctx context.Context) error { return nil }

func (g *stubGateway) OnOrderReport(_ context.Context, order model.Order) {
	g.mu.Lock()
	g.reports = append(g.reports, order)
	g.mu.Unlock()
}

func (g *stubGateway) all() []model.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.Order(nil), g.reports...)
}

func newTestOMS() (*OMS, *stubGateway) {
	gw := &stubGateway{}
	s := NewOMS(gw, nil, &Config{
		TickScales:       map[string]int32{"ABC": 2},
		DefaultTickScale: 2,
	})
	return s, gw
}

func addOrderCmd(gatewayID, side, price, qty string) *model.AddOrder {
	return &model.AddOrder{
		GatewayID:    gatewayID,
		Account:      "acct-1",
		Symbol:       "ABC",
		Side:         model.OrderSide(side),
		Price:        decimal.RequireFromString(price),
		Quantity:     decimal.RequireFromString(qty),
		TransactTime: time.Now(),
	}
}

func TestOMSAddOrderAccepted(t *testing.T) {
	s, gw := newTestOMS()
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrderCmd("C1", "BUY", "100.25", "10")); err != nil {
		t.Fatalf("add: %v", err)
	}

	reports := gw.all()
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.Status != model.OrderStatusNew || r.ExecType != model.ExecTypeNew {
		t.Errorf("report = %s/%s, want New/New", r.Status, r.ExecType)
	}
	if r.OrderID == 0 {
		t.Error("accepted order must carry a book order id")
	}

	if evs := s.eventstore.Events(r.OrderID); len(evs) != 1 {
		t.Errorf("expected 1 stored event, got %d", len(evs))
	}
}

func TestOMSDuplicateGatewayID(t *testing.T) {
	s, _ := newTestOMS()
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrderCmd("C1", "BUY", "100", "10")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddOrder(ctx, addOrderCmd("C1", "BUY", "101", "10")); err != errDuplicateOrder {
		t.Fatalf("reused gateway id = %v, want errDuplicateOrder", err)
	}
}

func TestOMSOffTickPriceRejected(t *testing.T) {
	s, gw := newTestOMS()
	ctx := context.Background()

	// scale 2 means 100.255 falls between ticks
	if err := s.AddOrder(ctx, addOrderCmd("C1", "BUY", "100.255", "10")); err != errOffTickPrice {
		t.Fatalf("off-tick add = %v, want errOffTickPrice", err)
	}

	reports := gw.all()
	if len(reports) != 1 || reports[0].Status != model.OrderStatusRejected {
		t.Fatalf("expected a Rejected report, got %+v", reports)
	}
}

func TestOMSFractionalQuantityRejected(t *testing.T) {
	s, _ := newTestOMS()
	if err := s.AddOrder(context.Background(), addOrderCmd("C1", "BUY", "100", "10.5")); err != errInvalidQuantity {
		t.Fatalf("fractional qty = %v, want errInvalidQuantity", err)
	}
}

func TestOMSMatchProducesTradeReports(t *testing.T) {
	s, gw := newTestOMS()
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrderCmd("S1", "SELL", "100.00", "10")); err != nil {
		t.Fatalf("add sell: %v", err)
	}
	if err := s.AddOrder(ctx, addOrderCmd("B1", "BUY", "100.50", "10")); err != nil {
		t.Fatalf("add buy: %v", err)
	}

	var filled []model.Order
	for _, r := range gw.all() {
		if r.ExecType == model.ExecTypeTrade {
			filled = append(filled, r)
		}
	}
	if len(filled) != 2 {
		t.Fatalf("expected trade reports for both sides, got %d", len(filled))
	}
	for _, r := range filled {
		if r.Status != model.OrderStatusFilled {
			t.Errorf("order %d status = %s, want Filled", r.OrderID, r.Status)
		}
		// execution at the resting price
		if !r.LastPrice.Equal(decimal.RequireFromString("100.00")) {
			t.Errorf("order %d last price = %s, want 100.00", r.OrderID, r.LastPrice)
		}
		if !r.LastQuantity.Equal(decimal.NewFromInt(10)) {
			t.Errorf("order %d last qty = %s, want 10", r.OrderID, r.LastQuantity)
		}
	}
}

func TestOMSCancelLifecycle(t *testing.T) {
	s, gw := newTestOMS()
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrderCmd("C1", "BUY", "100", "10")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.CancelOrder(ctx, &model.CancelOrder{GatewayID: "C2", OrigGatewayID: "C1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	reports := gw.all()
	last := reports[len(reports)-1]
	if last.Status != model.OrderStatusCanceled || last.ExecType != model.ExecTypeCanceled {
		t.Fatalf("last report = %s/%s, want Canceled/Canceled", last.Status, last.ExecType)
	}

	// cancel of a cancelled order: terminal status blocks it
	if err := s.CancelOrder(ctx, &model.CancelOrder{GatewayID: "C3", OrigGatewayID: "C2"}); err != errInvalidOrderStatus {
		t.Fatalf("second cancel = %v, want errInvalidOrderStatus", err)
	}
	// unknown correlation id
	if err := s.CancelOrder(ctx, &model.CancelOrder{GatewayID: "C4", OrigGatewayID: "nope"}); err != errGatewayIDNotFound {
		t.Fatalf("unknown orig = %v, want errGatewayIDNotFound", err)
	}
}

func TestOMSCancelFilledOrderRejected(t *testing.T) {
	s, _ := newTestOMS()
	ctx := context.Background()

	s.AddOrder(ctx, addOrderCmd("S1", "SELL", "100", "10"))
	s.AddOrder(ctx, addOrderCmd("B1", "BUY", "100", "10"))

	if err := s.CancelOrder(ctx, &model.CancelOrder{GatewayID: "C2", OrigGatewayID: "S1"}); err != errInvalidOrderStatus {
		t.Fatalf("cancel of filled order = %v, want errInvalidOrderStatus", err)
	}
}

func TestOMSModifyOrder(t *testing.T) {
	s, gw := newTestOMS()
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrderCmd("C1", "BUY", "100", "10")); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := s.ModifyOrder(ctx, &model.ModifyOrder{
		GatewayID:     "C2",
		OrigGatewayID: "C1",
		NewPrice:      decimal.RequireFromString("101"),
		NewQuantity:   decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}

	reports := gw.all()
	last := reports[len(reports)-1]
	if last.Status != model.OrderStatusReplaced || !last.Price.Equal(decimal.RequireFromString("101")) {
		t.Fatalf("last report = %+v, want Replaced at 101", last)
	}

	// the chain now ends at C2
	if chain := s.eventstore.ReconstructChain("C2"); len(chain) != 2 || chain[0] != "C2" || chain[1] != "C1" {
		t.Fatalf("chain = %v, want [C2 C1]", chain)
	}

	if _, ok := s.eventstore.OrderID("C2"); !ok {
		t.Fatal("new gateway id must resolve to the order")
	}
}

func TestOMSModifyAfterPartialFill(t *testing.T) {
	s, gw := newTestOMS()
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrderCmd("S1", "SELL", "100", "5")); err != nil {
		t.Fatalf("add sell: %v", err)
	}
	if err := s.AddOrder(ctx, addOrderCmd("B1", "BUY", "100", "10")); err != nil {
		t.Fatalf("add buy: %v", err)
	}

	// total stays 10, 5 already executed: only 5 may rest at the new price
	err := s.ModifyOrder(ctx, &model.ModifyOrder{
		GatewayID:     "B2",
		OrigGatewayID: "B1",
		NewPrice:      decimal.RequireFromString("101"),
		NewQuantity:   decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}

	bid, ok := s.Books().BestBid("ABC")
	if !ok || bid.Price != 10100 || bid.Volume != 5 {
		t.Fatalf("best bid after modify = %+v ok=%v, want 10100x5", bid, ok)
	}

	if err := s.AddOrder(ctx, addOrderCmd("S2", "SELL", "100", "10")); err != nil {
		t.Fatalf("add second sell: %v", err)
	}

	var buy *model.Order
	for _, r := range gw.all() {
		if r.Side == model.OrderSideBuy && r.ExecType == model.ExecTypeTrade {
			snap := r
			buy = &snap
		}
	}
	if buy == nil {
		t.Fatal("no trade report for the buy order")
	}
	if !buy.CumQuantity.Equal(decimal.NewFromInt(10)) || !buy.LeavesQuantity.IsZero() {
		t.Fatalf("buy cum=%s leaves=%s, want 10/0", buy.CumQuantity, buy.LeavesQuantity)
	}
	if buy.Status != model.OrderStatusFilled {
		t.Fatalf("buy status = %s, want Filled", buy.Status)
	}

	// only the unfilled 5 of S2 may remain on the book
	if _, ok := s.Books().BestBid("ABC"); ok {
		t.Fatal("bid side should be empty after the buy filled")
	}
	ask, ok := s.Books().BestAsk("ABC")
	if !ok || ask.Price != 10000 || ask.Volume != 5 {
		t.Fatalf("best ask = %+v ok=%v, want 10000x5", ask, ok)
	}
}

func TestOMSModifyBelowExecutedQuantityRejected(t *testing.T) {
	s, _ := newTestOMS()
	ctx := context.Background()

	s.AddOrder(ctx, addOrderCmd("S1", "SELL", "100", "5"))
	s.AddOrder(ctx, addOrderCmd("B1", "BUY", "100", "10"))

	// new total 5 == already executed, nothing left to rest
	err := s.ModifyOrder(ctx, &model.ModifyOrder{
		GatewayID:     "B2",
		OrigGatewayID: "B1",
		NewPrice:      decimal.RequireFromString("100"),
		NewQuantity:   decimal.NewFromInt(5),
	})
	if err != errInvalidQuantity {
		t.Fatalf("modify to executed total = %v, want errInvalidQuantity", err)
	}
}

func TestOMSStopTwice(t *testing.T) {
	s, _ := newTestOMS()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
	s.Stop()
}

func TestOMSBestQuoteThroughBooks(t *testing.T) {
	s, _ := newTestOMS()
	ctx := context.Background()

	s.AddOrder(ctx, addOrderCmd("B1", "BUY", "99.50", "10"))
	s.AddOrder(ctx, addOrderCmd("B2", "BUY", "100.25", "5"))

	bid, ok := s.Books().BestBid("ABC")
	if !ok || bid.Price != 10025 || bid.Volume != 5 {
		t.Fatalf("best bid = %+v ok=%v, want 10025x5", bid, ok)
	}
}
