package worker

import (
	"context"
	"encoding/json"
	"log"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"

	"github.com/joripage/limitbook/pkg/oms/model"
	"github.com/joripage/limitbook/pkg/oms/repo"
)

// Worker drains order events from JetStream into the Postgres archive. It
// is the only writer of the order_events table; the engine never reads it
// back (the archive is an audit trail, not book state).
type Worker struct {
	orderEvent repo.IOrderEvent
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		orderEvent: repo.OrderEvent(),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := cons.Fetch(64, nats.MaxWait(nats.DefaultTimeout))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			log.Println("fetch error:", err)
			continue
		}

		batch := make([]*model.OrderEvent, 0, len(msgs))
		acks := make([]*nats.Msg, 0, len(msgs))
		for _, msg := range msgs {
			var ev model.OrderEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				log.Println("unmarshal err", err)
				_ = msg.Ack()
				continue
			}
			batch = append(batch, &ev)
			acks = append(acks, msg)
		}

		if _, err := w.orderEvent.BulkCreate(ctx, batch); err != nil {
			// leave unacked; JetStream redelivers and Create dedups by event id
			log.Println("persist batch err", err)
			continue
		}
		for _, msg := range acks {
			_ = msg.Ack()
		}
	}
}
