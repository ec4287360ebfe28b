package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
)

// ErrUnprocessable помечает сообщение, которое повторная доставка не исправит.
var ErrUnprocessable = errors.New("unprocessable message")

// ConsumerMessage создает потребителя сообщений из очереди RabbitMQ.
//
// Ошибка обработчика возвращает сообщение в очередь, кроме ErrUnprocessable:
// такое сообщение отбрасывается. Одновременно обрабатывается не больше 10 сообщений.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"

	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(delivery.Body); err != nil {
						log.Error("handler failed", slog.String("message_id", delivery.MessageId),
							slog.Bool("requeue", requeue(err)), sl.Err(err))
						if nackErr := delivery.Nack(false, requeue(err)); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := delivery.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func requeue(err error) bool {
	return !errors.Is(err, ErrUnprocessable)
}
