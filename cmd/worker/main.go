package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/streadway/amqp"

	"profileplus/internal/queue"
	"profileplus/internal/shared/config"
	"profileplus/internal/shared/metrics"
	"profileplus/internal/shared/telemetry"
)

const (
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
	consumerTag               = "profileplus-worker"
)

var errMissingCandidate = errors.New("missing candidateId")

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := envInt("WORKER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("WORKER_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	consumer, err := queue.NewAMQPConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, max(1, concurrency))
	if err != nil {
		log.Fatalf("amqp consumer: %v", err)
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries(consumerTag)
	if err != nil {
		log.Fatalf("amqp consume: %v", err)
	}

	// Delivery to the candidate is a structured log record.
	var sink queue.Client = queue.LogClient{}

	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

	log.Printf("worker started exchange=%s queue=%s concurrency=%d", cfg.AMQPExchange, cfg.AMQPQueue, concurrency)

consumeLoop:
	for {
		select {
		case <-ctx.Done():
			break consumeLoop
		case d, ok := <-deliveries:
			if !ok {
				log.Printf("delivery channel closed")
				break consumeLoop
			}
			select {
			case <-ctx.Done():
				_ = d.Nack(false, true)
				break consumeLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handleDelivery(ctx, sink, d)
			}(d)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight deliveries", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight deliveries")
	}
}

// handleDelivery acks delivered notifications, drops payloads that can never
// succeed and requeues a failed send once.
func handleDelivery(ctx context.Context, sink queue.Client, d amqp.Delivery) {
	if strings.TrimSpace(string(d.Body)) == "" {
		fields := baseFields(d, queue.Message{})
		fields["body_len"] = 0
		telemetry.Error("worker.contact.empty_body", fields)
		drop(d, queue.Message{})
		return
	}

	msg, err := queue.DecodeMessage(d.Body)
	if err == nil && strings.TrimSpace(msg.CandidateID) == "" {
		err = errMissingCandidate
	}
	if err != nil {
		fields := baseFields(d, msg)
		fields["body_len"] = len(d.Body)
		fields["error"] = err.Error()
		telemetry.Error("worker.contact.decode_failed", fields)
		drop(d, msg)
		return
	}

	telemetry.Info("worker.contact.received", baseFields(d, msg))

	if err := sink.Send(ctx, msg); err != nil {
		fields := baseFields(d, msg)
		fields["error"] = err.Error()
		fields["requeue"] = !d.Redelivered
		telemetry.Error("worker.contact.failed", fields)
		metrics.IncContactDeliveries("failed")
		if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
			fields["error"] = nackErr.Error()
			telemetry.Error("worker.contact.nack_failed", fields)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		fields := baseFields(d, msg)
		fields["error"] = err.Error()
		telemetry.Error("worker.contact.ack_failed", fields)
		return
	}
	telemetry.Info("worker.contact.delivered", baseFields(d, msg))
	metrics.IncContactDeliveries("delivered")
}

func drop(d amqp.Delivery, msg queue.Message) {
	if err := d.Nack(false, false); err != nil {
		fields := baseFields(d, msg)
		fields["error"] = err.Error()
		telemetry.Error("worker.contact.nack_failed", fields)
		return
	}
	metrics.IncContactDeliveries("dropped")
}

func baseFields(d amqp.Delivery, msg queue.Message) map[string]any {
	fields := map[string]any{
		"candidate_id":    msg.CandidateID,
		"amqp_message_id": d.MessageId,
		"routing_key":     d.RoutingKey,
		"redelivered":     d.Redelivered,
	}
	if strings.TrimSpace(msg.RequestID) != "" {
		fields["request_id"] = msg.RequestID
	}
	return fields
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
