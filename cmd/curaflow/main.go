package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/config"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/httpapi"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/hub"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/store/postgres"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/sweep"
	"github.com/gautham2106/curaflow-hospital-management-sub000/internal/telemetry"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type eventEnvelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func main() {
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup(cfg.ServiceName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	handler := httpapi.NewHandler(store)
	displayHub := hub.New()
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:     cfg.RateLimitPerMinute,
		IPBurst:         cfg.RateLimitBurst,
		ClinicPerMinute: cfg.ClinicRateLimitPerMinute,
		ClinicBurst:     cfg.ClinicRateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.AuthMiddleware(store, handler.Routes()))
	mux.Handle("/display/", displayEndpoint(displayHub))

	chain := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), cfg.ServiceName)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		log.Printf("curaflow listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	go broadcastOutbox(ctx, store, displayHub, cfg.OutboxInterval, cfg.OutboxBatchSize)

	sweeper := sweep.New(store, cfg.SweepInterval, cfg.SessionCloseGrace)
	go sweeper.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// displayEndpoint serves the waiting-room boards over sockjs. Displays are
// unauthenticated; they only ever see what the clinic broadcasts.
func displayEndpoint(displayHub *hub.Hub) http.Handler {
	return sockjs.NewHandler("/display", sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
		displayHub.Register(client)
		defer displayHub.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := hub.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				displayHub.UpdateSubscription(client, hub.Subscription{})
				continue
			}
			if parsed.ClinicID == "" {
				_ = session.Close(4001, "clinic_id is required")
				return
			}
			displayHub.UpdateSubscription(client, hub.Subscription{
				ClinicID: parsed.ClinicID,
				DoctorID: parsed.DoctorID,
			})
		}
	})
}

// broadcastOutbox polls the outbox and fans events out to subscribed displays.
// The cursor is the outbox seq column, held in memory and started at the
// current high-water mark: displays reconnecting after a restart fetch the
// current queue over HTTP, so replaying history buys nothing.
func broadcastOutbox(ctx context.Context, store *postgres.Store, displayHub *hub.Hub, interval time.Duration, batchSize int) {
	if interval <= 0 {
		interval = time.Second
	}
	after, err := store.LatestOutboxSeq(ctx)
	if err != nil {
		log.Printf("outbox seq error: %v", err)
	}
	var running int32

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			continue
		}
		pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		events, err := store.ListOutboxEvents(pollCtx, after, batchSize)
		cancel()
		if err != nil {
			log.Printf("outbox poll error: %v", err)
			atomic.StoreInt32(&running, 0)
			continue
		}
		for _, event := range events {
			after = event.Seq
			env := eventEnvelope{Type: event.Type, Payload: event.Payload, CreatedAt: event.CreatedAt}
			payload, _ := json.Marshal(env)
			displayHub.Broadcast(payload, hub.Subscription{
				ClinicID: event.ClinicID,
				DoctorID: event.DoctorID,
			})
		}
		atomic.StoreInt32(&running, 0)
	}
}
