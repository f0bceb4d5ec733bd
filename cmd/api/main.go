package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smarttech/leadflow/internal/infra/broadcast"
	"github.com/smarttech/leadflow/internal/infra/database"
	"github.com/smarttech/leadflow/internal/infra/http/handlers"
	custommw "github.com/smarttech/leadflow/internal/infra/http/middleware"
	"github.com/smarttech/leadflow/internal/infra/integration/openai"
	"github.com/smarttech/leadflow/internal/infra/mail"
	"github.com/smarttech/leadflow/internal/infra/ws"
	"github.com/smarttech/leadflow/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	mq, err := broadcast.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("rabbitmq connection failed: %v", err)
	}
	defer mq.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)

	// 2. Gateways and adapters
	publisher := broadcast.NewPublisher(mq.Ch)
	streamer := openai.NewClient(
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_MODEL"),
	)

	var notifier usecase.HotLeadNotifier
	if os.Getenv("MAIL_HOST") != "" {
		notifier = mail.NewEmailSender(
			os.Getenv("MAIL_HOST"), 587,
			os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
			envOr("SALES_TEAM_EMAIL", "sales@smarttech.dev"),
		)
	}

	// 3. Websocket bridge (consumes the broadcast exchange on its own channel)
	bridgeCh, err := mq.Conn.Channel()
	if err != nil {
		log.Fatalf("failed to open bridge channel: %v", err)
	}
	bridge := ws.NewBridge()
	if err := bridge.Start(bridgeCh); err != nil {
		log.Fatalf("failed to start ws bridge: %v", err)
	}

	// 4. UseCases
	conversationUC := usecase.NewConversationUseCase(
		leadRepo, streamer, publisher, notifier,
		turnTimeout(),
	)

	// 5. Handlers
	conversationHandler := handlers.NewConversationHandler(conversationUC)
	leadHandler := handlers.NewLeadHandler(leadRepo)
	healthHandler := handlers.NewHealthHandler(db, mq.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(custommw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{envOr("CORS_ORIGIN", "*")},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	}))

	r.Post("/conversation", conversationHandler.Handle)
	r.Get("/leads", leadHandler.HandleList)
	r.Get("/leads/{leadId}", leadHandler.HandleGet)
	r.Patch("/leads/{leadId}/calendly-clicked", leadHandler.HandleCalendlyClicked)
	r.Get("/ws/{channelId}", bridge.HandleSubscribe)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("leadflow server running on %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func turnTimeout() time.Duration {
	raw := os.Getenv("TURN_TIMEOUT")
	if raw == "" {
		return 2 * time.Minute
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid TURN_TIMEOUT %q, using default: %v", raw, err)
		return 2 * time.Minute
	}
	return d
}
