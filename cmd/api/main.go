package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/infra/database"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/http/handlers"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/http/middleware"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/integration/gemini"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/integration/whatsapp"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/mail"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/queue"
	"github.com/omerdahan/whatsapp-rsvp/internal/usecase"
)

func main() {
	godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	ctx := context.Background()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	// 1. Repository + demo data
	guestRepo := database.NewGuestRepository(db)
	if err := database.SeedGuests(ctx, guestRepo); err != nil {
		log.Warn().Err(err).Msg("could not seed guests")
	}

	// 2. Optional side channels: events and organizer notification
	var producer queue.QueueProducerInterface
	var rabbitConn *amqp.Connection
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		rabbitMQ, err := queue.NewRabbitMQ(url)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq connection failed")
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()

		rabbitConn = rabbitMQ.Conn
		producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

		if host := os.Getenv("MAIL_HOST"); host != "" {
			port, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
			if port == 0 {
				port = 587
			}
			sender := mail.NewEmailSender(
				host, port,
				os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
				os.Getenv("MAIL_FROM"), os.Getenv("ORGANIZER_EMAIL"),
			)
			worker := queue.NewWorker(rabbitMQ.Ch, sender)
			go worker.Start(queue.QueueName)
		} else {
			log.Info().Msg("mail not configured, skipping notification worker")
		}
	} else {
		log.Info().Msg("rabbitmq not configured, status-change events disabled")
	}

	// 3. Transport + interpreter strategies
	waClient := whatsapp.NewClient(
		os.Getenv("WHATSAPP_TOKEN"),
		os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
	)

	manual := usecase.NewManualInterpreter()
	var webhookInterpreter usecase.ReplyInterpreter = manual
	if os.Getenv("REPLY_INTERPRETER") == "gemini" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Fatal().Msg("REPLY_INTERPRETER=gemini requires GEMINI_API_KEY")
		}
		webhookInterpreter = gemini.NewClient(apiKey, os.Getenv("GEMINI_MODEL"))
		log.Info().Msg("webhook replies interpreted by gemini")
	}

	// 4. UseCases
	sendUC := usecase.NewSendInvitationUseCase(guestRepo, waClient, producer)
	simulateUC := usecase.NewProcessReplyUseCase(guestRepo, manual, producer, "SIMULATE")
	webhookUC := usecase.NewProcessReplyUseCase(guestRepo, webhookInterpreter, producer, "WEBHOOK")

	// 5. Handlers
	guestHandler := handlers.NewGuestHandler(guestRepo, sendUC, simulateUC)
	webhookHandler := handlers.NewWebhookHandler(guestRepo, webhookUC, os.Getenv("WHATSAPP_VERIFY_TOKEN"))
	healthHandler := handlers.NewHealthHandler(db, rabbitConn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "*"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{clientURL},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("WhatsApp RSVP Backend is running!"))
	})
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/guests", guestHandler.HandleList)
		r.Post("/guests/{guestId}/send", guestHandler.HandleSend)
		r.Post("/guests/{guestId}/simulate-reply", guestHandler.HandleSimulateReply)
		// Verification handshake and event deliveries share the path;
		// the handler multiplexes on method.
		r.HandleFunc("/whatsapp-webhook", webhookHandler.Handle)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Info().Str("port", port).Msg("server listening")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
