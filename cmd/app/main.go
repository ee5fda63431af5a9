package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/tunde/vend-settlement/pkg/fallback"
	"github.com/tunde/vend-settlement/pkg/handlers"
	"github.com/tunde/vend-settlement/pkg/middleware"
	"github.com/tunde/vend-settlement/pkg/notifier"
	"github.com/tunde/vend-settlement/pkg/providers"
	"github.com/tunde/vend-settlement/pkg/reconcile"
	"github.com/tunde/vend-settlement/pkg/settlement"
	dydbstore "github.com/tunde/vend-settlement/pkg/storage/dynamodb"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// AWS Session
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	walletsTable := os.Getenv("DYNAMODB_WALLETS_TABLE_NAME")
	catalogTable := os.Getenv("DYNAMODB_CATALOG_TABLE_NAME")

	if transactionsTable == "" || walletsTable == "" || catalogTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	// Create our storage implementation
	store := dydbstore.New(dbClient, transactionsTable, walletsTable, catalogTable)

	// Notification emitter. Optional: without a queue URL, notifications
	// are dropped.
	var emitter notifier.Emitter = &notifier.NoOpEmitter{}
	if queueURL := os.Getenv("NOTIFICATIONS_QUEUE_URL"); queueURL != "" {
		emitter = notifier.NewSQSEmitter(sqs.NewFromConfig(cfg), queueURL)
	} else {
		log.Println("NOTIFICATIONS_QUEUE_URL not set, notifications disabled")
	}

	// Provider adapters. Each provider carries its own credentials and
	// the callback URL it should report back to.
	callbackBase := os.Getenv("CALLBACK_BASE_URL")
	registry := providers.NewRegistry(
		providers.NewDataHub(providers.Config{
			BaseURL:     os.Getenv("DATAHUB_BASE_URL"),
			APIKey:      os.Getenv("DATAHUB_API_KEY"),
			CallbackURL: callbackBase + "/webhooks/datahub",
		}),
		providers.NewVendPro(providers.Config{
			BaseURL:     os.Getenv("VENDPRO_BASE_URL"),
			APIKey:      os.Getenv("VENDPRO_API_KEY"),
			CallbackURL: callbackBase + "/webhooks/vendpro",
		}),
		providers.NewPowerGate(providers.Config{
			BaseURL:     os.Getenv("POWERGATE_BASE_URL"),
			APIKey:      os.Getenv("POWERGATE_API_KEY"),
			CallbackURL: callbackBase + "/webhooks/powergate",
		}),
	)

	router := fallback.New(registry, store, logger)
	engine := settlement.New(store, store, store, router, emitter, logger)
	listener := reconcile.New(store, emitter, logger)

	// Bearer token table, "token:account" pairs separated by commas.
	auth := &middleware.StaticTokenAuthenticator{Tokens: parseTokens(os.Getenv("API_TOKENS"))}

	// Create our handler
	handler := handlers.NewApiHandler(store, engine, listener, auth, logger)

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	// Start the server
	err = http.ListenAndServe(":"+port, handler.Routes())
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func parseTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		token, accountID, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || accountID == "" {
			continue
		}
		tokens[token] = accountID
	}
	return tokens
}
