package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/tunde/vend-settlement/pkg/notifier"
	"github.com/tunde/vend-settlement/pkg/reconcile"
	dydbstore "github.com/tunde/vend-settlement/pkg/storage/dynamodb"
)

var listener *reconcile.Listener

func init() {
	// Load environment variables from .env file (useful for local testing).
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
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

	store := dydbstore.New(dbClient, transactionsTable, walletsTable, catalogTable)

	var emitter notifier.Emitter = &notifier.NoOpEmitter{}
	if queueURL := os.Getenv("NOTIFICATIONS_QUEUE_URL"); queueURL != "" {
		emitter = notifier.NewSQSEmitter(sqs.NewFromConfig(cfg), queueURL)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	listener = reconcile.New(store, emitter, logger)
}

// HandleRequest processes sweep messages and repairs the transactions
// they name. Repair is idempotent, so an SQS redelivery is harmless.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var sweepMsg reconcile.SweepMessage
		if err := json.Unmarshal([]byte(message.Body), &sweepMsg); err != nil {
			log.Printf("ERROR: failed to unmarshal sweep message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		log.Printf("Attempting to repair transaction %s", sweepMsg.Reference)

		if err := listener.Repair(ctx, sweepMsg.Reference); err != nil {
			log.Printf("ERROR: failed to repair transaction %s: %v", sweepMsg.Reference, err)
			// In a production system, persistent failures would be sent to a DLQ.
			return err
		}

		log.Printf("Finished repair for transaction %s", sweepMsg.Reference)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
