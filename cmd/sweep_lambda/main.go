package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/tunde/vend-settlement/pkg/reconcile"
	"github.com/tunde/vend-settlement/pkg/storage"
	dydbstore "github.com/tunde/vend-settlement/pkg/storage/dynamodb"
)

var store storage.Storage
var sqsClient *sqs.Client
var repairQueueURL string

const stuckTransactionThreshold = 20 * time.Minute

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	sqsClient = sqs.NewFromConfig(cfg)

	repairQueueURL = os.Getenv("REPAIR_QUEUE_URL")
	if repairQueueURL == "" {
		log.Fatal("REPAIR_QUEUE_URL environment variable not set")
	}

	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	walletsTable := os.Getenv("DYNAMODB_WALLETS_TABLE_NAME")
	catalogTable := os.Getenv("DYNAMODB_CATALOG_TABLE_NAME")

	store = dydbstore.New(dbClient, transactionsTable, walletsTable, catalogTable)
}

// HandleRequest is triggered by an EventBridge Schedule. It finds
// transactions stuck in PENDING past the threshold, the fulfilled but
// undebited dangerous window among them, and queues each one for repair.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting sweep for stuck transactions...")

	stuckTxs, err := store.GetStuckTransactions(ctx, stuckTransactionThreshold)
	if err != nil {
		log.Printf("ERROR: failed to get stuck transactions: %v", err)
		return err
	}

	if len(stuckTxs) == 0 {
		log.Println("No stuck transactions found.")
		return nil
	}

	log.Printf("Found %d stuck transactions. Enqueuing them for repair...", len(stuckTxs))

	for _, tx := range stuckTxs {
		body, err := json.Marshal(reconcile.SweepMessage{Reference: tx.Reference})
		if err != nil {
			log.Printf("ERROR: failed to marshal sweep message for %s: %v", tx.Reference, err)
			continue
		}
		_, err = sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(repairQueueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			log.Printf("ERROR: failed to enqueue transaction %s: %v", tx.Reference, err)
			// Continue to the next transaction, don't let one failure stop the whole batch.
			continue
		}
		log.Printf("Successfully enqueued transaction %s", tx.Reference)
	}

	log.Println("Sweep finished.")
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
