package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/tunde/vend-settlement/pkg/storage"
)

//go:generate mockery --name DynamoDBAPI --output mocks --outpkg mocks

// DynamoDBAPI defines the subset of the DynamoDB client the Store uses.
// It exists so the store can be unit-tested against a mock client.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

const (
	// GSI on the transactions table: hash status, range updated_at.
	statusUpdatedAtIndex = "status-updated_at-index"
	// GSI on the transactions table: hash account_id, range created_at.
	accountIDIndex = "account_id-index"
	// GSI on the catalog table: hash kind, range network.
	kindNetworkIndex = "kind-network-index"
)

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                DynamoDBAPI
	TransactionsTableName string
	WalletsTableName      string
	CatalogTableName      string
}

// New creates a new Store.
func New(client DynamoDBAPI, transactionsTable, walletsTable, catalogTable string) *Store {
	return &Store{
		Client:                client,
		TransactionsTableName: transactionsTable,
		WalletsTableName:      walletsTable,
		CatalogTableName:      catalogTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
