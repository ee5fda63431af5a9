package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/storage"
	"github.com/tunde/vend-settlement/pkg/storage/dynamodb/mocks"
)

func TestGetProduct(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, CatalogTableName: "catalog"}

		productAV, _ := attributevalue.MarshalMap(&models.Product{ID: "mtn-2gb-datahub", ProviderID: "datahub", SalePrice: 46000, Active: true})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: productAV}, nil).Once()

		product, err := store.GetProduct(context.Background(), "mtn-2gb-datahub")

		assert.NoError(t, err)
		assert.Equal(t, "datahub", product.ProviderID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, CatalogTableName: "catalog"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil).Once()

		_, err := store.GetProduct(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrProductNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestFindSubstitute(t *testing.T) {
	product := &models.Product{ID: "mtn-2gb-datahub", ProviderID: "datahub", Kind: models.KindData, Network: "mtn", SalePrice: 46000, Active: true}

	t.Run("Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, CatalogTableName: "catalog"}

		substituteAV, _ := attributevalue.MarshalMap(&models.Product{ID: "mtn-2gb-vendpro", ProviderID: "vendpro", Kind: models.KindData, Network: "mtn", SalePrice: 46000, Active: true})
		mockClient.On("Query", mock.Anything, mock.AnythingOfType("*dynamodb.QueryInput")).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{substituteAV}}, nil).Once()

		substitute, err := store.FindSubstitute(context.Background(), product)

		assert.NoError(t, err)
		assert.Equal(t, "vendpro", substitute.ProviderID)
		assert.Equal(t, product.SalePrice, substitute.SalePrice)
		mockClient.AssertExpectations(t)
	})

	t.Run("None Available", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, CatalogTableName: "catalog"}

		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil).Once()

		_, err := store.FindSubstitute(context.Background(), product)

		assert.ErrorIs(t, err, storage.ErrNoSubstitute)
		mockClient.AssertExpectations(t)
	})
}

func TestDeactivateProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, CatalogTableName: "catalog"}

		mockClient.On("UpdateItem", mock.Anything, mock.AnythingOfType("*dynamodb.UpdateItemInput")).Return(&dynamodb.UpdateItemOutput{}, nil).Once()

		err := store.DeactivateProduct(context.Background(), "mtn-2gb-datahub")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Missing Product", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, CatalogTableName: "catalog"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{}).Once()

		err := store.DeactivateProduct(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrProductNotFound)
		mockClient.AssertExpectations(t)
	})
}
