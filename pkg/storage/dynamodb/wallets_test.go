package dynamodb

import (
	"context"
	"errors"
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

func TestGetWallet(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, WalletsTableName: "wallets"}

		walletAV, _ := attributevalue.MarshalMap(&models.Wallet{AccountID: "acct-1", Balance: 100000, Version: 3})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: walletAV}, nil).Once()

		wallet, err := store.GetWallet(context.Background(), "acct-1")

		assert.NoError(t, err)
		assert.Equal(t, int64(100000), wallet.Balance)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, WalletsTableName: "wallets"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil).Once()

		wallet, err := store.GetWallet(context.Background(), "acct-missing")

		assert.ErrorIs(t, err, storage.ErrWalletNotFound)
		assert.Nil(t, wallet)
		mockClient.AssertExpectations(t)
	})
}

func TestCreateWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, WalletsTableName: "wallets"}

		mockClient.On("PutItem", mock.Anything, mock.AnythingOfType("*dynamodb.PutItemInput")).Return(&dynamodb.PutItemOutput{}, nil).Once()

		wallet, err := store.CreateWallet(context.Background(), &models.Wallet{AccountID: "acct-1"})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), wallet.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Exists", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, WalletsTableName: "wallets"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{}).Once()

		_, err := store.CreateWallet(context.Background(), &models.Wallet{AccountID: "acct-1"})

		assert.ErrorIs(t, err, storage.ErrWalletExists)
		mockClient.AssertExpectations(t)
	})
}

func TestCreditWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, WalletsTableName: "wallets"}

		updatedAV, _ := attributevalue.MarshalMap(&models.Wallet{AccountID: "acct-1", Balance: 150000, Version: 4})
		mockClient.On("UpdateItem", mock.Anything, mock.AnythingOfType("*dynamodb.UpdateItemInput")).Return(&dynamodb.UpdateItemOutput{Attributes: updatedAV}, nil).Once()

		wallet, err := store.CreditWallet(context.Background(), "acct-1", 50000)

		assert.NoError(t, err)
		assert.Equal(t, int64(150000), wallet.Balance)
		mockClient.AssertExpectations(t)
	})

	t.Run("Wallet Missing", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, WalletsTableName: "wallets"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{}).Once()

		_, err := store.CreditWallet(context.Background(), "acct-missing", 50000)

		assert.ErrorIs(t, err, storage.ErrWalletNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Update Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, WalletsTableName: "wallets"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errors.New("update failed")).Once()

		_, err := store.CreditWallet(context.Background(), "acct-1", 50000)

		assert.Error(t, err)
		mockClient.AssertExpectations(t)
	})
}
