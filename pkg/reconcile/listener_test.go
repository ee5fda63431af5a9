package reconcile

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/notifier"
	"github.com/tunde/vend-settlement/pkg/storage"
	"github.com/tunde/vend-settlement/pkg/storage/mocks"
)

func testListener(store *mocks.Storage) *Listener {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, &notifier.NoOpEmitter{}, logger)
}

func pendingTx(debited, fulfilled bool) *models.Transaction {
	return &models.Transaction{
		Reference:  "vnd_abc",
		AccountID:  "acct-1",
		Kind:       models.KindData,
		ProviderID: "datahub",
		Amount:     46000,
		Status:     models.PENDING,
		Debited:    debited,
		Fulfilled:  fulfilled,
	}
}

func TestReconcile(t *testing.T) {
	t.Run("Unknown Reference Is Acknowledged", func(t *testing.T) {
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, "vnd_missing").Return(nil, storage.ErrTransactionNotFound)

		err := testListener(store).Reconcile(context.Background(), Update{Reference: "vnd_missing", Succeeded: true})

		assert.NoError(t, err)
	})

	t.Run("Duplicate Callback Is A No-Op", func(t *testing.T) {
		tx := pendingTx(true, true)
		tx.Status = models.COMPLETED
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)

		err := testListener(store).Reconcile(context.Background(), Update{Reference: tx.Reference, Succeeded: true})

		assert.NoError(t, err)
		store.AssertNotCalled(t, "DebitForTransaction")
		store.AssertNotCalled(t, "CompleteTransaction")
		store.AssertNotCalled(t, "FailTransaction")
	})

	t.Run("Success Callback Applies Deferred Debit", func(t *testing.T) {
		tx := pendingTx(false, false)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)
		store.On("MarkFulfilled", mock.Anything, tx.Reference).Return(nil).Once()
		store.On("DebitForTransaction", mock.Anything, tx).Return(nil).Once()
		store.On("CompleteTransaction", mock.Anything, tx.Reference).Return(true, nil).Once()

		err := testListener(store).Reconcile(context.Background(), Update{Reference: tx.Reference, Succeeded: true, Message: "delivered"})

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("Success Callback On Debited Transaction Skips Debit", func(t *testing.T) {
		tx := pendingTx(true, false)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)
		store.On("MarkFulfilled", mock.Anything, tx.Reference).Return(nil).Once()
		store.On("CompleteTransaction", mock.Anything, tx.Reference).Return(true, nil).Once()

		err := testListener(store).Reconcile(context.Background(), Update{Reference: tx.Reference, Succeeded: true})

		assert.NoError(t, err)
		store.AssertNotCalled(t, "DebitForTransaction")
		store.AssertExpectations(t)
	})

	t.Run("Failure Callback On Undebited Transaction Fails Without Refund", func(t *testing.T) {
		tx := pendingTx(false, false)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)
		store.On("FailTransaction", mock.Anything, tx.Reference, "number barred").Return(true, nil).Once()

		err := testListener(store).Reconcile(context.Background(), Update{Reference: tx.Reference, Message: "number barred"})

		assert.NoError(t, err)
		store.AssertNotCalled(t, "RefundAndFail")
		store.AssertExpectations(t)
	})

	t.Run("Failure Callback On Debited Transaction Refunds", func(t *testing.T) {
		tx := pendingTx(true, false)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)
		store.On("RefundAndFail", mock.Anything, tx, "delivery rejected").Return(true, nil).Once()

		err := testListener(store).Reconcile(context.Background(), Update{Reference: tx.Reference, Message: "delivery rejected"})

		assert.NoError(t, err)
		store.AssertNotCalled(t, "FailTransaction")
		store.AssertExpectations(t)
	})

	t.Run("Insufficient Balance During Deferred Debit Stays Pending", func(t *testing.T) {
		tx := pendingTx(false, true)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)
		store.On("DebitForTransaction", mock.Anything, tx).Return(storage.ErrInsufficientFunds).Once()

		err := testListener(store).Reconcile(context.Background(), Update{Reference: tx.Reference, Succeeded: true})

		assert.NoError(t, err)
		store.AssertNotCalled(t, "CompleteTransaction")
		store.AssertExpectations(t)
	})
}

func TestRepair(t *testing.T) {
	t.Run("Fulfilled But Undebited Is Settled", func(t *testing.T) {
		tx := pendingTx(false, true)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)
		store.On("DebitForTransaction", mock.Anything, tx).Return(nil).Once()
		store.On("CompleteTransaction", mock.Anything, tx.Reference).Return(true, nil).Once()

		err := testListener(store).Repair(context.Background(), tx.Reference)

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("Debited Awaiting Callback Is Left Alone", func(t *testing.T) {
		tx := pendingTx(true, false)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)

		err := testListener(store).Repair(context.Background(), tx.Reference)

		assert.NoError(t, err)
		store.AssertNotCalled(t, "CompleteTransaction")
		store.AssertNotCalled(t, "FailTransaction")
		store.AssertNotCalled(t, "RefundAndFail")
	})

	t.Run("Unconfirmed And Undebited Is Failed", func(t *testing.T) {
		tx := pendingTx(false, false)
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)
		store.On("FailTransaction", mock.Anything, tx.Reference, "no provider confirmation received").Return(true, nil).Once()

		err := testListener(store).Repair(context.Background(), tx.Reference)

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("Terminal Transaction Is Untouched", func(t *testing.T) {
		tx := pendingTx(true, true)
		tx.Status = models.FAILED
		store := new(mocks.Storage)
		store.On("GetTransactionByReference", mock.Anything, tx.Reference).Return(tx, nil)

		err := testListener(store).Repair(context.Background(), tx.Reference)

		assert.NoError(t, err)
		store.AssertNotCalled(t, "DebitForTransaction")
	})
}
