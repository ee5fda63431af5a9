package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// DebitForTransaction atomically debits the wallet by tx.Amount and flips
// the transaction's debited flag in a single TransactWriteItems call.
//
// The wallet side is guarded by balance >= amount, the transaction side by
// debited = false, so the debit is applied at most once per transaction no
// matter how many times the synchronous path, a webhook and the sweep race
// each other for the same reference.
func (s *Store) DebitForTransaction(ctx context.Context, tx *models.Transaction) error {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for debit: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Debit the wallet.
				Update: &types.Update{
					TableName: aws.String(s.WalletsTableName),
					Key: map[string]types.AttributeValue{
						"account_id": &types.AttributeValueMemberS{Value: tx.AccountID},
					},
					UpdateExpression:    aws.String("SET balance = balance - :amount, version = version + :inc, updated_at = :now"),
					ConditionExpression: aws.String("attribute_exists(account_id) AND balance >= :amount"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", tx.Amount)},
						":inc":    &types.AttributeValueMemberN{Value: "1"},
						":now":    nowAV,
					},
				},
			},
			{
				// Operation 2: Mark the transaction debited, exactly once.
				Update: &types.Update{
					TableName: aws.String(s.TransactionsTableName),
					Key: map[string]types.AttributeValue{
						"reference": &types.AttributeValueMemberS{Value: tx.Reference},
					},
					UpdateExpression:    aws.String("SET debited = :true, updated_at = :now"),
					ConditionExpression: aws.String("debited = :false AND #status = :pending"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":true":    &types.AttributeValueMemberBOOL{Value: true},
						":false":   &types.AttributeValueMemberBOOL{Value: false},
						":pending": &types.AttributeValueMemberS{Value: string(models.PENDING)},
						":now":     nowAV,
					},
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) == 2 {
			if isConditionalCheckFailed(tce.CancellationReasons[0]) {
				return storage.ErrInsufficientFunds
			}
			if isConditionalCheckFailed(tce.CancellationReasons[1]) {
				return storage.ErrAlreadyDebited
			}
		}
		return fmt.Errorf("failed to execute debit transaction: %w", err)
	}

	tx.Debited = true
	return nil
}

// RefundAndFail reverses an applied debit and marks the transaction FAILED
// in one atomic write. It exists for the path where a provider accepted a
// purchase (which debits immediately) and later reported failure via
// callback: FAILED transactions must never carry a debit.
func (s *Store) RefundAndFail(ctx context.Context, tx *models.Transaction, reason string) (bool, error) {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to marshal timestamp for refund: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Return the debited amount to the wallet.
				Update: &types.Update{
					TableName: aws.String(s.WalletsTableName),
					Key: map[string]types.AttributeValue{
						"account_id": &types.AttributeValueMemberS{Value: tx.AccountID},
					},
					UpdateExpression:    aws.String("SET balance = balance + :amount, version = version + :inc, updated_at = :now"),
					ConditionExpression: aws.String("attribute_exists(account_id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", tx.Amount)},
						":inc":    &types.AttributeValueMemberN{Value: "1"},
						":now":    nowAV,
					},
				},
			},
			{
				// Operation 2: Terminal transition, only from a debited PENDING state.
				Update: &types.Update{
					TableName: aws.String(s.TransactionsTableName),
					Key: map[string]types.AttributeValue{
						"reference": &types.AttributeValueMemberS{Value: tx.Reference},
					},
					UpdateExpression:    aws.String("SET #status = :failed, debited = :false, failure_reason = :reason, updated_at = :now"),
					ConditionExpression: aws.String("#status = :pending AND debited = :true"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":failed":  &types.AttributeValueMemberS{Value: string(models.FAILED)},
						":pending": &types.AttributeValueMemberS{Value: string(models.PENDING)},
						":true":    &types.AttributeValueMemberBOOL{Value: true},
						":false":   &types.AttributeValueMemberBOOL{Value: false},
						":reason":  &types.AttributeValueMemberS{Value: reason},
						":now":     nowAV,
					},
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) == 2 {
			if isConditionalCheckFailed(tce.CancellationReasons[1]) {
				// Already terminal, or never debited. Nothing to reverse.
				return false, nil
			}
		}
		return false, fmt.Errorf("failed to execute refund transaction: %w", err)
	}

	return true, nil
}

func isConditionalCheckFailed(reason types.CancellationReason) bool {
	return reason.Code != nil && *reason.Code == "ConditionalCheckFailed"
}
