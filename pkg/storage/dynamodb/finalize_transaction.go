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
)

// CompleteTransaction transitions a transaction from PENDING to COMPLETED.
// The conditional write makes the first transition win: if a webhook and
// the synchronous path race, exactly one of them observes applied == true
// and the loser is a no-op.
func (s *Store) CompleteTransaction(ctx context.Context, reference string) (bool, error) {
	return s.finalize(ctx, reference, "SET #status = :next, updated_at = :now", map[string]types.AttributeValue{
		":next": &types.AttributeValueMemberS{Value: string(models.COMPLETED)},
	})
}

// FailTransaction transitions a transaction from PENDING to FAILED.
// It additionally requires that no debit was applied; a debited
// transaction must go through RefundAndFail instead.
func (s *Store) FailTransaction(ctx context.Context, reference, reason string) (bool, error) {
	return s.finalize(ctx, reference,
		"SET #status = :next, failure_reason = :reason, updated_at = :now",
		map[string]types.AttributeValue{
			":next":   &types.AttributeValueMemberS{Value: string(models.FAILED)},
			":reason": &types.AttributeValueMemberS{Value: reason},
		},
		"debited = :false",
	)
}

// finalize runs a guarded terminal-state update. Returns false without an
// error when the status guard fails, i.e. the transaction already reached
// a terminal state through another path.
func (s *Store) finalize(ctx context.Context, reference, updateExpr string, values map[string]types.AttributeValue, extraConditions ...string) (bool, error) {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to marshal timestamp for status update: %w", err)
	}

	condition := "#status = :pending"
	for _, c := range extraConditions {
		condition += " AND " + c
	}

	values[":pending"] = &types.AttributeValueMemberS{Value: string(models.PENDING)}
	values[":now"] = nowAV
	if condition != "#status = :pending" {
		values[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"reference": &types.AttributeValueMemberS{Value: reference},
		},
		UpdateExpression:    aws.String(updateExpr),
		ConditionExpression: aws.String(condition),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: values,
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update transaction status: %w", err)
	}

	return true, nil
}

// MarkFulfilled records that the provider confirmed fulfillment for a
// still-pending transaction. The flag lets the reconciliation sweep find
// the dangerous fulfilled-but-undebited window after a failed debit write.
func (s *Store) MarkFulfilled(ctx context.Context, reference string) error {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"reference": &types.AttributeValueMemberS{Value: reference},
		},
		UpdateExpression:    aws.String("SET fulfilled = :true, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(#ref)"),
		ExpressionAttributeNames: map[string]string{
			"#ref": "reference",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":now":  nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark transaction fulfilled: %w", err)
	}

	return nil
}

// TagSubstitution records a fallback substitution on the transaction's
// metadata. The amount attribute is deliberately untouched: the customer
// is charged the original product's sale price regardless of substitution.
func (s *Store) TagSubstitution(ctx context.Context, reference string, substitute *models.Product) error {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"reference": &types.AttributeValueMemberS{Value: reference},
		},
		UpdateExpression:    aws.String("SET metadata.#sp = :sp, metadata.#spr = :spr, updated_at = :now"),
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
			"#sp":     models.MetaSubstituteProduct,
			"#spr":    models.MetaSubstituteProvider,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sp":      &types.AttributeValueMemberS{Value: substitute.ID},
			":spr":     &types.AttributeValueMemberS{Value: substitute.ProviderID},
			":pending": &types.AttributeValueMemberS{Value: string(models.PENDING)},
			":now":     nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to tag substitution: %w", err)
	}

	return nil
}
