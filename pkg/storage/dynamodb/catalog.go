package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// GetProduct retrieves a product from the catalog by its ID.
func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": productID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.CatalogTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get product from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("product %s: %w", productID, storage.ErrProductNotFound)
	}

	var product models.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

// FindSubstitute searches the catalog for an active product deliverable in
// place of the given one: same kind, same network, same sale price, but a
// different provider. The equal-price filter is the price-fairness
// invariant; a substitution may never make the purchase more expensive.
func (s *Store) FindSubstitute(ctx context.Context, product *models.Product) (*models.Product, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.CatalogTableName),
		IndexName:              aws.String(kindNetworkIndex),
		KeyConditionExpression: aws.String("kind = :kind AND network = :network"),
		FilterExpression:       aws.String("sale_price = :price AND active = :true AND provider_id <> :provider"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind":     &types.AttributeValueMemberS{Value: string(product.Kind)},
			":network":  &types.AttributeValueMemberS{Value: product.Network},
			":price":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", product.SalePrice)},
			":true":     &types.AttributeValueMemberBOOL{Value: true},
			":provider": &types.AttributeValueMemberS{Value: product.ProviderID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query substitute products: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, storage.ErrNoSubstitute
	}

	var substitute models.Product
	if err := attributevalue.UnmarshalMap(result.Items[0], &substitute); err != nil {
		return nil, fmt.Errorf("failed to unmarshal substitute product: %w", err)
	}

	return &substitute, nil
}

// DeactivateProduct clears a product's active flag so future catalog reads
// skip it. Called when a provider rejects the product as unavailable and
// no substitute exists.
func (s *Store) DeactivateProduct(ctx context.Context, productID string) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.CatalogTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression:    aws.String("SET active = :false"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	}

	_, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("product %s: %w", productID, storage.ErrProductNotFound)
		}
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	return nil
}
