package repository

import (
	"context"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type paymentItem struct {
	ID               string `dynamodbav:"id"`
	BookingID        string `dynamodbav:"booking_id"`
	Amount           int64  `dynamodbav:"amount"`
	FeeAmount        int64  `dynamodbav:"fee_amount"`
	NetAmount        int64  `dynamodbav:"net_amount"`
	Currency         string `dynamodbav:"currency,omitempty"`
	Status           string `dynamodbav:"status"`
	TransactionID    string `dynamodbav:"transaction_id"`
	SessionReference string `dynamodbav:"session_reference,omitempty"`
	CreatedAt        string `dynamodbav:"created_at"`
}

// PaymentDynamoRepository persists Payment entities in DynamoDB.
//
// Table requirements:
//   - payments PK: id (string)
//   - payment_keys PK: key (string), attribute payment_id
type PaymentDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client, tables Tables) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{ddb: ddb, tables: tables}
}

func transactionGuardKey(transactionID string) string { return "txn#" + transactionID }
func bookingGuardKey(bookingID string) string         { return "booking#" + bookingID }

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.Payment{}, err
	}

	err = transactWrite(ctx, r.ddb, []types.TransactWriteItem{
		conditionalPut(r.tables.Payments, av, "id"),
		conditionalPut(r.tables.PaymentKeys, guardItem(transactionGuardKey(p.TransactionID), "payment_id", p.ID), "key"),
		conditionalPut(r.tables.PaymentKeys, guardItem(bookingGuardKey(p.BookingID), "payment_id", p.ID), "key"),
	})
	if conditionFailed(err) {
		return entities.Payment{}, interfaces.ErrPaymentConflict
	}
	if err != nil {
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByTransactionID(ctx context.Context, transactionID string) (entities.Payment, error) {
	return r.getByGuard(ctx, transactionGuardKey(transactionID))
}

func (r *PaymentDynamoRepository) GetByBookingID(ctx context.Context, bookingID string) (entities.Payment, error) {
	return r.getByGuard(ctx, bookingGuardKey(bookingID))
}

func (r *PaymentDynamoRepository) getByGuard(ctx context.Context, key string) (entities.Payment, error) {
	id, err := readGuard(ctx, r.ddb, r.tables.PaymentKeys, key, "payment_id")
	if err != nil || id == "" {
		return entities.Payment{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tables.Payments),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it), nil
}

func toPaymentItem(p entities.Payment) paymentItem {
	return paymentItem{
		ID:               p.ID,
		BookingID:        p.BookingID,
		Amount:           int64(p.Amount),
		FeeAmount:        int64(p.FeeAmount),
		NetAmount:        int64(p.NetAmount),
		Currency:         p.Currency,
		Status:           string(p.Status),
		TransactionID:    p.TransactionID,
		SessionReference: p.SessionReference,
		CreatedAt:        formatTime(p.CreatedAt),
	}
}

func fromPaymentItem(it paymentItem) entities.Payment {
	return entities.Payment{
		ID:               it.ID,
		BookingID:        it.BookingID,
		Amount:           entities.Money(it.Amount),
		FeeAmount:        entities.Money(it.FeeAmount),
		NetAmount:        entities.Money(it.NetAmount),
		Currency:         it.Currency,
		Status:           entities.PaymentStatus(it.Status),
		TransactionID:    it.TransactionID,
		SessionReference: it.SessionReference,
		CreatedAt:        parseTime(it.CreatedAt),
	}
}
