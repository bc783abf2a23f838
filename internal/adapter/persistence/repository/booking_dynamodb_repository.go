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

type bookingItem struct {
	ID          string `dynamodbav:"id"`
	TenantID    string `dynamodbav:"tenant_id"`
	ServiceID   string `dynamodbav:"service_id"`
	StaffID     string `dynamodbav:"staff_id"`
	ClientName  string `dynamodbav:"client_name"`
	ClientEmail string `dynamodbav:"client_email"`
	ClientPhone string `dynamodbav:"client_phone,omitempty"`
	StartTime   string `dynamodbav:"start_time"`
	EndTime     string `dynamodbav:"end_time"`
	TotalAmount int64  `dynamodbav:"total_amount"`
	Currency    string `dynamodbav:"currency,omitempty"`
	Status      string `dynamodbav:"status"`
	NaturalKey  string `dynamodbav:"natural_key"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

// BookingDynamoRepository persists Booking entities in DynamoDB.
//
// Table requirements:
//   - bookings PK: id (string)
//   - booking_keys PK: key (string), attribute booking_id
type BookingDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.IBookingRepository = (*BookingDynamoRepository)(nil)

func NewBookingDynamoRepository(ddb *dynamodb.Client, tables Tables) *BookingDynamoRepository {
	return &BookingDynamoRepository{ddb: ddb, tables: tables}
}

func (r *BookingDynamoRepository) Create(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	b.ClientEmail = entities.NormalizeEmail(b.ClientEmail)
	b.StartTime = entities.NormalizeTime(b.StartTime)
	it := toBookingItem(b)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Booking{}, err
	}

	err = transactWrite(ctx, r.ddb, []types.TransactWriteItem{
		conditionalPut(r.tables.Bookings, av, "id"),
		conditionalPut(r.tables.BookingKeys, guardItem(it.NaturalKey, "booking_id", b.ID), "key"),
	})
	if conditionFailed(err) {
		return entities.Booking{}, interfaces.ErrNaturalKeyConflict
	}
	if err != nil {
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingDynamoRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tables.Bookings),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Booking{}, err
	}
	if len(out.Item) == 0 {
		return entities.Booking{}, nil
	}

	var it bookingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Booking{}, err
	}
	return fromBookingItem(it), nil
}

func (r *BookingDynamoRepository) GetByNaturalKey(ctx context.Context, key entities.NaturalKey) (entities.Booking, error) {
	id, err := readGuard(ctx, r.ddb, r.tables.BookingKeys, key.String(), "booking_id")
	if err != nil || id == "" {
		return entities.Booking{}, err
	}
	return r.GetByID(ctx, id)
}

func toBookingItem(b entities.Booking) bookingItem {
	return bookingItem{
		ID:          b.ID,
		TenantID:    b.TenantID,
		ServiceID:   b.ServiceID,
		StaffID:     b.StaffID,
		ClientName:  b.ClientName,
		ClientEmail: b.ClientEmail,
		ClientPhone: b.ClientPhone,
		StartTime:   formatTime(b.StartTime),
		EndTime:     formatTime(b.EndTime),
		TotalAmount: int64(b.TotalAmount),
		Currency:    b.Currency,
		Status:      string(b.Status),
		NaturalKey:  b.NaturalKey().String(),
		CreatedAt:   formatTime(b.CreatedAt),
		UpdatedAt:   formatTime(b.UpdatedAt),
	}
}

func fromBookingItem(it bookingItem) entities.Booking {
	return entities.Booking{
		ID:          it.ID,
		TenantID:    it.TenantID,
		ServiceID:   it.ServiceID,
		StaffID:     it.StaffID,
		ClientName:  it.ClientName,
		ClientEmail: it.ClientEmail,
		ClientPhone: it.ClientPhone,
		StartTime:   parseTime(it.StartTime),
		EndTime:     parseTime(it.EndTime),
		TotalAmount: entities.Money(it.TotalAmount),
		Currency:    it.Currency,
		Status:      entities.BookingStatus(it.Status),
		CreatedAt:   parseTime(it.CreatedAt),
		UpdatedAt:   parseTime(it.UpdatedAt),
	}
}
