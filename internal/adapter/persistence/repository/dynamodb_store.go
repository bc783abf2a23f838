package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"booking_reconciliation/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	tableWaitTimeout = 2 * time.Minute

	transactConflictRetries = 5
	transactConflictBackoff = 20 * time.Millisecond
)

// Tables names every DynamoDB table the store touches.
//
// DynamoDB has no secondary unique constraints, so each uniqueness rule gets a guard table
// keyed by the unique value. Entity and guard items are written in one TransactWriteItems
// call with attribute_not_exists conditions:
//   - BookingKeys: key = natural key string
//   - PaymentKeys: key = "txn#<transaction id>" and "booking#<booking id>"
type Tables struct {
	Bookings    string
	BookingKeys string
	Payments    string
	PaymentKeys string
	Tenants     string
	Services    string
	Staff       string
}

func TablesFromConfig(cfg config.Config) Tables {
	return Tables{
		Bookings:    cfg.BookingsTable,
		BookingKeys: cfg.BookingKeysTable,
		Payments:    cfg.PaymentsTable,
		PaymentKeys: cfg.PaymentKeysTable,
		Tenants:     cfg.TenantsTable,
		Services:    cfg.ServicesTable,
		Staff:       cfg.StaffTable,
	}
}

// DynamoStore groups the DynamoDB repositories over one client.
type DynamoStore struct {
	ddb    *dynamodb.Client
	tables Tables
}

func NewDynamoStore(ddb *dynamodb.Client, tables Tables) *DynamoStore {
	return &DynamoStore{ddb: ddb, tables: tables}
}

func (s *DynamoStore) Bookings() *BookingDynamoRepository {
	return NewBookingDynamoRepository(s.ddb, s.tables)
}

func (s *DynamoStore) Payments() *PaymentDynamoRepository {
	return NewPaymentDynamoRepository(s.ddb, s.tables)
}

func (s *DynamoStore) Catalog() *CatalogDynamoRepository {
	return NewCatalogDynamoRepository(s.ddb, s.tables)
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tables.Bookings)})
	return err
}

type tableSpec struct {
	name    string
	hashKey string
	sortKey string
}

// Migrate creates missing tables (PAY_PER_REQUEST) and waits until they are active.
func (s *DynamoStore) Migrate(ctx context.Context) error {
	specs := []tableSpec{
		{name: s.tables.Bookings, hashKey: "id"},
		{name: s.tables.BookingKeys, hashKey: "key"},
		{name: s.tables.Payments, hashKey: "id"},
		{name: s.tables.PaymentKeys, hashKey: "key"},
		{name: s.tables.Tenants, hashKey: "id"},
		{name: s.tables.Services, hashKey: "tenant_id", sortKey: "id"},
		{name: s.tables.Staff, hashKey: "tenant_id", sortKey: "id"},
	}
	waiter := dynamodb.NewTableExistsWaiter(s.ddb)
	for _, spec := range specs {
		if err := s.createTable(ctx, spec); err != nil {
			return err
		}
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.name)}, tableWaitTimeout); err != nil {
			return fmt.Errorf("wait for table %s: %w", spec.name, err)
		}
	}
	return nil
}

func (s *DynamoStore) createTable(ctx context.Context, spec tableSpec) error {
	attrs := []types.AttributeDefinition{{AttributeName: aws.String(spec.hashKey), AttributeType: types.ScalarAttributeTypeS}}
	schema := []types.KeySchemaElement{{AttributeName: aws.String(spec.hashKey), KeyType: types.KeyTypeHash}}
	if spec.sortKey != "" {
		attrs = append(attrs, types.AttributeDefinition{AttributeName: aws.String(spec.sortKey), AttributeType: types.ScalarAttributeTypeS})
		schema = append(schema, types.KeySchemaElement{AttributeName: aws.String(spec.sortKey), KeyType: types.KeyTypeRange})
	}

	_, err := s.ddb.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(spec.name),
		AttributeDefinitions: attrs,
		KeySchema:            schema,
		BillingMode:          types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		log.Printf("[store][dynamodb] table exists table=%s", spec.name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create table %s: %w", spec.name, err)
	}
	log.Printf("[store][dynamodb] table created table=%s", spec.name)
	return nil
}

// conditionFailed reports whether a write was rejected by one of its conditions.
func conditionFailed(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// transactionConflicted reports a cancellation caused only by a concurrent transaction on
// the same items, which DynamoDB reports instead of evaluating our conditions.
func transactionConflicted(err error) bool {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return false
	}
	for _, reason := range canceled.CancellationReasons {
		if aws.ToString(reason.Code) == "TransactionConflict" {
			return true
		}
	}
	return false
}

// transactWrite runs items as one transaction, replaying it while DynamoDB cancels it for
// a concurrent transaction so the caller ends up with either success or a condition failure.
func transactWrite(ctx context.Context, ddb *dynamodb.Client, items []types.TransactWriteItem) error {
	var err error
	for attempt := 0; attempt <= transactConflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(transactConflictBackoff * time.Duration(attempt)):
			}
		}
		_, err = ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
		if err == nil || conditionFailed(err) || !transactionConflicted(err) {
			return err
		}
		log.Printf("[store][dynamodb] transaction conflict attempt=%d", attempt)
	}
	return err
}

func conditionalPut(table string, item map[string]types.AttributeValue, keyAttr string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                aws.String(table),
			Item:                     item,
			ConditionExpression:      aws.String("attribute_not_exists(#k)"),
			ExpressionAttributeNames: map[string]string{"#k": keyAttr},
		},
	}
}

func guardItem(key, attr, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: key},
		attr:  &types.AttributeValueMemberS{Value: value},
	}
}

// readGuard returns the value stored under attr for a guard key, or "" when absent.
func readGuard(ctx context.Context, ddb *dynamodb.Client, table, key, attr string) (string, error) {
	out, err := ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            map[string]types.AttributeValue{"key": &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	v, ok := out.Item[attr].(*types.AttributeValueMemberS)
	if !ok {
		return "", nil
	}
	return v.Value, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
