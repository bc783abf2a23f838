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

type tenantItem struct {
	ID      string `dynamodbav:"id"`
	Name    string `dynamodbav:"name"`
	Address string `dynamodbav:"address,omitempty"`
	Phone   string `dynamodbav:"phone,omitempty"`
	Email   string `dynamodbav:"email,omitempty"`
}

type serviceItem struct {
	TenantID        string `dynamodbav:"tenant_id"`
	ID              string `dynamodbav:"id"`
	Name            string `dynamodbav:"name"`
	DurationMinutes int    `dynamodbav:"duration_minutes"`
	Price           int64  `dynamodbav:"price"`
}

type staffItem struct {
	TenantID  string `dynamodbav:"tenant_id"`
	ID        string `dynamodbav:"id"`
	FirstName string `dynamodbav:"first_name"`
	LastName  string `dynamodbav:"last_name"`
}

// CatalogDynamoRepository reads tenants, services and staff. Services and staff tables are
// keyed by (tenant_id, id) so cross-tenant ids never resolve.
type CatalogDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.ICatalogRepository = (*CatalogDynamoRepository)(nil)

func NewCatalogDynamoRepository(ddb *dynamodb.Client, tables Tables) *CatalogDynamoRepository {
	return &CatalogDynamoRepository{ddb: ddb, tables: tables}
}

func (r *CatalogDynamoRepository) GetTenant(ctx context.Context, id string) (entities.Tenant, error) {
	var it tenantItem
	found, err := r.get(ctx, r.tables.Tenants, map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}, &it)
	if err != nil || !found {
		return entities.Tenant{}, err
	}
	return entities.Tenant{ID: it.ID, Name: it.Name, Address: it.Address, Phone: it.Phone, Email: it.Email}, nil
}

func (r *CatalogDynamoRepository) GetService(ctx context.Context, tenantID, serviceID string) (entities.Service, error) {
	var it serviceItem
	found, err := r.get(ctx, r.tables.Services, tenantScopedKey(tenantID, serviceID), &it)
	if err != nil || !found {
		return entities.Service{}, err
	}
	return entities.Service{
		ID:              it.ID,
		TenantID:        it.TenantID,
		Name:            it.Name,
		DurationMinutes: it.DurationMinutes,
		Price:           entities.Money(it.Price),
	}, nil
}

func (r *CatalogDynamoRepository) GetStaff(ctx context.Context, tenantID, staffID string) (entities.Staff, error) {
	var it staffItem
	found, err := r.get(ctx, r.tables.Staff, tenantScopedKey(tenantID, staffID), &it)
	if err != nil || !found {
		return entities.Staff{}, err
	}
	return entities.Staff{ID: it.ID, TenantID: it.TenantID, FirstName: it.FirstName, LastName: it.LastName}, nil
}

func (r *CatalogDynamoRepository) PutTenant(ctx context.Context, t entities.Tenant) error {
	return r.put(ctx, r.tables.Tenants, tenantItem{ID: t.ID, Name: t.Name, Address: t.Address, Phone: t.Phone, Email: t.Email})
}

func (r *CatalogDynamoRepository) PutService(ctx context.Context, s entities.Service) error {
	return r.put(ctx, r.tables.Services, serviceItem{
		TenantID:        s.TenantID,
		ID:              s.ID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Price:           int64(s.Price),
	})
}

func (r *CatalogDynamoRepository) PutStaff(ctx context.Context, s entities.Staff) error {
	return r.put(ctx, r.tables.Staff, staffItem{TenantID: s.TenantID, ID: s.ID, FirstName: s.FirstName, LastName: s.LastName})
}

func (r *CatalogDynamoRepository) get(ctx context.Context, table string, key map[string]types.AttributeValue, out any) (bool, error) {
	res, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	if len(res.Item) == 0 {
		return false, nil
	}
	return true, attributevalue.UnmarshalMap(res.Item, out)
}

func (r *CatalogDynamoRepository) put(ctx context.Context, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	return err
}

func tenantScopedKey(tenantID, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"tenant_id": &types.AttributeValueMemberS{Value: tenantID},
		"id":        &types.AttributeValueMemberS{Value: id},
	}
}
