package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoicing-service/internal/models"
)

// CustomerRepository handles database operations for customers
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID retrieves an owner's customer
func (r *CustomerRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).First(&customer).Error
	if err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

// Update saves a customer
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete soft-deletes an owner's customer
func (r *CustomerRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).Delete(&models.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of the owner's customers
func (r *CustomerRepository) List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Customer, int64, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Customer{}).Where("owner_id = ?", ownerID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR gstin ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	err := query.Order("name ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&customers).Error
	return customers, total, err
}

// ProductRepository handles database operations for products
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID retrieves an owner's product
func (r *ProductRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).First(&product).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// Update saves a product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes an owner's product
func (r *ProductRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of the owner's products
func (r *ProductRepository) List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Product, int64, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("owner_id = ?", ownerID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR hsn_code ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("name ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&products).Error
	return products, total, err
}

// ListAll returns every product of the owner, for export
func (r *ProductRepository) ListAll(ctx context.Context, ownerID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Find(&products).Error
	return products, err
}

// UpsertByName inserts products, updating existing ones with the same name
func (r *ProductRepository) UpsertByName(ctx context.Context, ownerID string, products []models.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	for i := range products {
		products[i].OwnerID = ownerID
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "hsn_code", "price", "gst_rate", "unit", "tags", "updated_at"}),
	}).CreateInBatches(products, 100)
	return result.RowsAffected, result.Error
}

// GSTStateRepository reads the GST state code table
type GSTStateRepository struct {
	db *gorm.DB
}

// NewGSTStateRepository creates a new GSTStateRepository
func NewGSTStateRepository(db *gorm.DB) *GSTStateRepository {
	return &GSTStateRepository{db: db}
}

// List returns all states ordered by code
func (r *GSTStateRepository) List(ctx context.Context) ([]models.GSTState, error) {
	var states []models.GSTState
	err := r.db.WithContext(ctx).Order("code ASC").Find(&states).Error
	return states, err
}

// PaymentOrderRepository records gateway orders
type PaymentOrderRepository struct {
	db *gorm.DB
}

// NewPaymentOrderRepository creates a new PaymentOrderRepository
func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

// Create records a payment order
func (r *PaymentOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ListByOwner returns the owner's payment orders, newest first
func (r *PaymentOrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.PaymentOrder, error) {
	var orders []models.PaymentOrder
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}
