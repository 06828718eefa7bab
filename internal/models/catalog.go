package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Customer is a buyer the owner invoices
type Customer struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID string    `json:"ownerId" gorm:"type:varchar(255);not null;index:idx_customers_owner"`
	Name    string    `json:"name" gorm:"type:varchar(255);not null"`
	Email   string    `json:"email" gorm:"type:varchar(255)"`
	Phone   string    `json:"phone" gorm:"type:varchar(20)"`

	// Billing address
	BillingAddress string `json:"billingAddress" gorm:"type:text"`
	City           string `json:"city" gorm:"type:varchar(100)"`
	State          string `json:"state" gorm:"type:varchar(100)"` // Buyer jurisdiction for GST
	Pincode        string `json:"pincode" gorm:"type:varchar(6)"`

	GSTIN string         `json:"gstin" gorm:"type:varchar(15)"`
	Tags  pq.StringArray `json:"tags" gorm:"type:text[]"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Product is a catalog entry that can be selected onto an invoice line
type Product struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     string         `json:"ownerId" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_owner_name,priority:1"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_owner_name,priority:2"`
	Description string         `json:"description" gorm:"type:text"`
	HSNCode     string         `json:"hsnCode" gorm:"type:varchar(8)"`
	Price       float64        `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	GSTRate     float64        `json:"gstRate" gorm:"type:decimal(5,2);not null;default:0"`
	Unit        string         `json:"unit" gorm:"type:varchar(20);default:'pcs'"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GSTState is a seeded reference row mapping an Indian state or union
// territory to its two digit GST state code
type GSTState struct {
	Code             string `json:"code" gorm:"type:varchar(2);primary_key"`
	Name             string `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	IsUnionTerritory bool   `json:"isUnionTerritory" gorm:"default:false"`
}

// TableName pins the table name for the seed migration
func (GSTState) TableName() string {
	return "gst_states"
}
