package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale represents a sales transaction in the system.
// Price is the total at the time of the last write and is never recomputed.
type Sale struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	UserID    string          `gorm:"type:varchar(36);index;not null" json:"user_id"`
	ProductID string          `gorm:"type:varchar(36);index;not null" json:"product_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// User is a buyer. The service only checks that it exists.
type User struct {
	ID    string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name  string `gorm:"type:varchar(255)" json:"name"`
	Email string `gorm:"type:varchar(255)" json:"email"`
}

// Product is a sellable item. Quantity is the remaining stock.
type Product struct {
	ID       string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name     string          `gorm:"type:varchar(255);not null" json:"name"`
	Price    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	Quantity int             `gorm:"not null" json:"quantity"`
}

// SaleRequest is the input for creating or updating a sale.
type SaleRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SaleResponse is the public projection of a Sale.
type SaleResponse struct {
	ID        string          `json:"id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
}

// NewSaleResponse projects a sale onto its response shape.
func NewSaleResponse(s *Sale) SaleResponse {
	return SaleResponse{
		ID:        s.ID,
		Quantity:  s.Quantity,
		Price:     s.Price,
		UserID:    s.UserID,
		ProductID: s.ProductID,
	}
}

// TotalPrice returns unit price times quantity.
func TotalPrice(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}
