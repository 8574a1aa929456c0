package database

import (
	"context"
	"errors"

	"api_sales/internal/sales"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleGormRepository implements sales.SaleStore.
type SaleGormRepository struct {
	db *gorm.DB
}

func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

func (r *SaleGormRepository) FindByID(ctx context.Context, id string) (*sales.Sale, error) {
	var s sales.Sale
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sales.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save inserts the sale with a fresh ID when it has none and updates it otherwise.
func (r *SaleGormRepository) Save(ctx context.Context, s *sales.Sale) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
		return r.db.WithContext(ctx).Create(s).Error
	}
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SaleGormRepository) Delete(ctx context.Context, s *sales.Sale) error {
	res := r.db.WithContext(ctx).Delete(&sales.Sale{}, "id = ?", s.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sales.ErrNotFound
	}
	return nil
}

// ProductGormRepository implements sales.ProductStore. With lock set,
// FindByID takes a row lock for the rest of the transaction.
type ProductGormRepository struct {
	db   *gorm.DB
	lock bool
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (*sales.Product, error) {
	q := r.db.WithContext(ctx)
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p sales.Product
	err := q.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sales.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductGormRepository) Save(ctx context.Context, p *sales.Product) error {
	if p.ID == "" {
		return sales.ErrEmptyID
	}
	return r.db.WithContext(ctx).Save(p).Error
}

// UserGormRepository implements sales.UserStore.
type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) FindByID(ctx context.Context, id string) (*sales.User, error) {
	var u sales.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sales.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserGormRepository) Save(ctx context.Context, u *sales.User) error {
	if u.ID == "" {
		return sales.ErrEmptyID
	}
	return r.db.WithContext(ctx).Save(u).Error
}
