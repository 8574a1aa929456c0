package sales

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyID is returned when trying to store a user or product with an empty ID.
var ErrEmptyID = errors.New("empty ID")

// SaleStore persists sales. Save inserts when the ID is empty and assigns one,
// otherwise it overwrites the sale with that ID.
type SaleStore interface {
	FindByID(ctx context.Context, id string) (*Sale, error)
	Save(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, sale *Sale) error
}

// UserStore looks users up by ID.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*User, error)
}

// ProductStore reads and writes products, including their stock.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	Save(ctx context.Context, product *Product) error
}

// Stores groups the collaborators a single operation works against.
type Stores struct {
	Sales    SaleStore
	Users    UserStore
	Products ProductStore
}

// TxManager runs fn so that every write it makes through the given stores
// commits or rolls back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(s Stores) error) error
}

// directTx calls fn with the plain stores. Writes are not atomic.
type directTx struct {
	stores Stores
}

func (d directTx) WithinTx(_ context.Context, fn func(s Stores) error) error {
	return fn(d.stores)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu  sync.RWMutex
	m   map[string]*Sale
	now func() time.Time
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m:   map[string]*Sale{},
		now: time.Now,
	}
}

// FindByID returns a copy of the stored sale, or ErrNotFound.
func (l *LocalStorage) FindByID(_ context.Context, id string) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *s
	return &c, nil
}

// Save stores a copy of sale, assigning a new ID when it has none.
func (l *LocalStorage) Save(_ context.Context, sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if sale.ID == "" {
		sale.ID = uuid.NewString()
		sale.CreatedAt = now
	}
	sale.UpdatedAt = now

	c := *sale
	l.m[sale.ID] = &c
	return nil
}

// Delete removes the sale. Returns ErrNotFound if it is not stored.
func (l *LocalStorage) Delete(_ context.Context, sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.m[sale.ID]; !ok {
		return ErrNotFound
	}
	delete(l.m, sale.ID)
	return nil
}

// LocalUserStorage keeps users in memory.
type LocalUserStorage struct {
	mu sync.RWMutex
	m  map[string]*User
}

func NewLocalUserStorage() *LocalUserStorage {
	return &LocalUserStorage{m: map[string]*User{}}
}

func (l *LocalUserStorage) FindByID(_ context.Context, id string) (*User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	u, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// Save adds or replaces a user.
func (l *LocalUserStorage) Save(_ context.Context, user *User) error {
	if user.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	c := *user
	l.m[user.ID] = &c
	return nil
}

// LocalProductStorage keeps products in memory.
type LocalProductStorage struct {
	mu sync.RWMutex
	m  map[string]*Product
}

func NewLocalProductStorage() *LocalProductStorage {
	return &LocalProductStorage{m: map[string]*Product{}}
}

func (l *LocalProductStorage) FindByID(_ context.Context, id string) (*Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

// Save adds or replaces a product.
func (l *LocalProductStorage) Save(_ context.Context, product *Product) error {
	if product.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	c := *product
	l.m[product.ID] = &c
	return nil
}
