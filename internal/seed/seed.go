// Package seed loads users and products from a YAML fixture file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"api_sales/internal/sales"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the fixture layout:
//
//	users:
//	  - id: U1
//	    name: Ada
//	products:
//	  - id: P1
//	    name: Keyboard
//	    price: "5.00"
//	    quantity: 10
type File struct {
	Users    []User    `yaml:"users"`
	Products []Product `yaml:"products"`
}

type User struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Product struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Quantity int    `yaml:"quantity"`
}

// UserWriter is implemented by user stores that accept writes.
type UserWriter interface {
	sales.UserStore
	Save(ctx context.Context, user *sales.User) error
}

// Parse decodes fixture data.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// LoadFile reads path and writes its contents into the stores. users may be
// nil when users live in a remote service; user fixtures are then skipped.
func LoadFile(ctx context.Context, path string, users UserWriter, products sales.ProductStore, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return err
	}
	return Apply(ctx, f, users, products, logger)
}

// Apply inserts the users and products of f that are not stored yet.
// Existing rows are left alone so stock consumed by sales survives a restart.
func Apply(ctx context.Context, f *File, users UserWriter, products sales.ProductStore, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var insertedUsers, insertedProducts int
	if users != nil {
		for _, u := range f.Users {
			exists, err := stored(func() error {
				_, err := users.FindByID(ctx, u.ID)
				return err
			})
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.ID, err)
			}
			if exists {
				continue
			}
			if err := users.Save(ctx, &sales.User{ID: u.ID, Name: u.Name, Email: u.Email}); err != nil {
				return fmt.Errorf("seed user %s: %w", u.ID, err)
			}
			insertedUsers++
		}
	} else if len(f.Users) > 0 {
		logger.Warn("user store is read-only, skipping user fixtures", zap.Int("users", len(f.Users)))
	}

	for _, p := range f.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("seed product %s: invalid price %q: %w", p.ID, p.Price, err)
		}
		if p.Quantity < 0 {
			return fmt.Errorf("seed product %s: negative quantity %d", p.ID, p.Quantity)
		}
		exists, err := stored(func() error {
			_, err := products.FindByID(ctx, p.ID)
			return err
		})
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
		if exists {
			continue
		}
		if err := products.Save(ctx, &sales.Product{ID: p.ID, Name: p.Name, Price: price, Quantity: p.Quantity}); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
		insertedProducts++
	}

	logger.Info("fixtures loaded",
		zap.Int("users", insertedUsers),
		zap.Int("products", insertedProducts),
		zap.Int("skipped", len(f.Users)+len(f.Products)-insertedUsers-insertedProducts),
	)
	return nil
}

// stored runs a lookup and reports whether it found a row.
func stored(find func() error) (bool, error) {
	err := find()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sales.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
