package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service provides high-level sales management operations on top of the
// sale, user and product stores.
type Service struct {
	stores       Stores
	tx           TxManager
	publisher    EventPublisher
	restoreStock bool
	logger       *zap.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTxManager runs every mutating operation inside tm.
func WithTxManager(tm TxManager) Option {
	return func(s *Service) {
		if tm != nil {
			s.tx = tm
		}
	}
}

// WithPublisher sends a SaleEvent after each successful write.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithStockRestore returns a sale's quantity to its product before an update
// re-checks stock, and when the sale is deleted.
func WithStockRestore(enabled bool) Option {
	return func(s *Service) {
		s.restoreStock = enabled
	}
}

// NewService creates a new Service.
func NewService(stores Stores, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		stores: stores,
		tx:     directTx{stores: stores},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale records a sale of req.Quantity units and decrements the product stock.
func (s *Service) CreateSale(ctx context.Context, req SaleRequest) (*SaleResponse, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var sale *Sale
	err := s.tx.WithinTx(ctx, func(st Stores) error {
		user, err := st.Users.FindByID(ctx, req.UserID)
		if err != nil {
			return notFound(err, KindUser, req.UserID)
		}

		product, err := st.Products.FindByID(ctx, req.ProductID)
		if err != nil {
			return notFound(err, KindProduct, req.ProductID)
		}

		if err := checkStock(product, req.Quantity); err != nil {
			return err
		}

		sale = &Sale{
			Quantity:  req.Quantity,
			Price:     TotalPrice(product.Price, req.Quantity),
			UserID:    user.ID,
			ProductID: product.ID,
		}
		if err := st.Sales.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}

		// The sale is already stored; a failure here leaves stock untouched
		// unless a TxManager rolls both writes back.
		product.Quantity -= req.Quantity
		if err := st.Products.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to update stock of product %s: %w", product.ID, err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("create sale failed", err,
			zap.String("user_id", req.UserID),
			zap.String("product_id", req.ProductID),
			zap.Int("quantity", req.Quantity),
		)
		return nil, err
	}

	resp := NewSaleResponse(sale)
	s.logger.Info("sale created", zap.String("sale_id", sale.ID), zap.Any("sale", resp))
	s.publish(ctx, EventSaleCreated, resp)
	return &resp, nil
}

// GetSale returns the sale with the given id.
func (s *Service) GetSale(ctx context.Context, id string) (*SaleResponse, error) {
	sale, err := s.stores.Sales.FindByID(ctx, id)
	if err != nil {
		err = notFound(err, KindSale, id)
		s.logFailure("get sale failed", err, zap.String("sale_id", id))
		return nil, err
	}

	resp := NewSaleResponse(sale)
	return &resp, nil
}

// UpdateSale overwrites the sale's quantity, price, user and product and
// decrements the referenced product's stock by req.Quantity.
//
// Unless stock restore is enabled, the quantity the sale previously held is
// not returned to its product first, so updating a sale consumes stock again.
func (s *Service) UpdateSale(ctx context.Context, id string, req SaleRequest) (*SaleResponse, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var sale *Sale
	err := s.tx.WithinTx(ctx, func(st Stores) error {
		existing, err := st.Sales.FindByID(ctx, id)
		if err != nil {
			return notFound(err, KindSale, id)
		}

		user, err := st.Users.FindByID(ctx, req.UserID)
		if err != nil {
			return notFound(err, KindUser, req.UserID)
		}

		product, err := st.Products.FindByID(ctx, req.ProductID)
		if err != nil {
			return notFound(err, KindProduct, req.ProductID)
		}

		var previous *Product
		if s.restoreStock {
			if existing.ProductID == product.ID {
				product.Quantity += existing.Quantity
			} else {
				previous, err = s.findForRestore(ctx, st, existing)
				if err != nil {
					return err
				}
			}
		}

		if err := checkStock(product, req.Quantity); err != nil {
			return err
		}

		existing.Quantity = req.Quantity
		existing.Price = TotalPrice(product.Price, req.Quantity)
		existing.UserID = user.ID
		existing.ProductID = product.ID
		if err := st.Sales.Save(ctx, existing); err != nil {
			return fmt.Errorf("failed to save sale %s: %w", id, err)
		}
		sale = existing

		if previous != nil {
			if err := st.Products.Save(ctx, previous); err != nil {
				return fmt.Errorf("failed to restore stock of product %s: %w", previous.ID, err)
			}
		}

		product.Quantity -= req.Quantity
		if err := st.Products.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to update stock of product %s: %w", product.ID, err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("update sale failed", err,
			zap.String("sale_id", id),
			zap.String("user_id", req.UserID),
			zap.String("product_id", req.ProductID),
			zap.Int("quantity", req.Quantity),
		)
		return nil, err
	}

	resp := NewSaleResponse(sale)
	s.logger.Info("sale updated", zap.String("sale_id", sale.ID), zap.Any("sale", resp))
	s.publish(ctx, EventSaleUpdated, resp)
	return &resp, nil
}

// DeleteSale removes the sale with the given id.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	var deleted *Sale
	err := s.tx.WithinTx(ctx, func(st Stores) error {
		existing, err := st.Sales.FindByID(ctx, id)
		if err != nil {
			return notFound(err, KindSale, id)
		}

		var previous *Product
		if s.restoreStock {
			previous, err = s.findForRestore(ctx, st, existing)
			if err != nil {
				return err
			}
		}

		if err := st.Sales.Delete(ctx, existing); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Kind: KindSale, ID: id}
			}
			return fmt.Errorf("failed to delete sale %s: %w", id, err)
		}
		deleted = existing

		if previous != nil {
			if err := st.Products.Save(ctx, previous); err != nil {
				return fmt.Errorf("failed to restore stock of product %s: %w", previous.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure("delete sale failed", err, zap.String("sale_id", id))
		return err
	}

	s.logger.Info("sale deleted", zap.String("sale_id", id))
	s.publish(ctx, EventSaleDeleted, NewSaleResponse(deleted))
	return nil
}

// findForRestore loads the product a sale points to with the sale's quantity
// added back. A product that no longer exists is skipped.
func (s *Service) findForRestore(ctx context.Context, st Stores, sale *Sale) (*Product, error) {
	p, err := st.Products.FindByID(ctx, sale.ProductID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("product of sale no longer exists, stock not restored",
			zap.String("sale_id", sale.ID),
			zap.String("product_id", sale.ProductID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product %s: %w", sale.ProductID, err)
	}
	p.Quantity += sale.Quantity
	return p, nil
}

func checkStock(p *Product, requested int) error {
	if p.Quantity < requested {
		return &InsufficientStockError{
			ProductName: p.Name,
			Available:   p.Quantity,
			Requested:   requested,
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, sale SaleResponse) {
	if s.publisher == nil {
		return
	}
	event := SaleEvent{Type: eventType, Sale: sale, OccurredAt: s.now()}
	if err := s.publisher.PublishSaleEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish sale event",
			zap.String("event_type", eventType),
			zap.String("sale_id", sale.ID),
			zap.Error(err),
		)
	}
}

// logFailure logs expected domain failures at warn level and everything else at error.
func (s *Service) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) {
		s.logger.Warn(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}
