package service

import (
	"context"

	"github.com/vitrinshop/vitrin/internal/model"
)

// SellerDirectory resolves public storefront handles.
type SellerDirectory interface {
	GetByUsername(ctx context.Context, username string) (*model.Seller, error)
}

// ItemCatalog lists a storefront's purchasable items.
type ItemCatalog interface {
	ListActiveBySeller(ctx context.Context, sellerID uint64) ([]model.Item, error)
}

// CatalogService serves the public storefront view: the seller behind a
// handle plus the active items a customer can order or book.
type CatalogService struct {
	sellers SellerDirectory
	items   ItemCatalog
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(sellers SellerDirectory, items ItemCatalog) *CatalogService {
	return &CatalogService{sellers: sellers, items: items}
}

// Storefront returns the seller registered under a public handle together
// with the seller's active items.  Inactive items stay referenced by order
// history but never appear here.
func (s *CatalogService) Storefront(ctx context.Context, username string) (*model.Seller, []model.Item, error) {
	seller, err := s.sellers.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.items.ListActiveBySeller(ctx, seller.ID)
	if err != nil {
		return nil, nil, err
	}
	return seller, items, nil
}
