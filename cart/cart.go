package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/pricing"
	"outfitorbit/products"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Catalog resolves the product a cart line points at.
type Catalog interface {
	Product(ctx context.Context, productID string) (models.Product, error)
}

// CartService serves the cart endpoints.
type CartService struct {
	store   Store
	catalog Catalog
}

func NewCartService(store Store, catalog Catalog) *CartService {
	return &CartService{store: store, catalog: catalog}
}

// Items satisfies checkout.CartSource.
func (s *CartService) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.store.Items(ctx, userID)
}

// RemoveOrdered drops the lines an order was placed with. Lines added
// after the order stay in the cart.
func (s *CartService) RemoveOrdered(ctx context.Context, userID string, itemIDs []string) error {
	return s.store.RemoveMany(ctx, userID, itemIDs)
}

type cartResponse struct {
	Items   []models.CartItem     `json:"items"`
	Summary models.PriceBreakdown `json:"summary"`
}

// GetCart returns the user's lines with the cart page price preview.
func (s *CartService) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := s.store.Items(ctx, userID)
	if err != nil {
		globals.Log.Error("GetCart", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, cartResponse{Items: items, Summary: pricing.CartSummary(items)})
}

type addRequest struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Size      string       `json:"size"`
	Color     models.Color `json:"color"`
}

// AddToCart increments quantity if the variant is already in the cart, or inserts a new line.
// Name and price always come from the catalogue, never from the request.
func (s *CartService) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" || req.Quantity < 1 {
		utils.RespondWithError(w, http.StatusBadRequest, "productId and a quantity of at least 1 are required")
		return
	}

	product, err := s.catalog.Product(ctx, req.ProductID)
	if errors.Is(err, products.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		globals.Log.Error("AddToCart catalogue lookup", zap.String("product", req.ProductID), zap.Error(err))
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}
	if msg := checkVariant(product, req); msg != "" {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	item, err := s.store.Add(ctx, models.CartItem{
		UserID:   userID,
		Product:  product.Ref(),
		Quantity: req.Quantity,
		Size:     req.Size,
		Color:    req.Color,
		Price:    product.Price,
	})
	if err != nil {
		globals.Log.Error("AddToCart", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, item)
}

func checkVariant(p models.Product, req addRequest) string {
	if !p.InStock {
		return "Product is out of stock"
	}
	if len(p.Sizes) > 0 && !slices.Contains(p.Sizes, req.Size) {
		return "Size not available"
	}
	if len(p.Colors) > 0 && !slices.ContainsFunc(p.Colors, func(c models.Color) bool { return c.Name == req.Color.Name }) {
		return "Color not available"
	}
	return ""
}

// UpdateQuantity sets the quantity of one line. Quantities below 1 are refused; use
// RemoveItem to drop a line.
func (s *CartService) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.Quantity < 1 {
		utils.RespondWithError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	err := s.store.SetQuantity(ctx, userID, ps.ByName("itemid"), body.Quantity)
	if s.writeStoreError(w, "UpdateQuantity", err) {
		return
	}
	s.GetCart(w, r, ps)
}

// RemoveItem deletes one line from the cart.
func (s *CartService) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := s.store.Remove(ctx, userID, ps.ByName("itemid"))
	if s.writeStoreError(w, "RemoveItem", err) {
		return
	}
	s.GetCart(w, r, ps)
}

func (s *CartService) writeStoreError(w http.ResponseWriter, op string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrItemNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Cart item not found")
	default:
		globals.Log.Error(op, zap.Error(err))
		http.Error(w, "Failed to update cart", http.StatusInternalServerError)
	}
	return true
}
