package products

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProductService serves the catalogue endpoints.
type ProductService struct {
	store Store
}

func NewProductService(store Store) *ProductService {
	return &ProductService{store: store}
}

// Product satisfies cart.Catalog.
func (s *ProductService) Product(ctx context.Context, productID string) (models.Product, error) {
	return s.store.Product(ctx, productID)
}

func fail(w http.ResponseWriter, code int, msg string) {
	utils.RespondWithJSON(w, code, models.ListingEnvelope{Success: false, Message: msg})
}

// ListByCategory serves GET /api/products/:category?page&limit&sortBy&sortOrder.
func (s *ProductService) ListByCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	category := strings.TrimSpace(ps.ByName("category"))
	if category == "" {
		fail(w, http.StatusBadRequest, "Category is required")
		return
	}

	q := utils.ParseQueryOptions(r)
	sort, err := ResolveSort(q.SortBy, q.SortOrder)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	list, total, err := s.store.ListByCategory(ctx, category, Page{
		Skip:  q.Skip(),
		Limit: int64(q.Limit),
		Sort:  sort,
	})
	if err != nil {
		globals.Log.Error("ListByCategory", zap.String("category", category), zap.Error(err))
		fail(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	if list == nil {
		list = []models.Product{}
	}

	utils.RespondWithJSON(w, http.StatusOK, models.ListingEnvelope{
		Success: true,
		Data: &models.ProductListing{
			Products:   list,
			Pagination: Paginate(q.Page, q.Limit, total),
			Category:   DisplayName(category),
		},
	})
}

// GetProduct serves GET /api/product/:productid.
func (s *ProductService) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := s.store.Product(ctx, ps.ByName("productid"))
	if errors.Is(err, ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		globals.Log.Error("GetProduct", zap.Error(err))
		http.Error(w, "Failed to fetch product", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// Paginate builds the pagination block for a page of size limit out of total.
func Paginate(page, limit int, total int64) models.Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return models.Pagination{
		CurrentPage:   page,
		TotalPages:    pages,
		TotalProducts: total,
		HasNextPage:   page < pages,
		HasPrevPage:   page > 1,
	}
}

// DisplayName turns a category slug such as "formal_wear" into "Formal Wear".
func DisplayName(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "_", " "))
}
