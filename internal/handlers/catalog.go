// internal/handlers/catalog.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GET /shops
func (h *CatalogHandler) ListShops(c *gin.Context) {
	shops, err := h.catalogService.ListShops()
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, shops)
}

// GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, categories)
}

// GET /products
//
// Accepts shop_id (uuid) and category_id as filters. The category
// filter takes either our uuid or the numeric id suppliers use in
// their feeds.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter services.ListingFilter

	if raw := c.Query("shop_id"); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid shop_id", nil)
			return
		}
		filter.ShopID = &shopID
	}

	if raw := c.Query("category_id"); raw != "" {
		if categoryID, err := uuid.Parse(raw); err == nil {
			filter.CategoryID = &categoryID
		} else if externalID, err := strconv.Atoi(raw); err == nil {
			filter.CategoryExternalID = &externalID
		} else {
			utils.BadRequestResponse(c, "Invalid category_id", nil)
			return
		}
	}

	listings, err := h.catalogService.ListListings(filter)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, listings)
}

// GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	listing, err := h.catalogService.GetListing(listingID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}
