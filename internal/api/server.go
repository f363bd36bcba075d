// Package api exposes the dashboard's HTTP surface: the inventory record
// API, the redistribution workflow and the pricing advisor.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/shelfaware/shelfaware/internal/advisor"
	"github.com/shelfaware/shelfaware/internal/metrics"
	"github.com/shelfaware/shelfaware/internal/models"
	"github.com/shelfaware/shelfaware/internal/redistribute"
	"github.com/shelfaware/shelfaware/internal/store"
)

const serviceName = "shelfaware"

// Server wires the HTTP handlers to their dependencies. The record API works
// against the Repository interface so the backing store can be swapped; the
// dashboard derivations need the slot-backed store directly.
type Server struct {
	repo      store.Repository
	inventory *store.InventoryStore
	workflow  *redistribute.Workflow
	advisor   *advisor.Client
}

// NewServer creates the HTTP server
func NewServer(repo store.Repository, inventory *store.InventoryStore, workflow *redistribute.Workflow, advisorClient *advisor.Client) *Server {
	return &Server{
		repo:      repo,
		inventory: inventory,
		workflow:  workflow,
		advisor:   advisorClient,
	}
}

// Router builds the gin engine with all routes and middleware
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(metrics.PrometheusMiddleware(serviceName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/api/inventory", s.listInventory)
	router.POST("/api/inventory", s.addProduct)
	router.PUT("/api/inventory/:id", s.updateProduct)
	router.DELETE("/api/inventory/:id", s.deleteProduct)
	router.POST("/api/inventory/reset", s.resetInventory)
	router.GET("/api/inventory/summary", s.summary)
	router.GET("/api/inventory/at-risk", s.atRisk)

	router.GET("/api/redistribution/destinations", s.destinations)
	router.POST("/api/redistribution", s.redistribute)
	router.GET("/api/redistribution/history", s.history)

	router.POST("/api/pricing/suggest", s.suggestDiscount)
	router.POST("/api/advisor", s.advise)

	return router
}

// listInventory returns the full list, optionally narrowed by search and
// filter query parameters
func (s *Server) listInventory(c *gin.Context) {
	search := c.Query("search")
	filterBy := c.Query("filter")

	if search != "" || filterBy != "" {
		items, err := s.inventory.Filter(search, filterBy)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	items, err := s.repo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// addProduct stores a new product. Drafts without an id get a server-assigned
// timestamp id; derived expiry fields are always computed server-side.
func (s *Server) addProduct(c *gin.Context) {
	var req models.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	draft := req.Item()
	if draft.ID == "" {
		draft.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	stored, err := s.repo.Add(draft)
	if err != nil {
		if errors.Is(err, store.ErrBadExpiryDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, stored)
}

// updateProduct merges a patch over an existing product
func (s *Server) updateProduct(c *gin.Context) {
	var patch models.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	updated, err := s.repo.Update(c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, store.ErrBadExpiryDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// deleteProduct removes a product; deleting an absent id is a no-op
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.repo.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// resetInventory restores the fixed seed set
func (s *Server) resetInventory(c *gin.Context) {
	items, err := s.inventory.Reset()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// summary returns item counts per urgency tier
func (s *Server) summary(c *gin.Context) {
	sum, err := s.inventory.Summary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// atRisk lists items eligible for redistribution
func (s *Server) atRisk(c *gin.Context) {
	items, err := s.inventory.AtRisk()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	c.JSON(http.StatusOK, items)
}

// destinations resolves nearby drop-off locations for an item. External
// failures come back as an empty list plus an inline message, never a 5xx.
func (s *Server) destinations(c *gin.Context) {
	itemID := c.Query("itemId")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemId is required"})
		return
	}

	destinations, err := s.workflow.Destinations(itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"destinations": []models.Destination{},
			"error":        err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"destinations": destinations})
}

// redistribute confirms a transfer. Invalid input causes no transition; the
// response just reports the workflow state.
func (s *Server) redistribute(c *gin.Context) {
	var req models.RedistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	accepted := s.workflow.Confirm(req.ItemID, req.Destination, req.Quantity)
	status := http.StatusOK
	if accepted {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{
		"accepted": accepted,
		"status":   s.workflow.State(),
	})
}

// history returns the transfer log, newest first
func (s *Server) history(c *gin.Context) {
	c.JSON(http.StatusOK, s.workflow.History())
}

type suggestRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// suggestDiscount asks the advisor for a structured discount suggestion.
// The suggestion is advisory only: stored discounts stay derived from the
// classifier.
func (s *Server) suggestDiscount(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	item, err := s.inventory.Get(req.ItemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	suggestion, err := s.advisor.SuggestDiscount(item)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	discounted := item.Price.
		Mul(decimalPercent(100 - suggestion.DiscountPercent)).
		Round(2)

	c.JSON(http.StatusOK, gin.H{
		"itemId":             item.ID,
		"discountPercent":    suggestion.DiscountPercent,
		"sellThroughPercent": suggestion.SellThroughPercent,
		"originalPrice":      item.Price,
		"discountedPrice":    discounted,
	})
}

type adviseRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// advise answers a free-form prompt, with best-effort percentage extraction
// from the prose
func (s *Server) advise(c *gin.Context) {
	var req adviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reply, err := s.advisor.Advise(req.Prompt)
	if err != nil {
		log.WithField("error", err.Error()).Warn("Advisor call failed")
		c.JSON(http.StatusOK, gin.H{"reply": reply, "error": err.Error()})
		return
	}

	resp := gin.H{"reply": reply}
	if d, ok := advisor.ExtractDiscount(reply); ok {
		resp["discountPercent"] = d
	}
	if st, ok := advisor.ExtractSellThrough(reply); ok {
		resp["sellThroughPercent"] = st
	}
	c.JSON(http.StatusOK, resp)
}
