package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ProcureApp/app/events"
	"ProcureApp/app/services"

	"github.com/gin-gonic/gin"
)

// Server exposes the inbound trigger surface of the engine: a "run now"
// batch trigger, a manual low-stock trigger, and run status. Everything
// else (CRUD, auth, UI) lives outside this service.
type Server struct {
	pipeline  *services.PipelineService
	ledgerSvc *services.LedgerService

	mu          sync.RWMutex
	lastSummary *services.BatchRunSummary
	runInFlight bool
}

// NewServer creates a new API server
func NewServer(pipeline *services.PipelineService, ledgerSvc *services.LedgerService) *Server {
	return &Server{pipeline: pipeline, ledgerSvc: ledgerSvc}
}

// RegisterRoutes wires the engine's endpoints onto a gin router
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)
	router.POST("/pipeline/run", s.handleRunBatch)
	router.GET("/pipeline/status", s.handleStatus)
	router.POST("/pipeline/low-stock", s.handleLowStock)
	router.GET("/inventory/low-stock", s.handleLowStockItems)
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	router := gin.Default()
	s.RegisterRoutes(router)
	return router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now()})
}

// handleRunBatch kicks off a batch run in the background. A second trigger
// while one is in flight is rejected; the pipeline itself is idempotent
// but there is no point running two full passes at once.
func (s *Server) handleRunBatch(c *gin.Context) {
	s.mu.Lock()
	if s.runInFlight {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a batch run is already in progress"})
		return
	}
	s.runInFlight = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.runInFlight = false
			s.mu.Unlock()
		}()

		summary, err := s.pipeline.RunBatch(context.Background())
		if err != nil {
			log.Printf("Manual batch run failed: %v", err)
			return
		}

		s.mu.Lock()
		s.lastSummary = summary
		s.mu.Unlock()
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastSummary == nil {
		c.JSON(http.StatusOK, gin.H{"running": s.runInFlight, "last_run": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"running": s.runInFlight, "last_run": s.lastSummary})
}

// handleLowStock triggers the event run for a single item, same shape as
// the bus event. Useful for manual re-checks and for deployments without
// NATS.
func (s *Server) handleLowStock(c *gin.Context) {
	var ev events.LowStockEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ev.ItemID == 0 || ev.RestaurantID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id and restaurant_id are required"})
		return
	}

	summary, err := s.pipeline.RunForItem(c.Request.Context(), ev)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleLowStockItems lists a restaurant's active items sitting below par,
// the same set the event run acts on. Lets an operator inspect what the
// engine sees before triggering a run.
func (s *Server) handleLowStockItems(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Query("restaurant_id"), 10, 32)
	if err != nil || restaurantID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id is required"})
		return
	}

	items, err := s.ledgerSvc.GetLowStockItems(uint(restaurantID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}
