package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/providers/maps"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

const (
	serviceName    = "placechat"
	serviceVersion = "0.3.0"
)

// TurnRunner runs one streamed chat turn
type TurnRunner interface {
	Run(ctx context.Context, turn chat.Turn, emit chat.Emitter) (chat.Summary, error)
}

// MapsService is the subset of the maps gateway the lookup endpoints use
type MapsService interface {
	Configured() bool
	Search(ctx context.Context, query string, opts maps.SearchOptions) types.Outcome[maps.SearchResult]
	Details(ctx context.Context, placeID string, origin *types.LatLng) types.Outcome[*types.PlaceRecord]
	Geocode(ctx context.Context, address string) (*types.LatLng, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	Photo(ctx context.Context, ref string, maxWidth int) (*maps.Photo, error)
	Directions(ctx context.Context, origin, destination string, mode types.TravelMode) types.Outcome[*types.DirectionsResult]
}

// Deps are the collaborators of Handlers
type Deps struct {
	Chat     TurnRunner
	Maps     MapsService
	Model    string
	Breakers []*resilience.Breaker
	Logger   *zap.Logger
	Metrics  *monitoring.Metrics
}

// Handlers contains all HTTP handlers
type Handlers struct {
	chat     TurnRunner
	maps     MapsService
	model    string
	breakers []*resilience.Breaker
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	started  time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Handlers{
		chat:     deps.Chat,
		maps:     deps.Maps,
		model:    deps.Model,
		breakers: deps.Breakers,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		started:  time.Now(),
	}
}

// Register mounts every route on r. Lookup routes go through extra
// (compression) middleware; the chat stream does not.
func (h *Handlers) Register(r gin.IRouter, lookup ...gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/chat", h.Chat)

	lookups := api.Group("", lookup...)
	lookups.GET("/places/search", h.SearchPlaces)
	lookups.GET("/places/photo", h.PlacePhoto)
	lookups.GET("/places/:id", h.PlaceDetails)
	lookups.GET("/geocode", h.Geocode)
	lookups.GET("/reverse-geocode", h.ReverseGeocode)
	lookups.GET("/directions", h.Directions)
	lookups.GET("/distance", h.Distance)
}

// Root handles liveness
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Health reports configuration and breaker positions
func (h *Handlers) Health(c *gin.Context) {
	breakers := make(gin.H, len(h.breakers))
	status := "healthy"
	for _, b := range h.breakers {
		state := b.State()
		breakers[b.Name()] = state.String()
		if state == resilience.StateOpen {
			status = "degraded"
		}
	}

	mapsConfigured := h.maps != nil && h.maps.Configured()
	if !mapsConfigured {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"llm":      gin.H{"model": h.model},
		"maps":     gin.H{"configured": mapsConfigured},
		"breakers": breakers,
	})
}
