// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seatmap/internal/bookings"
	"seatmap/internal/events"
	"seatmap/internal/geometry"
	"seatmap/internal/notifications"
	"seatmap/internal/seats"
	"seatmap/internal/shared/config"
	"seatmap/internal/shared/database"
	"seatmap/internal/tickets"
	"seatmap/internal/venues"
	"seatmap/pkg/cache"
	"seatmap/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	log       *logger.Logger

	cache    cache.Service
	venues   venues.Service
	tickets  tickets.Service
	events   events.Service
	seats    seats.Service
	bookings bookings.Service
}

// NewRouter builds every service and wires the cross-package hooks
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	r := &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		log:       log,
	}
	if db.Redis != nil {
		r.cache = cache.NewService(db.Redis)
	}
	r.buildServices()
	return r
}

func (r *Router) buildServices() {
	pg := r.db.PostgreSQL

	r.tickets = tickets.NewService(tickets.NewRepository(pg), r.log)

	var cacheOpts []geometry.CacheOption
	cacheOpts = append(cacheOpts,
		geometry.WithCapacity(r.config.Geometry.CacheEntries),
		geometry.WithLogger(r.log.WithComponent("geometry")),
	)
	if r.cache != nil {
		cacheOpts = append(cacheOpts, geometry.WithRemote(r.cache, r.config.Geometry.CacheTTL))
	}
	geometryCache := geometry.NewCache(r.geometryOptions(), cacheOpts...)
	r.venues = venues.NewService(venues.NewRepository(pg), r.tickets, geometryCache, r.log)

	r.seats = seats.NewService(r.holdStore(), seats.Config{
		DefaultTTL:    r.config.Holds.DefaultTTL,
		MaxTTL:        r.config.Holds.MaxTTL,
		MaxSeats:      r.config.Holds.MaxSeats,
		SweepInterval: r.config.Holds.SweepInterval,
		SweepBatch:    r.config.Holds.SweepBatch,
	}, seats.WithPublisher(r.publisher), seats.WithLogger(r.log))

	r.events = events.NewService(events.NewRepository(pg), r.venues, r.tickets, r.seats, r.cache, r.log)
	r.bookings = bookings.NewService(bookings.NewRepository(pg), r.log)

	r.seats.SetCatalog(r.events)
	r.seats.SetBookingRecorder(r.bookings)
	r.venues.AddRemovalListener(r.events)
	r.tickets.SetLayoutSource(r.venues)
}

func (r *Router) geometryOptions() geometry.Options {
	g := r.config.Geometry
	opts := geometry.DefaultOptions()
	opts.BlockGap = g.BlockGap
	opts.SectionGap = g.SectionGap
	opts.RingGap = g.RingGap
	opts.PitchRatio = g.PitchRatio
	opts.RowPitch = g.RowPitch
	opts.SectionSpacing = g.SectionSpacing
	opts.TotalAngle = g.TotalAngle
	opts.MinWeight = g.MinWeight
	return opts
}

// holdStore picks the Redis store when Redis is up and configured for holds.
// The in-memory store only serves a single replica.
func (r *Router) holdStore() seats.Store {
	if r.config.Holds.Store == "redis" && r.db.Redis != nil {
		return seats.NewRedisStore(r.db.Redis, r.config.Holds.TombstoneTTL)
	}
	r.log.Warn("Using in-memory hold store", "configured", r.config.Holds.Store)
	return seats.NewMemoryStore(r.config.Holds.TombstoneTTL)
}

// RunBackground starts the hold sweeper and blocks until ctx is done
func (r *Router) RunBackground(ctx context.Context) {
	r.seats.RunSweeper(ctx)
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		venues.SetupVenueRoutes(api, venues.NewController(r.venues))
		tickets.SetupTicketRoutes(api, tickets.NewController(r.tickets))
		events.SetupEventRoutes(api, events.NewController(r.events))
		seats.SetupSeatRoutes(api, seats.NewController(r.seats))
		bookings.SetupBookingRoutes(api, bookings.NewController(r.bookings))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "seatmap",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "seatmap",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"hold_store":  r.config.Holds.Store,
			"broker":      r.config.Messaging.Broker,
			"timestamp":   time.Now(),
		})
	})
}
