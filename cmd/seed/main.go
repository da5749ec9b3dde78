package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seatmap/internal/events"
	"seatmap/internal/layout"
	"seatmap/internal/seats"
	"seatmap/internal/shared/config"
	"seatmap/internal/shared/constants"
	"seatmap/internal/shared/database"
	"seatmap/internal/tickets"
	"seatmap/internal/venues"
	"seatmap/pkg/cache"
	"seatmap/pkg/logger"
)

type Seeder struct {
	db     *database.DB
	venues venues.Service
	events events.Service
	log    *logger.Logger
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewWithWriter(os.Stdout, cfg.LogLevel).WithComponent("seed")

	db, err := database.InitDB(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize database")
		os.Exit(1)
	}
	defer db.Close()

	ticketService := tickets.NewService(tickets.NewRepository(db.PostgreSQL), log)
	venueService := venues.NewService(venues.NewRepository(db.PostgreSQL), ticketService, nil, log)
	ticketService.SetLayoutSource(venueService)
	seatService := seats.NewService(seats.NewMemoryStore(time.Minute), seats.DefaultConfig(), seats.WithLogger(log))

	seeder := &Seeder{
		db:     db,
		venues: venueService,
		events: events.NewService(events.NewRepository(db.PostgreSQL), venueService, ticketService, seatService, nil, log),
		log:    log,
	}

	ctx := context.Background()
	if err := seeder.CleanDatabase(ctx); err != nil {
		log.WithError(err).Error("Failed to clean database")
		os.Exit(1)
	}
	if err := seeder.SeedAll(ctx); err != nil {
		log.WithError(err).Error("Failed to seed database")
		os.Exit(1)
	}
	log.Info("Seeding completed")
}

// CleanDatabase truncates every table, dependents first
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	tables := []string{
		"seat_bookings",
		"bookings",
		"events",
		"ticket_assignments",
		"venue_nodes",
		"venues",
	}

	return s.db.PostgreSQL.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) SeedAll(ctx context.Context) error {
	for _, req := range []venues.ImportVenueRequest{stadium(), theatre()} {
		resp, err := s.venues.ImportVenue(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to import venue %s: %w", req.Root.ID, err)
		}
		s.log.Info("Venue imported",
			"venue_id", resp.VenueID, "nodes", resp.Nodes, "seats", resp.Seats, "issues", len(resp.Issues))
	}

	start := time.Now().UTC().Truncate(time.Hour).Add(7 * 24 * time.Hour)
	for _, req := range []events.CreateEventRequest{
		{ID: "harbour-derby", VenueID: "harbour-stadium", Name: "Harbour Derby", StartsAt: start},
		{ID: "harbour-final", VenueID: "harbour-stadium", Name: "Harbour Cup Final", StartsAt: start.Add(14 * 24 * time.Hour)},
		{ID: "lyric-opening", VenueID: "lyric-theatre", Name: "Opening Night", StartsAt: start.Add(2 * 24 * time.Hour)},
	} {
		if _, err := s.events.CreateEvent(ctx, req); err != nil {
			return fmt.Errorf("failed to create event %s: %w", req.ID, err)
		}
		s.log.Info("Event created", "event_id", req.ID, "venue_id", req.VenueID)
	}

	if s.db.Redis != nil {
		if err := cache.NewService(s.db.Redis).DeletePattern(ctx, constants.CACHE_PREFIX+":*"); err != nil {
			s.log.WithError(err).Warn("Failed to clear Redis cache")
		}
	}
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rows(prefix string, count, seatsPerRow int) []layout.TreeNode {
	out := make([]layout.TreeNode, count)
	for r := range out {
		rowID := fmt.Sprintf("%s-r%d", prefix, r+1)
		row := layout.TreeNode{ID: rowID, Kind: layout.KindRow, Name: fmt.Sprintf("Row %c", 'A'+r), VisualWeight: 1}
		for n := 1; n <= seatsPerRow; n++ {
			row.Children = append(row.Children, layout.TreeNode{
				ID:           fmt.Sprintf("%s-s%d", rowID, n),
				Kind:         layout.KindSeat,
				Name:         fmt.Sprintf("%c%d", 'A'+r, n),
				VisualWeight: 1,
				SeatNumber:   n,
			})
		}
		out[r] = row
	}
	return out
}

// stadium has four stands, the main stand twice as wide, each split into
// lower and upper tiers.
func stadium() venues.ImportVenueRequest {
	root := layout.TreeNode{ID: "harbour-stadium", Kind: layout.KindVenue, Name: "Harbour Stadium", VisualWeight: 1}
	for _, stand := range []struct {
		id, name string
		weight   float64
	}{
		{"main", "Main Stand", 2},
		{"north", "North End", 1},
		{"east", "East Stand", 1.5},
		{"south", "South End", 1},
	} {
		s := layout.TreeNode{ID: stand.id, Kind: layout.KindStand, Name: stand.name, VisualWeight: stand.weight}
		for _, tier := range []string{"lower", "upper"} {
			tierID := stand.id + "-" + tier
			t := layout.TreeNode{ID: tierID, Kind: layout.KindTier, Name: tier, VisualWeight: 1}
			for sec := 1; sec <= 3; sec++ {
				secID := fmt.Sprintf("%s-%d", tierID, sec)
				t.Children = append(t.Children, layout.TreeNode{
					ID: secID, Kind: layout.KindSection, Name: fmt.Sprintf("Block %d", sec), VisualWeight: 1,
					Children: rows(secID, 4, 10),
				})
			}
			s.Children = append(s.Children, t)
		}
		root.Children = append(root.Children, s)
	}

	return venues.ImportVenueRequest{
		LayoutType: layout.LayoutStadium,
		Root:       root,
		TicketAssignments: []tickets.Assignment{
			{NodeID: "harbour-stadium", TicketTypeID: "general", Price: price("35.00")},
			{NodeID: "main", TicketTypeID: "main-stand", Price: price("60.00")},
			{NodeID: "main-lower-2", TicketTypeID: "halfway-line", Price: price("95.00"), OverridesChildren: true},
			{NodeID: "north-upper", TicketTypeID: "family", Price: price("25.00")},
		},
		SeatStatuses: map[string]layout.Status{
			"east-lower-1-r1-s1": layout.StatusBlocked,
			"east-lower-1-r1-s2": layout.StatusBlocked,
		},
	}
}

// theatre places stalls and a curved balcony explicitly.
func theatre() venues.ImportVenueRequest {
	return venues.ImportVenueRequest{
		LayoutType: layout.LayoutTheatre,
		Root: layout.TreeNode{
			ID: "lyric-theatre", Kind: layout.KindVenue, Name: "Lyric Theatre", VisualWeight: 1,
			Children: []layout.TreeNode{
				{
					ID: "stalls", Kind: layout.KindSection, Name: "Stalls", VisualWeight: 1,
					Placement: &layout.Placement{X: 0, Y: 200, Width: 600, Height: 300},
					Children:  rows("stalls", 10, 16),
				},
				{
					ID: "balcony", Kind: layout.KindSection, Name: "Balcony", VisualWeight: 1, Curve: 0.2,
					Placement: &layout.Placement{X: 50, Y: 0, Width: 500, Height: 160},
					Children:  rows("balcony", 5, 14),
				},
			},
		},
		TicketAssignments: []tickets.Assignment{
			{NodeID: "stalls", TicketTypeID: "stalls", Price: price("48.00")},
			{NodeID: "stalls-r1", TicketTypeID: "front-row", Price: price("72.50")},
			{NodeID: "balcony", TicketTypeID: "balcony", Price: price("32.00")},
		},
	}
}
