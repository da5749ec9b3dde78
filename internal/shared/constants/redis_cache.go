package constants

import (
	"fmt"
	"time"
)

// Redis Key Configuration
// This file centralizes all Redis keys and TTL values for the seatmap service
// Pattern: seatmap:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_MEDIUM = 12 * time.Hour // 12 hours - for computed geometry
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // 10 minutes - default hold lifetime
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // 5 minutes - for event details
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "seatmap"
)

// ================== GEOMETRY MODULE ==================

// Geometry Cache Keys
const (
	// Computed render trees, one per venue version and viewport
	CACHE_KEY_GEOMETRY = CACHE_PREFIX + ":geometry:venue:" // + venue-id:v:version:vp:WxH:p
)

// Geometry Cache TTLs
const (
	TTL_GEOMETRY = TTL_STATIC_MEDIUM // 12 hours
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENT = CACHE_PREFIX + ":events:detail:" // + event-id
)

const (
	TTL_EVENT = TTL_DYNAMIC_SHORT // 5 minutes
)

// ================== HOLDS MODULE ==================

// Hold store keys, read and written only by the hold Lua scripts
const (
	KEY_SEAT_HOLD       = CACHE_PREFIX + ":holds:seat:"     // + event-id:seat-id -> hold-id
	KEY_BOOKED_SEATS    = CACHE_PREFIX + ":holds:booked:"   // + event-id -> SET seat-id
	KEY_DISABLED_SEATS  = CACHE_PREFIX + ":holds:disabled:" // + event-id -> SET seat-id
	KEY_HOLD            = CACHE_PREFIX + ":holds:hold:"     // + hold-id -> HASH
	KEY_HOLD_SEATS      = CACHE_PREFIX + ":holds:seats:"    // + hold-id -> SET seat-id
	KEY_HOLD_EXPIRED    = CACHE_PREFIX + ":holds:expired:"  // + hold-id tombstone
	KEY_SESSION_HOLDS   = CACHE_PREFIX + ":holds:session:"  // + session-id -> SET hold-id
	KEY_HOLDS_BY_EXPIRY = CACHE_PREFIX + ":holds:by_expiry" // ZSET hold-id scored by expiry (ms)
)

// Hold TTLs
const (
	TTL_HOLD_DEFAULT   = TTL_DYNAMIC_MEDIUM // 10 minutes
	TTL_HOLD_TOMBSTONE = 15 * time.Minute   // how long an expired hold is remembered
)

// ================== RATE LIMIT MODULE ==================

const (
	KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + client:type
)

// ================== HELPER FUNCTIONS ==================

// BuildGeometryKey constructs the cache key of one render
// Example: BuildGeometryKey("arena", 7, 800, 600, 16) -> "seatmap:geometry:venue:arena:v:7:vp:800x600:p16"
func BuildGeometryKey(venueID string, version uint64, width, height, padding float64) string {
	return CACHE_KEY_GEOMETRY + venueID + fmt.Sprintf(":v:%d:vp:%gx%g:p%g", version, width, height, padding)
}

// BuildGeometryVenuePattern matches every cached render of a venue
func BuildGeometryVenuePattern(venueID string) string {
	return CACHE_KEY_GEOMETRY + venueID + ":*"
}

func BuildEventKey(eventID string) string {
	return CACHE_KEY_EVENT + eventID
}

func BuildSeatHoldKey(eventID, seatID string) string {
	return KEY_SEAT_HOLD + eventID + ":" + seatID
}

// BuildSeatHoldPrefix is the per-event prefix the Lua scripts append seat ids to
func BuildSeatHoldPrefix(eventID string) string {
	return KEY_SEAT_HOLD + eventID + ":"
}

func BuildBookedSeatsKey(eventID string) string {
	return KEY_BOOKED_SEATS + eventID
}

func BuildDisabledSeatsKey(eventID string) string {
	return KEY_DISABLED_SEATS + eventID
}

func BuildHoldKey(holdID string) string {
	return KEY_HOLD + holdID
}

func BuildHoldSeatsKey(holdID string) string {
	return KEY_HOLD_SEATS + holdID
}

func BuildHoldExpiredKey(holdID string) string {
	return KEY_HOLD_EXPIRED + holdID
}

func BuildSessionHoldsKey(sessionID string) string {
	return KEY_SESSION_HOLDS + sessionID
}

func BuildRateLimitKey(client, limitType string) string {
	return KEY_RATE_LIMIT + client + ":" + limitType
}
