package seats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"seatmap/internal/shared/constants"
)

// Every script starts from this prelude. Records travel as
// {id, event, session, created_ms, expires_ms, seat...}.
var luaPrelude = fmt.Sprintf(`
local K_SEAT = %q
local K_BOOKED = %q
local K_DISABLED = %q
local K_HOLD = %q
local K_HOLD_SEATS = %q
local K_EXPIRED = %q
local K_SESSION = %q
local K_BY_EXPIRY = %q

local function seat_key(event, seat)
    return K_SEAT .. event .. ":" .. seat
end

local function record(id)
    local h = redis.call("HMGET", K_HOLD .. id, "event", "session", "created", "expires")
    if not h[1] then
        return nil
    end
    local seats = redis.call("SMEMBERS", K_HOLD_SEATS .. id)
    table.sort(seats)
    local rec = {id, h[1], h[2], h[3], h[4]}
    for i = 1, #seats do
        rec[#rec + 1] = seats[i]
    end
    return rec
end

local function drop_hold(id, rec, tombstone_ms)
    for i = 6, #rec do
        local k = seat_key(rec[2], rec[i])
        if redis.call("GET", k) == id then
            redis.call("DEL", k)
        end
    end
    redis.call("DEL", K_HOLD .. id, K_HOLD_SEATS .. id)
    redis.call("SREM", K_SESSION .. rec[3], id)
    redis.call("ZREM", K_BY_EXPIRY, id)
    if tombstone_ms > 0 then
        redis.call("SET", K_EXPIRED .. id, "1", "PX", tombstone_ms)
    end
end

-- active hold on a seat; an expired holder is voided and appended to expired
local function holder(event, seat, now, tombstone_ms, expired)
    local k = seat_key(event, seat)
    local id = redis.call("GET", k)
    if not id then
        return nil
    end
    local rec = record(id)
    if not rec then
        redis.call("DEL", k)
        return nil
    end
    if now > tonumber(rec[5]) then
        drop_hold(id, rec, tombstone_ms)
        expired[#expired + 1] = rec
        return nil
    end
    return rec
end

local function taken(event, seat)
    return redis.call("SISMEMBER", K_DISABLED .. event, seat) == 1
        or redis.call("SISMEMBER", K_BOOKED .. event, seat) == 1
end
`,
	constants.KEY_SEAT_HOLD,
	constants.KEY_BOOKED_SEATS,
	constants.KEY_DISABLED_SEATS,
	constants.KEY_HOLD,
	constants.KEY_HOLD_SEATS,
	constants.KEY_HOLD_EXPIRED,
	constants.KEY_SESSION_HOLDS,
	constants.KEY_HOLDS_BY_EXPIRY,
)

// KEYS[1] = hold key
// ARGV = id, event, session, now_ms, expires_ms, tombstone_ms, seat...
// -> {1|0, {conflicting seats}, {expired records}}
var holdScript = redis.NewScript(luaPrelude + `
local id, event, session = ARGV[1], ARGV[2], ARGV[3]
local now, tomb = tonumber(ARGV[4]), tonumber(ARGV[6])
local conflicts, expired, moved = {}, {}, {}

for i = 7, #ARGV do
    local seat = ARGV[i]
    if taken(event, seat) then
        conflicts[#conflicts + 1] = seat
    else
        local rec = holder(event, seat, now, tomb, expired)
        if rec then
            if rec[3] ~= session then
                conflicts[#conflicts + 1] = seat
            else
                moved[#moved + 1] = {rec[1], seat}
            end
        end
    end
end

if #conflicts > 0 then
    return {0, conflicts, expired}
end

for i = 1, #moved do
    local old, seat = moved[i][1], moved[i][2]
    redis.call("SREM", K_HOLD_SEATS .. old, seat)
    if redis.call("SCARD", K_HOLD_SEATS .. old) == 0 then
        drop_hold(old, {old, event, session}, 0)
    end
end

redis.call("HSET", KEYS[1], "event", event, "session", session, "created", ARGV[4], "expires", ARGV[5])
for i = 7, #ARGV do
    redis.call("SET", seat_key(event, ARGV[i]), id)
    redis.call("SADD", K_HOLD_SEATS .. id, ARGV[i])
end
redis.call("SADD", K_SESSION .. session, id)
redis.call("ZADD", K_BY_EXPIRY, ARGV[5], id)
return {1, {}, expired}
`)

// KEYS[1] = hold key
// ARGV = id, now_ms, tombstone_ms
// -> {1, record} | {0, {}} not found | {-1, record?} expired
var releaseScript = redis.NewScript(luaPrelude + `
local id = ARGV[1]
local rec = record(id)
if not rec then
    if redis.call("EXISTS", K_EXPIRED .. id) == 1 then
        return {-1, {}}
    end
    return {0, {}}
end
if tonumber(ARGV[2]) > tonumber(rec[5]) then
    drop_hold(id, rec, tonumber(ARGV[3]))
    return {-1, rec}
end
drop_hold(id, rec, 0)
return {1, rec}
`)

// Same contract as releaseScript; the seats become booked.
var confirmScript = redis.NewScript(luaPrelude + `
local id = ARGV[1]
local rec = record(id)
if not rec then
    if redis.call("EXISTS", K_EXPIRED .. id) == 1 then
        return {-1, {}}
    end
    return {0, {}}
end
if tonumber(ARGV[2]) > tonumber(rec[5]) then
    drop_hold(id, rec, tonumber(ARGV[3]))
    return {-1, rec}
end
for i = 6, #rec do
    redis.call("SADD", K_BOOKED .. rec[2], rec[i])
end
drop_hold(id, rec, 0)
return {1, rec}
`)

// Read-only lookup with the release contract.
var peekScript = redis.NewScript(luaPrelude + `
local id = ARGV[1]
local rec = record(id)
if not rec then
    if redis.call("EXISTS", K_EXPIRED .. id) == 1 then
        return {-1, {}}
    end
    return {0, {}}
end
if tonumber(ARGV[2]) > tonumber(rec[5]) then
    return {-1, rec}
end
return {1, rec}
`)

// ARGV = session, now_ms -> {record...}
var sessionScript = redis.NewScript(luaPrelude + `
local ids = redis.call("SMEMBERS", K_SESSION .. ARGV[1])
local now = tonumber(ARGV[2])
local out = {}
for i = 1, #ids do
    local rec = record(ids[i])
    if not rec then
        redis.call("SREM", K_SESSION .. ARGV[1], ids[i])
    elseif now <= tonumber(rec[5]) then
        out[#out + 1] = rec
    end
end
return out
`)

// ARGV = event, now_ms, tombstone_ms, seat...
// -> {1|0, {conflicting seats}, {expired records}}
var disableScript = redis.NewScript(luaPrelude + `
local event = ARGV[1]
local now, tomb = tonumber(ARGV[2]), tonumber(ARGV[3])
local conflicts, expired = {}, {}
for i = 4, #ARGV do
    local seat = ARGV[i]
    if redis.call("SISMEMBER", K_BOOKED .. event, seat) == 1 then
        conflicts[#conflicts + 1] = seat
    elseif holder(event, seat, now, tomb, expired) then
        conflicts[#conflicts + 1] = seat
    end
end
if #conflicts > 0 then
    return {0, conflicts, expired}
end
for i = 4, #ARGV do
    redis.call("SADD", K_DISABLED .. event, ARGV[i])
end
return {1, {}, expired}
`)

// ARGV = event, now_ms, seat... -> {{status, hold id, session}...} in seat order
var statesScript = redis.NewScript(luaPrelude + `
local event, now = ARGV[1], tonumber(ARGV[2])
local out = {}
for i = 3, #ARGV do
    local seat = ARGV[i]
    local state = {"AVAILABLE", "", ""}
    if redis.call("SISMEMBER", K_DISABLED .. event, seat) == 1 then
        state[1] = "DISABLED"
    elseif redis.call("SISMEMBER", K_BOOKED .. event, seat) == 1 then
        state[1] = "BOOKED"
    else
        local id = redis.call("GET", seat_key(event, seat))
        if id then
            local rec = record(id)
            if rec and now <= tonumber(rec[5]) then
                state = {"HELD", id, rec[3]}
            end
        end
    end
    out[#out + 1] = state
end
return out
`)

// ARGV = now_ms, tombstone_ms, limit -> {expired record...}
var sweepScript = redis.NewScript(luaPrelude + `
local ids = redis.call("ZRANGEBYSCORE", K_BY_EXPIRY, "-inf", "(" .. ARGV[1], "LIMIT", 0, tonumber(ARGV[3]))
local out = {}
for i = 1, #ids do
    local rec = record(ids[i])
    if rec then
        drop_hold(ids[i], rec, tonumber(ARGV[2]))
        out[#out + 1] = rec
    else
        redis.call("ZREM", K_BY_EXPIRY, ids[i])
    end
end
return out
`)

// ARGV = event, seat...
var forgetScript = redis.NewScript(luaPrelude + `
local event = ARGV[1]
for i = 2, #ARGV do
    local seat = ARGV[i]
    redis.call("SREM", K_BOOKED .. event, seat)
    redis.call("SREM", K_DISABLED .. event, seat)
    local k = seat_key(event, seat)
    local id = redis.call("GET", k)
    if id then
        redis.call("DEL", k)
        redis.call("SREM", K_HOLD_SEATS .. id, seat)
        if redis.call("SCARD", K_HOLD_SEATS .. id) == 0 then
            local session = redis.call("HGET", K_HOLD .. id, "session")
            if session then
                drop_hold(id, {id, event, session}, 0)
            end
        end
    end
end
return 1
`)

var errMalformedReply = errors.New("malformed hold store reply")

// RedisStore keeps seat state in Redis. Each operation is a single Lua
// script, so Redis serialises them. Keys are derived inside the scripts,
// which ties the store to a single Redis node.
type RedisStore struct {
	client       redis.UniversalClient
	tombstoneTTL time.Duration
}

func NewRedisStore(client redis.UniversalClient, tombstoneTTL time.Duration) *RedisStore {
	if tombstoneTTL <= 0 {
		tombstoneTTL = constants.TTL_HOLD_TOMBSTONE
	}
	return &RedisStore{client: client, tombstoneTTL: tombstoneTTL}
}

func ms(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func (s *RedisStore) tombstoneMs() string {
	return strconv.FormatInt(s.tombstoneTTL.Milliseconds(), 10)
}

func (s *RedisStore) Hold(ctx context.Context, hold Hold, now time.Time) (Outcome, error) {
	args := []interface{}{hold.ID, hold.EventID, hold.SessionID, ms(hold.CreatedAt), ms(hold.ExpiresAt), s.tombstoneMs()}
	for _, seat := range hold.SeatIDs {
		args = append(args, seat)
	}
	reply, err := holdScript.Run(ctx, s.client, []string{constants.BuildHoldKey(hold.ID)}, args...).Slice()
	if err != nil {
		return Outcome{}, fmt.Errorf("hold script failed: %w", err)
	}
	out, ok, err := parseMutation(reply)
	if err != nil || !ok {
		return out, err
	}
	created := hold.clone()
	created.CreatedAt = time.UnixMilli(hold.CreatedAt.UnixMilli()).UTC()
	created.ExpiresAt = time.UnixMilli(hold.ExpiresAt.UnixMilli()).UTC()
	out.Hold = &created
	return out, nil
}

func (s *RedisStore) Release(ctx context.Context, holdID string, now time.Time) (Outcome, error) {
	return s.finish(ctx, releaseScript, holdID, now)
}

func (s *RedisStore) Confirm(ctx context.Context, holdID string, now time.Time) (Outcome, error) {
	return s.finish(ctx, confirmScript, holdID, now)
}

func (s *RedisStore) finish(ctx context.Context, script *redis.Script, holdID string, now time.Time) (Outcome, error) {
	reply, err := script.Run(ctx, s.client, []string{constants.BuildHoldKey(holdID)}, holdID, ms(now), s.tombstoneMs()).Slice()
	if err != nil {
		return Outcome{}, fmt.Errorf("hold script failed: %w", err)
	}
	status, h, err := parseLookup(reply)
	if err != nil {
		return Outcome{}, err
	}
	switch status {
	case 1:
		return Outcome{Hold: h}, nil
	case -1:
		var out Outcome
		if h != nil {
			out.Expired = []Hold{*h}
		}
		return out, ErrHoldExpired
	default:
		return Outcome{}, ErrHoldNotFound
	}
}

func (s *RedisStore) Get(ctx context.Context, holdID string, now time.Time) (*Hold, error) {
	reply, err := peekScript.Run(ctx, s.client, []string{constants.BuildHoldKey(holdID)}, holdID, ms(now)).Slice()
	if err != nil {
		return nil, fmt.Errorf("hold script failed: %w", err)
	}
	status, h, err := parseLookup(reply)
	if err != nil {
		return nil, err
	}
	switch status {
	case 1:
		return h, nil
	case -1:
		return nil, ErrHoldExpired
	default:
		return nil, ErrHoldNotFound
	}
}

func (s *RedisStore) SessionHolds(ctx context.Context, sessionID string, now time.Time) ([]Hold, error) {
	reply, err := sessionScript.Run(ctx, s.client, nil, sessionID, ms(now)).Slice()
	if err != nil {
		return nil, fmt.Errorf("session script failed: %w", err)
	}
	holds, err := parseRecords(reply)
	if err != nil {
		return nil, err
	}
	sortHolds(holds)
	return holds, nil
}

func (s *RedisStore) Disable(ctx context.Context, eventID string, seatIDs []string, now time.Time) (Outcome, error) {
	args := []interface{}{eventID, ms(now), s.tombstoneMs()}
	for _, seat := range seatIDs {
		args = append(args, seat)
	}
	reply, err := disableScript.Run(ctx, s.client, nil, args...).Slice()
	if err != nil {
		return Outcome{}, fmt.Errorf("disable script failed: %w", err)
	}
	out, _, err := parseMutation(reply)
	return out, err
}

func (s *RedisStore) Enable(ctx context.Context, eventID string, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(seatIDs))
	for i, seat := range seatIDs {
		members[i] = seat
	}
	if err := s.client.SRem(ctx, constants.BuildDisabledSeatsKey(eventID), members...).Err(); err != nil {
		return fmt.Errorf("failed to enable seats: %w", err)
	}
	return nil
}

func (s *RedisStore) States(ctx context.Context, eventID string, seatIDs []string, now time.Time) (map[string]SeatState, error) {
	states := make(map[string]SeatState, len(seatIDs))
	if len(seatIDs) == 0 {
		return states, nil
	}
	args := []interface{}{eventID, ms(now)}
	for _, seat := range seatIDs {
		args = append(args, seat)
	}
	reply, err := statesScript.Run(ctx, s.client, nil, args...).Slice()
	if err != nil {
		return nil, fmt.Errorf("states script failed: %w", err)
	}
	if len(reply) != len(seatIDs) {
		return nil, errMalformedReply
	}
	for i, raw := range reply {
		fields, ok := raw.([]interface{})
		if !ok || len(fields) != 3 {
			return nil, errMalformedReply
		}
		states[seatIDs[i]] = SeatState{
			Status:    SeatStatus(str(fields[0])),
			HoldID:    str(fields[1]),
			SessionID: str(fields[2]),
		}
	}
	return states, nil
}

func (s *RedisStore) Sweep(ctx context.Context, now time.Time, limit int) ([]Hold, error) {
	if limit <= 0 {
		limit = 1000
	}
	reply, err := sweepScript.Run(ctx, s.client, nil, ms(now), s.tombstoneMs(), strconv.Itoa(limit)).Slice()
	if err != nil {
		return nil, fmt.Errorf("sweep script failed: %w", err)
	}
	holds, err := parseRecords(reply)
	if err != nil {
		return nil, err
	}
	sortHolds(holds)
	return holds, nil
}

func (s *RedisStore) Forget(ctx context.Context, eventID string, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	args := []interface{}{eventID}
	for _, seat := range seatIDs {
		args = append(args, seat)
	}
	if err := forgetScript.Run(ctx, s.client, nil, args...).Err(); err != nil {
		return fmt.Errorf("forget script failed: %w", err)
	}
	return nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

// parseMutation reads {status, {conflicts}, {expired records}}.
func parseMutation(reply []interface{}) (Outcome, bool, error) {
	if len(reply) != 3 {
		return Outcome{}, false, errMalformedReply
	}
	status, ok := reply[0].(int64)
	if !ok {
		return Outcome{}, false, errMalformedReply
	}
	var out Outcome
	conflicts, _ := reply[1].([]interface{})
	for _, c := range conflicts {
		out.Conflicts = append(out.Conflicts, str(c))
	}
	records, _ := reply[2].([]interface{})
	expired, err := parseRecords(records)
	if err != nil {
		return Outcome{}, false, err
	}
	out.Expired = expired
	return out, status == 1, nil
}

// parseLookup reads {status, record}.
func parseLookup(reply []interface{}) (int64, *Hold, error) {
	if len(reply) != 2 {
		return 0, nil, errMalformedReply
	}
	status, ok := reply[0].(int64)
	if !ok {
		return 0, nil, errMalformedReply
	}
	fields, _ := reply[1].([]interface{})
	if len(fields) == 0 {
		return status, nil, nil
	}
	h, err := parseRecord(fields)
	if err != nil {
		return 0, nil, err
	}
	return status, h, nil
}

func parseRecords(reply []interface{}) ([]Hold, error) {
	holds := make([]Hold, 0, len(reply))
	for _, raw := range reply {
		fields, ok := raw.([]interface{})
		if !ok {
			return nil, errMalformedReply
		}
		h, err := parseRecord(fields)
		if err != nil {
			return nil, err
		}
		holds = append(holds, *h)
	}
	return holds, nil
}

func parseRecord(fields []interface{}) (*Hold, error) {
	if len(fields) < 5 {
		return nil, errMalformedReply
	}
	created, err := strconv.ParseInt(str(fields[3]), 10, 64)
	if err != nil {
		return nil, errMalformedReply
	}
	expires, err := strconv.ParseInt(str(fields[4]), 10, 64)
	if err != nil {
		return nil, errMalformedReply
	}
	h := &Hold{
		ID:        str(fields[0]),
		EventID:   str(fields[1]),
		SessionID: str(fields[2]),
		SeatIDs:   make([]string, 0, len(fields)-5),
		CreatedAt: time.UnixMilli(created).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}
	for _, seat := range fields[5:] {
		h.SeatIDs = append(h.SeatIDs, str(seat))
	}
	return h, nil
}
