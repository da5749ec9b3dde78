package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestService_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("seatmap:k").RedisNil()

	var p payload
	err := svc.Get(context.Background(), "seatmap:k", &p)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_SetAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)
	ctx := context.Background()

	mock.ExpectSet("seatmap:k", []byte(`{"name":"arena","count":3}`), time.Minute).SetVal("OK")
	mock.ExpectGet("seatmap:k").SetVal(`{"name":"arena","count":3}`)

	require.NoError(t, svc.Set(ctx, "seatmap:k", payload{Name: "arena", Count: 3}, time.Minute))

	var p payload
	require.NoError(t, svc.Get(ctx, "seatmap:k", &p))
	assert.Equal(t, payload{Name: "arena", Count: 3}, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_DeletePatternScansAllPages(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectScan(0, "seatmap:geometry:venue:arena:*", 100).SetVal([]string{"a", "b"}, 7)
	mock.ExpectDel("a", "b").SetVal(2)
	mock.ExpectScan(7, "seatmap:geometry:venue:arena:*", 100).SetVal([]string{}, 0)

	require.NoError(t, svc.DeletePattern(context.Background(), "seatmap:geometry:venue:arena:*"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
