package bookings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"seatmap/pkg/logger"
)

func newTestRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupBookingRoutes(r.Group("/api/v1"), NewController(NewService(repo, logger.Discard())))
	return r
}

func TestController_GetBooking(t *testing.T) {
	repo := new(mockRepository)
	row, err := fromConfirmed(confirmed())
	require.NoError(t, err)
	repo.On("GetBookingByID", mock.Anything, row.ID).Return(row, nil)
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+row.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string          `json:"status"`
		Data   BookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "SM-5F0C3F7E", body.Data.BookingRef)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestController_GetSessionBookings_RejectsBadPaging(t *testing.T) {
	r := newTestRouter(new(mockRepository))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/S1/bookings?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
