package http

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	trequire "github.com/stretchr/testify/require"

	"github.com/waxhands/workshop-backend/internal/core/domain"
	"github.com/waxhands/workshop-backend/internal/core/mocks"
)

func TestHandleStats(t *testing.T) {
	stats := mocks.NewMockStatsProvider()
	stats.On("Stats").Return(domain.BroadcastStats{
		TotalConnections: 5,
		AdminConnections: 1,
		UserConnections:  4,
		LiveConnections:  5,
		QueueDepth:       2,
	})

	handler := NewStatsHandler(stats, slog.New(slog.DiscardHandler))
	rec := httptest.NewRecorder()
	handler.HandleStats(rec, httptest.NewRequest("GET", "/api/v1/stats", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Data domain.BroadcastStats `json:"data"`
	}
	trequire.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.TotalConnections)
	assert.Equal(t, 1, resp.Data.AdminConnections)
	assert.Equal(t, 4, resp.Data.UserConnections)
	assert.Equal(t, 2, resp.Data.QueueDepth)
	stats.AssertExpectations(t)
}
