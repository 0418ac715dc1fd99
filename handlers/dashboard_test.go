package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sorabackend/core"
	"sorabackend/middleware"
	"sorabackend/models"
	"sorabackend/models/api"
	"sorabackend/usecases/dashboard"
)

const (
	testUserID    = "111111111111111111"
	testGuildID   = "222222222222222222"
	testChannelID = "333333333333333333"
)

type dashboardHTTPTestFixture struct {
	router  *mux.Router
	useCase *MockDashboardUseCase
}

func setupDashboardHTTPTest(t *testing.T) *dashboardHTTPTestFixture {
	useCase := &MockDashboardUseCase{}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	handler := NewDashboardHTTPHandler(NewDashboardAPIHandler(useCase, clock))

	router := mux.NewRouter()
	handler.SetupEndpoints(router, middleware.NewAuthMiddleware(nil, nil, true))

	t.Cleanup(func() { useCase.AssertExpectations(t) })
	return &dashboardHTTPTestFixture{router: router, useCase: useCase}
}

func (f *dashboardHTTPTestFixture) do(method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if authenticated {
		req.Header.Set(middleware.TestingUserHeader, testUserID)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestDashboardHTTPHandler_GetStats(t *testing.T) {
	f := setupDashboardHTTPTest(t)
	f.useCase.On("GetStats", mock.Anything).Return(&models.BotStats{
		GuildCount: 2,
		UserCount:  40,
		Latency:    50 * time.Millisecond,
		Version:    "dev",
		Uptime:     time.Hour,
	}, nil)

	rec := f.do(http.MethodGet, "/api/stats", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats api.StatsModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.GuildCount)
	assert.Equal(t, int64(50), stats.LatencyMs)
	assert.Equal(t, "1 hour ago", stats.StartedAgo)
}

func TestDashboardHTTPHandler_ListGuilds(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)

		rec := f.do(http.MethodGet, "/api/guilds", nil, false)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("lists administered guilds", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)
		f.useCase.On("GetGuilds", mock.Anything, testUserID).Return([]models.DashboardGuild{
			{
				Guild:                 models.DiscordGuild{ID: testGuildID, Name: "Sora"},
				Starboard:             &models.StarboardConfig{ChannelID: testChannelID, Threshold: 3},
				StarboardMessageCount: 4,
			},
		}, nil)

		rec := f.do(http.MethodGet, "/api/guilds", nil, true)

		require.Equal(t, http.StatusOK, rec.Code)
		var guilds []api.GuildModel
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guilds))
		require.Len(t, guilds, 1)
		assert.Equal(t, "Sora", guilds[0].Name)
		assert.True(t, guilds[0].StarboardEnabled)
		assert.Equal(t, 4, guilds[0].StarboardMessageCount)
	})

	t.Run("internal failure", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)
		f.useCase.On("GetGuilds", mock.Anything, testUserID).Return(nil, errors.New("discord down"))

		rec := f.do(http.MethodGet, "/api/guilds", nil, true)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestDashboardHTTPHandler_GuildExists(t *testing.T) {
	f := setupDashboardHTTPTest(t)
	f.useCase.On("GuildExists", mock.Anything, testGuildID).Return(true, nil)

	rec := f.do(http.MethodGet, "/api/guilds/"+testGuildID+"/exists", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exists":true}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/guilds/not-a-guild/exists", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHTTPHandler_GetStarboard(t *testing.T) {
	tests := []struct {
		name           string
		mockSetup      func(m *MockDashboardUseCase)
		expectedStatus int
	}{
		{
			name: "returns settings",
			mockSetup: func(m *MockDashboardUseCase) {
				m.On("GetStarboard", mock.Anything, testUserID, testGuildID).Return(&models.StarboardSettings{
					GuildID:      testGuildID,
					ChannelID:    testChannelID,
					Threshold:    2,
					TextChannels: []models.DiscordChannel{{ID: testChannelID, Name: "starboard"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "forbidden for non admin",
			mockSetup: func(m *MockDashboardUseCase) {
				m.On("GetStarboard", mock.Anything, testUserID, testGuildID).
					Return(nil, fmt.Errorf("not admin: %w", core.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDashboardHTTPTest(t)
			tt.mockSetup(f.useCase)

			rec := f.do(http.MethodGet, "/api/guilds/"+testGuildID+"/starboard", nil, true)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var settings api.StarboardSettingsModel
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
				assert.True(t, settings.Enabled)
				assert.Len(t, settings.Channels, 1)
			}
		})
	}
}

func TestDashboardHTTPHandler_EditStarboard(t *testing.T) {
	path := "/api/guilds/" + testGuildID + "/starboard"

	t.Run("updates starboard", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)
		params := dashboard.EditStarboardParams{GuildID: testGuildID, ChannelID: testChannelID, Threshold: 3}
		f.useCase.On("EditStarboard", mock.Anything, testUserID, params).Return(&models.StarboardSettings{
			GuildID:   testGuildID,
			ChannelID: testChannelID,
			Threshold: 3,
		}, nil)

		rec := f.do(http.MethodPut, path, api.EditStarboardRequest{ChannelID: testChannelID, Threshold: 3}, true)

		require.Equal(t, http.StatusOK, rec.Code)
		var settings api.StarboardSettingsModel
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
		assert.Equal(t, 3, settings.Threshold)
	})

	t.Run("disable needs no channel", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)
		params := dashboard.EditStarboardParams{GuildID: testGuildID, Disabled: true}
		f.useCase.On("EditStarboard", mock.Anything, testUserID, params).
			Return(&models.StarboardSettings{GuildID: testGuildID, Threshold: 3}, nil)

		rec := f.do(http.MethodPut, path, api.EditStarboardRequest{Disabled: true}, true)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects invalid channel id", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)

		rec := f.do(http.MethodPut, path, api.EditStarboardRequest{ChannelID: "general", Threshold: 3}, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)
		req := httptest.NewRequest(http.MethodPut, path, bytes.NewBufferString("{"))
		req.Header.Set(middleware.TestingUserHeader, testUserID)
		rec := httptest.NewRecorder()

		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation error maps to bad request", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)
		params := dashboard.EditStarboardParams{GuildID: testGuildID, ChannelID: testChannelID, Threshold: 0}
		f.useCase.On("EditStarboard", mock.Anything, testUserID, params).
			Return(nil, fmt.Errorf("threshold must be at least 1: %w", core.ErrInvalidArgument))

		rec := f.do(http.MethodPut, path, api.EditStarboardRequest{ChannelID: testChannelID}, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "threshold must be at least 1")
	})

	t.Run("unsupported method", func(t *testing.T) {
		f := setupDashboardHTTPTest(t)

		rec := f.do(http.MethodDelete, path, nil, true)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
