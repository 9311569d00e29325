package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/berthplan/internal/entities"
	"github.com/mrlokans/berthplan/internal/services"
	"github.com/mrlokans/berthplan/internal/tasks"
)

func TestScheduleController_Import(t *testing.T) {
	t.Run("imports synchronously", func(t *testing.T) {
		ts := setupTestServer(t)

		w := ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: testBulletin, Year: 2024})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		report := decode[services.ImportReport](t, w)
		assert.NotEmpty(t, report.ImportID)
		assert.Equal(t, entities.ImportStatusCompleted, report.Status)
		assert.Equal(t, 1, report.BlocksParsed)
		assert.Equal(t, 2, report.RecordsCreated)
		assert.Nil(t, report.Records)

		rows, err := ts.schedules.ListRange("2024-03-01", "2024-03-02")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("defaults year to the current year", func(t *testing.T) {
		ts := setupTestServer(t)

		w := ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: testBulletin})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, time.Now().Year(), decode[services.ImportReport](t, w).Year)
	})

	t.Run("enqueues asynchronous import", func(t *testing.T) {
		ts := setupTestServer(t)

		w := ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: testBulletin, Year: 2024, ImportID: "async-1", Async: true})

		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		resp := decode[SuccessResponse](t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "async-1", data["import_id"])
		assert.Equal(t, "task-1", data["task_id"])

		require.Len(t, ts.queue.tasks, 1)
		task, ok := ts.queue.tasks[0].(tasks.ImportScheduleTask)
		require.True(t, ok)
		assert.Equal(t, "async-1", task.ImportID)
		assert.Equal(t, 2024, task.Year)
		assert.Equal(t, testBulletin, task.Text)

		batch, err := ts.batches.Get("async-1")
		require.NoError(t, err)
		assert.Equal(t, entities.ImportStatusPending, batch.Status)
	})

	t.Run("marks batch failed when enqueue fails", func(t *testing.T) {
		ts := setupTestServer(t)
		ts.queue.err = errors.New("queue unavailable")

		w := ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: testBulletin, Year: 2024, ImportID: "async-2", Async: true})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		batch, err := ts.batches.Get("async-2")
		require.NoError(t, err)
		assert.Equal(t, entities.ImportStatusFailed, batch.Status)
	})

	t.Run("rejects duplicate import id", func(t *testing.T) {
		ts := setupTestServer(t)

		w := ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: testBulletin, Year: 2024, ImportID: "dup"})
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: testBulletin, Year: 2024, ImportID: "dup"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing text", map[string]any{"year": 2024}, http.StatusBadRequest, ""},
		{"blank text", ImportRequest{Text: "  \n ", Year: 2024}, http.StatusBadRequest, "empty_text"},
		{"year out of range", ImportRequest{Text: testBulletin, Year: 1999}, http.StatusBadRequest, "invalid_year"},
		{"text over limit", ImportRequest{Text: strings.Repeat("x", 5000), Year: 2024}, http.StatusRequestEntityTooLarge, "text_too_large"},
		{"body over limit", ImportRequest{Text: strings.Repeat("x", 9000), Year: 2024}, http.StatusRequestEntityTooLarge, "text_too_large"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := setupTestServer(t)

			w := ts.do(http.MethodPost, "/api/schedules/import", tc.body)

			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestScheduleController_Preview(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(http.MethodPost, "/api/schedules/preview", ImportRequest{Text: testBulletin, Year: 2024})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[services.ImportReport](t, w)
	assert.Equal(t, "preview", report.ImportID)
	assert.Len(t, report.Records, 2)
	assert.Len(t, report.Outcomes, 3)

	rows, err := ts.schedules.ListRange("2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Empty(t, rows)

	list, err := ts.batches.List(10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScheduleController_List(t *testing.T) {
	ts := setupTestServer(t)
	w := ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: testBulletin, Year: 2024})
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name   string
		query  string
		status int
		count  int
	}{
		{"single date", "?date=2024-03-01", http.StatusOK, 1},
		{"range", "?from=2024-03-01&to=2024-03-02", http.StatusOK, 2},
		{"open-ended from", "?from=2024-03-02", http.StatusOK, 1},
		{"date without rows", "?date=2024-04-01", http.StatusOK, 0},
		{"invalid date", "?date=03/01", http.StatusBadRequest, 0},
		{"reversed range", "?from=2024-03-02&to=2024-03-01", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(http.MethodGet, "/api/schedules"+tc.query, nil)

			require.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.status != http.StatusOK {
				return
			}
			resp := decode[ScheduleListResponse](t, w)
			assert.Equal(t, tc.count, resp.Count)
			assert.Len(t, resp.Schedules, tc.count)
		})
	}

	t.Run("returns rows for the requested date", func(t *testing.T) {
		w := ts.do(http.MethodGet, "/api/schedules?date=2024-03-02", nil)

		resp := decode[ScheduleListResponse](t, w)
		require.Len(t, resp.Schedules, 1)
		assert.Equal(t, "OCEAN PIONEER", resp.Schedules[0].ShipName)
		assert.Equal(t, "2024-03-02", resp.Schedules[0].ScheduleDate)
	})

	t.Run("defaults to today", func(t *testing.T) {
		w := ts.do(http.MethodGet, "/api/schedules", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ScheduleListResponse](t, w)
		assert.Equal(t, time.Now().Format(entities.DateLayout), resp.From)
		assert.Equal(t, resp.From, resp.To)
		assert.NotNil(t, resp.Schedules)
	})
}

func TestScheduleController_Acknowledge(t *testing.T) {
	ts := setupTestServer(t)
	changed := strings.Replace(testBulletin, "03/02 17:00", "03/02 20:00", 1)
	for _, text := range []string{testBulletin, changed} {
		w := ts.do(http.MethodPost, "/api/schedules/import", ImportRequest{Text: text, Year: 2024})
		require.Equal(t, http.StatusOK, w.Code)
	}

	rows, err := ts.schedules.ListByDate("2024-03-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].UpdateFlg)

	w := ts.do(http.MethodPost, fmt.Sprintf("/api/schedules/%d/acknowledge", rows[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	rows, err = ts.schedules.ListByDate("2024-03-01")
	require.NoError(t, err)
	assert.False(t, rows[0].UpdateFlg)

	w = ts.do(http.MethodPost, "/api/schedules/9999/acknowledge", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/api/schedules/abc/acknowledge", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
