package database

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-dialogue/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Redis
// ==========================

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	type payload struct {
		Step string `json:"step"`
	}

	require.NoError(t, client.SetJSON(ctx, "conv:1", payload{Step: "ask_dates"}, time.Minute))
	assert.True(t, mr.Exists("conv:1"))
	assert.Equal(t, time.Minute, mr.TTL("conv:1"))

	var got payload
	require.NoError(t, client.GetJSON(ctx, "conv:1", &got))
	assert.Equal(t, "ask_dates", got.Step)

	require.NoError(t, client.Del(ctx, "conv:1"))
	assert.ErrorIs(t, client.GetJSON(ctx, "conv:1", &got), ErrCacheMiss)
}

func TestRedisClient_GetJSONErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewRedisFromClient(db)
	ctx := context.Background()

	mock.ExpectGet("broken").SetVal("{not json")
	var dest map[string]interface{}
	err := client.GetJSON(ctx, "broken", &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode broken")

	mock.ExpectGet("down").SetErr(errors.New("connection refused"))
	err = client.GetJSON(ctx, "down", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Postgres
// ==========================

func TestPostgresClient_WithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := NewPostgresFromDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rental_bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = client.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE rental_bookings SET status = 'confirmed'")
		return err
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	err = client.WithTx(context.Background(), func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Elasticsearch
// ==========================

func newTestElasticsearch(t *testing.T, status int, body string) *ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	return client
}

func TestElasticsearchClient_Search(t *testing.T) {
	client := newTestElasticsearch(t, http.StatusOK, `{"hits":{"total":{"value":1},"hits":[{"_source":{"brand":"Skoda"}}]}}`)

	var res struct {
		Hits struct {
			Hits []struct {
				Source map[string]string `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	err := client.Search(context.Background(), "vehicles", map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	}, &res)
	require.NoError(t, err)
	require.Len(t, res.Hits.Hits, 1)
	assert.Equal(t, "Skoda", res.Hits.Hits[0].Source["brand"])
}

func TestElasticsearchClient_SearchError(t *testing.T) {
	client := newTestElasticsearch(t, http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`)

	var res map[string]interface{}
	err := client.Search(context.Background(), "missing", map[string]interface{}{}, &res)

	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, http.StatusNotFound, searchErr.Status)
	assert.Contains(t, searchErr.Body, "index_not_found_exception")
}
