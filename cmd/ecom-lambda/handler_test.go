package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap/zaptest"

	"github.com/DaveStutler/serverless-e-commerce/internal/dbcreds"
	"github.com/DaveStutler/serverless-e-commerce/internal/ecomschema"
	"github.com/DaveStutler/serverless-e-commerce/internal/rdsdb"
)

type fakeResolver struct {
	gotIdentifier string
}

func (f *fakeResolver) ConnectionInfo(_ context.Context, identifier string) (*rdsdb.ConnectionInfo, error) {
	f.gotIdentifier = identifier
	return &rdsdb.ConnectionInfo{Host: "db.example.com", Port: 5432, Database: "postgres", Status: "available"}, nil
}

func newTestHandler(t *testing.T, prep func(sqlmock.Sqlmock)) (*Handler, *fakeResolver) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if prep != nil {
		prep(mock)
	}

	resolver := &fakeResolver{}
	h := &Handler{
		db:  resolver,
		log: zaptest.NewLogger(t),
		connect: func(context.Context, rdsdb.ConnectionInfo, dbcreds.Credentials) (*sql.DB, error) {
			return db, nil
		},
	}
	return h, resolver
}

func TestHandleRequiresIdentifier(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	t.Setenv("DB_PASSWORD", "hunter2")

	resp, err := h.Handle(context.Background(), Event{Action: ActionCreateTables})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleUnknownAction(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	t.Setenv("DB_PASSWORD", "hunter2")

	resp, err := h.Handle(context.Background(), Event{
		Action:               "drop_everything",
		DBInstanceIdentifier: "mypostgresdb",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleCreateTables(t *testing.T) {
	h, resolver := newTestHandler(t, func(mock sqlmock.Sqlmock) {
		for i := 0; i < 9; i++ {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
		}
		for i := 0; i < 8; i++ {
			mock.ExpectExec("CREATE INDEX IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
		}
	})
	t.Setenv("DB_PASSWORD", "hunter2")

	resp, err := h.Handle(context.Background(), Event{
		Action:               ActionCreateTables,
		DBInstanceIdentifier: "mypostgresdb",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", resp.StatusCode, resp.Body)
	}
	if resolver.gotIdentifier != "mypostgresdb" {
		t.Errorf("resolved identifier %q, want mypostgresdb", resolver.gotIdentifier)
	}

	var body struct {
		CreatedTables []string `json:"created_tables"`
		TotalTables   int      `json:"total_tables"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.CreatedTables) != 9 {
		t.Errorf("created %d tables, want 9", len(body.CreatedTables))
	}
	if body.TotalTables != ecomschema.TableCount() {
		t.Errorf("total_tables = %d, want %d", body.TotalTables, ecomschema.TableCount())
	}
}

func TestHandleExecuteQueryFetch(t *testing.T) {
	h, _ := newTestHandler(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SELECT username FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("johndoe"))
	})
	t.Setenv("DB_PASSWORD", "hunter2")

	resp, err := h.Handle(context.Background(), Event{
		Action:               ActionExecuteQuery,
		DBInstanceIdentifier: "mypostgresdb",
		Query:                "SELECT username FROM users",
		Fetch:                true,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", resp.StatusCode, resp.Body)
	}

	var body struct {
		RowsReturned int `json:"rows_returned"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.RowsReturned != 1 {
		t.Errorf("rows_returned = %d, want 1", body.RowsReturned)
	}
}

func TestHandleCreateCustomTableValidation(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	t.Setenv("DB_PASSWORD", "hunter2")

	resp, err := h.Handle(context.Background(), Event{
		Action:               ActionCreateCustomTable,
		DBInstanceIdentifier: "mypostgresdb",
		TableName:            "analytics",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
