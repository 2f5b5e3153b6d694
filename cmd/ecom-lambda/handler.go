package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/dbcreds"
	"github.com/DaveStutler/serverless-e-commerce/internal/ecomschema"
	"github.com/DaveStutler/serverless-e-commerce/internal/rdsdb"
)

// Actions the handler dispatches on.
const (
	ActionCreateTables      = "create_tables"
	ActionInsertSampleData  = "insert_sample_data"
	ActionCreateCustomTable = "create_custom_table"
	ActionExecuteQuery      = "execute_query"
)

// Event is the invocation payload.
type Event struct {
	Action               string `json:"action"`
	DBInstanceIdentifier string `json:"db_instance_identifier"`
	TableName            string `json:"table_name,omitempty"`
	TableSchema          string `json:"table_schema,omitempty"`
	Query                string `json:"query,omitempty"`
	Fetch                bool   `json:"fetch,omitempty"`
	UseSecrets           bool   `json:"use_secrets,omitempty"`
	SecretName           string `json:"secret_name,omitempty"`
}

// Response mirrors the API Gateway proxy shape so callers can treat the
// function like an HTTP endpoint.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// endpointResolver is the slice of rdsdb.Manager the handler needs.
type endpointResolver interface {
	ConnectionInfo(ctx context.Context, identifier string) (*rdsdb.ConnectionInfo, error)
}

type connector func(ctx context.Context, info rdsdb.ConnectionInfo, creds dbcreds.Credentials) (*sql.DB, error)

type Handler struct {
	db      endpointResolver
	secrets dbcreds.SecretsAPI
	log     *zap.Logger
	connect connector
}

func NewHandler(clients *awsenv.ClientSet, log *zap.Logger) *Handler {
	return &Handler{
		db:      rdsdb.New(clients.RDS, log),
		secrets: clients.Secrets,
		log:     log,
		connect: ecomschema.Connect,
	}
}

func (h *Handler) Handle(ctx context.Context, event Event) (Response, error) {
	if event.DBInstanceIdentifier == "" {
		return badRequest("db_instance_identifier is required"), nil
	}

	switch event.Action {
	case ActionCreateTables, ActionInsertSampleData, ActionExecuteQuery:
	case ActionCreateCustomTable:
		if event.TableName == "" || event.TableSchema == "" {
			return badRequest("table_name and table_schema are required"), nil
		}
	default:
		return badRequest("unknown action: " + event.Action), nil
	}
	if event.Action == ActionExecuteQuery && event.Query == "" {
		return badRequest("query is required"), nil
	}

	store, closeStore, err := h.openStore(ctx, event)
	if err != nil {
		return serverError(err, "failed to connect to database"), nil
	}
	defer closeStore()

	switch event.Action {
	case ActionCreateTables:
		res, err := store.CreateTables(ctx)
		if err != nil {
			return serverError(err, "failed to create tables"), nil
		}
		return ok(map[string]any{
			"message":        "Table creation completed",
			"created_tables": res.Created,
			"total_tables":   ecomschema.TableCount(),
		}), nil

	case ActionInsertSampleData:
		res, err := store.Seed(ctx)
		if err != nil {
			return serverError(err, "failed to insert sample data"), nil
		}
		return ok(map[string]any{
			"message":       "Sample data inserted",
			"inserted_data": res.Inserted,
		}), nil

	case ActionCreateCustomTable:
		if err := store.CreateCustomTable(ctx, event.TableName, event.TableSchema); err != nil {
			return serverError(err, "failed to create custom table"), nil
		}
		return ok(map[string]any{
			"message": "Custom table " + event.TableName + " created successfully",
			"success": true,
		}), nil

	default: // ActionExecuteQuery
		if !event.Fetch {
			if err := store.Exec(ctx, event.Query); err != nil {
				return serverError(err, "failed to execute query"), nil
			}
			return ok(map[string]any{
				"message": "Query executed successfully",
				"result":  "Query executed (no results returned)",
			}), nil
		}
		cols, rows, err := store.QueryRows(ctx, event.Query)
		if err != nil {
			return serverError(err, "failed to execute query"), nil
		}
		return ok(map[string]any{
			"message":       "Query executed successfully",
			"columns":       cols,
			"result":        rows,
			"rows_returned": len(rows),
		}), nil
	}
}

func (h *Handler) openStore(ctx context.Context, event Event) (*ecomschema.Store, func(), error) {
	info, err := h.db.ConnectionInfo(ctx, event.DBInstanceIdentifier)
	if err != nil {
		return nil, nil, err
	}

	secretName := ""
	if event.UseSecrets {
		secretName = event.SecretName
	}
	creds, err := dbcreds.Resolve(ctx, h.secrets, secretName)
	if err != nil {
		return nil, nil, err
	}

	db, err := h.connect(ctx, *info, creds)
	if err != nil {
		return nil, nil, err
	}
	return ecomschema.NewStore(db, h.log), func() { _ = db.Close() }, nil
}

func ok(body map[string]any) Response {
	return respond(http.StatusOK, body)
}

func badRequest(msg string) Response {
	return respond(http.StatusBadRequest, map[string]any{"error": msg})
}

func serverError(err error, msg string) Response {
	return respond(http.StatusInternalServerError, map[string]any{
		"error":   err.Error(),
		"message": msg,
	})
}

func respond(code int, body map[string]any) Response {
	raw, err := json.Marshal(body)
	if err != nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: `{"error":"encoding response"}`}
	}
	return Response{StatusCode: code, Body: string(raw)}
}
