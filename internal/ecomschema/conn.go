package ecomschema

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"

	"github.com/DaveStutler/serverless-e-commerce/internal/dbcreds"
	"github.com/DaveStutler/serverless-e-commerce/internal/rdsdb"
)

// DSN builds a postgres connection URL for an instance endpoint.
func DSN(info rdsdb.ConnectionInfo, creds dbcreds.Credentials) string {
	q := url.Values{}
	q.Set("connect_timeout", "30")
	q.Set("application_name", "ecom-provisioner")
	q.Set("sslmode", "require")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(creds.Username, creds.Password),
		Host:     net.JoinHostPort(info.Host, strconv.Itoa(int(info.Port))),
		Path:     "/" + info.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Connect opens and pings the database behind the instance endpoint.
func Connect(ctx context.Context, info rdsdb.ConnectionInfo, creds dbcreds.Credentials) (*sql.DB, error) {
	if info.Status != "available" {
		return nil, errors.Newf("database instance is not available, current status is %s", info.Status)
	}

	db, err := sql.Open("postgres", DSN(info, creds))
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "connecting to %s:%d", info.Host, info.Port)
	}
	return db, nil
}
