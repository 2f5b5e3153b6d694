package main

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/rdsdb"
)

type DBStatusCmd struct{}

func (c *DBStatusCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	status, err := newDB(clients, log).Status(context.Background(), env.DBIdentifier)
	if errors.Is(err, rdsdb.ErrInstanceNotFound) {
		cliReporter{}.Section("No DB instance named " + env.DBIdentifier)
		return nil
	}
	if err != nil {
		return err
	}

	endpoint := "-"
	if status.Endpoint != nil {
		endpoint = fmt.Sprintf("%s:%d", status.Endpoint.Host, status.Endpoint.Port)
	}

	r := cliReporter{}
	r.Section("Database")
	r.Table(
		[]string{"IDENTIFIER", "STATUS", "ENGINE", "CLASS", "ENDPOINT"},
		[][]string{{
			status.Identifier,
			status.Status,
			status.Engine + " " + status.EngineVersion,
			status.InstanceClass,
			endpoint,
		}},
	)
	return nil
}
