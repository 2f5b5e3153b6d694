package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

type SchemaTablesCmd struct{}

func (c *SchemaTablesCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, env, clients, log)
	if err != nil {
		return err
	}
	defer closeStore()

	tables, err := store.ListTables(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(tables))
	for _, name := range tables {
		rows = append(rows, []string{name})
	}
	cliReporter{}.Table([]string{"TABLE"}, rows)
	return nil
}
