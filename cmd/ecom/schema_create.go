package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

type SchemaCreateCmd struct{}

func (c *SchemaCreateCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, env, clients, log)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := store.CreateTables(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(res.Created))
	for _, name := range res.Created {
		rows = append(rows, []string{name})
	}
	r := cliReporter{}
	r.Section("Tables created")
	r.Table([]string{"TABLE"}, rows)
	return nil
}
