package main

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

type SchemaSeedCmd struct{}

func (c *SchemaSeedCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, env, clients, log)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := store.Seed(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(res.Inserted))
	for table, n := range res.Inserted {
		rows = append(rows, []string{table, strconv.Itoa(n)})
	}
	r := cliReporter{}
	r.Section("Sample data")
	r.Table([]string{"TABLE", "ROWS"}, rows)
	return nil
}
