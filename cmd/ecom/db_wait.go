package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

type DBWaitCmd struct {
	Timeout time.Duration `default:"20m" help:"Give up after this long."`
}

func (c *DBWaitCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	return newDB(clients, log).WaitForAvailable(context.Background(), env.DBIdentifier, c.Timeout)
}
