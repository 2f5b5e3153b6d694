package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/setup"
)

type SetupCmd struct{}

func (c *SetupCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	o := setup.New(env, newNet(clients, log), newDB(clients, log), clients.Secrets, log, cliReporter{})
	return o.Run(context.Background())
}
