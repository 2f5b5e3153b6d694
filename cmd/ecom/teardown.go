package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/setup"
)

type TeardownCmd struct{}

func (c *TeardownCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	o := setup.New(env, newNet(clients, log), newDB(clients, log), clients.Secrets, log, cliReporter{})
	return o.Teardown(context.Background())
}
