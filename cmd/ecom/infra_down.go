package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

type InfraDownCmd struct {
	Name string `arg:"" optional:"" help:"Project name; defaults to $ECOM_PROJECT."`
}

func (c *InfraDownCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	if c.Name != "" {
		env.Project = c.Name
	}
	ctx := context.Background()
	if err := newDB(clients, log).DeleteSubnetGroup(ctx, env.SubnetGroupName()); err != nil {
		return err
	}
	return newNet(clients, log).TeardownProject(ctx, env.Project)
}
