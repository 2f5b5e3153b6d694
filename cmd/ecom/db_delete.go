package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

type DBDeleteCmd struct {
	KeepSubnetGroup bool `help:"Leave the DB subnet group in place."`
}

func (c *DBDeleteCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	ctx := context.Background()
	db := newDB(clients, log)

	if err := db.DeleteInstance(ctx, env.DBIdentifier); err != nil {
		return err
	}
	if c.KeepSubnetGroup {
		return nil
	}
	return db.DeleteSubnetGroup(ctx, env.SubnetGroupName())
}
