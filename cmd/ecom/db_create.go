package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/dbcreds"
	"github.com/DaveStutler/serverless-e-commerce/internal/rdsdb"
)

type DBCreateCmd struct {
	Wait    bool          `help:"Block until the instance is available."`
	Timeout time.Duration `default:"20m" help:"How long to wait with --wait."`
}

func (c *DBCreateCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	ctx := context.Background()

	disc, err := newNet(clients, log).Discover(ctx, env.Project)
	if err != nil {
		return errors.Wrap(err, "the network must be provisioned first (ecom infra up)")
	}
	if disc.SecurityGroupID == "" {
		return errors.Newf("security group %s not found; re-run ecom infra up", env.SecurityGroupName())
	}

	db := newDB(clients, log)
	if _, err := db.EnsureSubnetGroup(ctx, env.SubnetGroupName(), disc.PrivateSubnetIDs); err != nil {
		return err
	}

	creds, err := dbcreds.Resolve(ctx, clients.Secrets, env.DBSecretName)
	if err != nil {
		return err
	}

	err = db.CreateInstance(ctx, rdsdb.InstanceParams{
		Identifier:       env.DBIdentifier,
		SubnetGroupName:  env.SubnetGroupName(),
		InstanceClass:    env.DBInstanceClass,
		EngineVersion:    env.DBEngineVersion,
		Username:         creds.Username,
		Password:         creds.Password,
		AllocatedStorage: env.AllocatedStorage,
		SecurityGroupIDs: []string{disc.SecurityGroupID},
	})
	if err != nil {
		return err
	}

	if c.Wait {
		return db.WaitForAvailable(ctx, env.DBIdentifier, c.Timeout)
	}
	return nil
}
