package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/dbcreds"
	"github.com/DaveStutler/serverless-e-commerce/internal/ecomschema"
	"github.com/DaveStutler/serverless-e-commerce/internal/rdsdb"
	"github.com/DaveStutler/serverless-e-commerce/internal/vpcnet"
)

func newNet(clients *awsenv.ClientSet, log *zap.Logger) *vpcnet.Provisioner {
	return vpcnet.New(clients.EC2, log)
}

func newDB(clients *awsenv.ClientSet, log *zap.Logger) *rdsdb.Manager {
	return rdsdb.New(clients.RDS, log)
}

// openStore connects to the provisioned database. The returned closer must
// be called when the command is done with the store.
func openStore(ctx context.Context, env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) (*ecomschema.Store, func(), error) {
	info, err := newDB(clients, log).ConnectionInfo(ctx, env.DBIdentifier)
	if err != nil {
		return nil, nil, err
	}
	creds, err := dbcreds.Resolve(ctx, clients.Secrets, env.DBSecretName)
	if err != nil {
		return nil, nil, err
	}
	db, err := ecomschema.Connect(ctx, *info, creds)
	if err != nil {
		return nil, nil, err
	}
	return ecomschema.NewStore(db, log), func() { _ = db.Close() }, nil
}
