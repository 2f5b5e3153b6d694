package main

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/vpcnet"
)

type InfraStatusCmd struct {
	Name string `arg:"" optional:"" help:"Project name; defaults to $ECOM_PROJECT."`
}

func (c *InfraStatusCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	if c.Name != "" {
		env.Project = c.Name
	}
	disc, err := newNet(clients, log).Discover(context.Background(), env.Project)
	if errors.Is(err, vpcnet.ErrNoNetwork) {
		cliReporter{}.Section("No network provisioned for project " + env.Project)
		return nil
	}
	if err != nil {
		return err
	}

	r := cliReporter{}
	r.Section("Network")
	r.Table(
		[]string{"RESOURCE", "ID"},
		[][]string{
			{"vpc", disc.VPCID},
			{"subnets", strings.Join(disc.SubnetIDs, ", ")},
			{"private subnets", strings.Join(disc.PrivateSubnetIDs, ", ")},
			{"security group", disc.SecurityGroupID},
		},
	)
	return nil
}
