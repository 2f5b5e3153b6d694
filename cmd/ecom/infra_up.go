package main

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/setup"
)

type InfraUpCmd struct {
	Name string `arg:"" optional:"" help:"Project name; defaults to $ECOM_PROJECT."`
}

func (c *InfraUpCmd) Run(env awsenv.Environment, clients *awsenv.ClientSet, log *zap.Logger) error {
	if c.Name != "" {
		env.Project = c.Name
	}
	ctx := context.Background()
	o := setup.New(env, newNet(clients, log), newDB(clients, log), clients.Secrets, log, cliReporter{})
	network, err := o.ProvisionNetwork(ctx)
	if err != nil {
		return err
	}

	r := cliReporter{}
	r.Section("Network")
	r.Table(
		[]string{"RESOURCE", "ID"},
		[][]string{
			{"vpc", network.VPCID},
			{"public subnets", strings.Join(network.PublicSubnetIDs, ", ")},
			{"private subnets", strings.Join(network.PrivateSubnetIDs, ", ")},
			{"internet gateway", network.InternetGatewayID},
			{"nat gateway", network.NATGatewayID},
			{"security group", network.SecurityGroupID},
			{"subnet group", env.SubnetGroupName()},
		},
	)
	return nil
}
