// Package vpcnet provisions and tears down the VPC graph backing the
// e-commerce database: VPC, public/private subnets across two availability
// zones, internet and NAT gateways, route tables, and the PostgreSQL
// security group. Every operation is a direct EC2 call; ordering is fixed
// by AWS's own dependency constraints.
package vpcnet

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	// vpcCIDR is carved into one public and one private /24 per AZ.
	vpcCIDR = "10.0.0.0/16"

	postgresPort = 5432

	// zoneCount is how many availability zones the network spans.
	zoneCount = 2
)

// Network holds the identifiers of everything Provision created. Values are
// threaded from one API response into the next request.
type Network struct {
	VPCID                string
	PublicSubnetIDs      []string
	PrivateSubnetIDs     []string
	InternetGatewayID    string
	NATGatewayID         string
	PublicRouteTableIDs  []string
	PrivateRouteTableIDs []string
	SecurityGroupID      string
}

// Provisioner creates and deletes the VPC graph for a project.
type Provisioner struct {
	ec2 EC2API
	log *zap.Logger
}

// New returns a Provisioner backed by the given EC2 client.
func New(client EC2API, log *zap.Logger) *Provisioner {
	return &Provisioner{ec2: client, log: log}
}

// Provision creates the complete network for project in a fixed order:
// VPC, subnets in two AZs, internet gateway, public route tables, NAT
// gateway, private route tables, security group.
func (p *Provisioner) Provision(ctx context.Context, project string) (*Network, error) {
	net := &Network{}

	vpcID, err := p.CreateVPC(ctx, project)
	if err != nil {
		return nil, err
	}
	net.VPCID = vpcID

	zones, err := p.AvailabilityZones(ctx)
	if err != nil {
		return nil, err
	}

	for i, zone := range zones {
		publicCIDR := fmt.Sprintf("10.0.%d.0/24", 2*i+1)
		publicID, err := p.CreateSubnet(ctx, SubnetParams{
			VPCID:   vpcID,
			CIDR:    publicCIDR,
			Zone:    zone,
			Name:    fmt.Sprintf("%s-public-subnet-%d", project, i+1),
			Project: project,
			Public:  true,
		})
		if err != nil {
			return nil, err
		}
		net.PublicSubnetIDs = append(net.PublicSubnetIDs, publicID)

		privateCIDR := fmt.Sprintf("10.0.%d.0/24", 2*i+2)
		privateID, err := p.CreateSubnet(ctx, SubnetParams{
			VPCID:   vpcID,
			CIDR:    privateCIDR,
			Zone:    zone,
			Name:    fmt.Sprintf("%s-private-subnet-%d", project, i+1),
			Project: project,
		})
		if err != nil {
			return nil, err
		}
		net.PrivateSubnetIDs = append(net.PrivateSubnetIDs, privateID)
	}

	igwID, err := p.CreateInternetGateway(ctx, vpcID, project)
	if err != nil {
		return nil, err
	}
	net.InternetGatewayID = igwID

	for _, subnetID := range net.PublicSubnetIDs {
		rtID, err := p.CreateRouteTable(ctx, vpcID, subnetID, project, true)
		if err != nil {
			return nil, err
		}
		if err := p.CreateRouteToInternetGateway(ctx, rtID, igwID); err != nil {
			return nil, err
		}
		net.PublicRouteTableIDs = append(net.PublicRouteTableIDs, rtID)
	}

	// The NAT gateway lives in the first public subnet and serves every
	// private subnet.
	natID, err := p.CreateNATGateway(ctx, net.PublicSubnetIDs[0], project)
	if err != nil {
		return nil, err
	}
	net.NATGatewayID = natID

	for _, subnetID := range net.PrivateSubnetIDs {
		rtID, err := p.CreateRouteTable(ctx, vpcID, subnetID, project, false)
		if err != nil {
			return nil, err
		}
		if err := p.CreateRouteToNATGateway(ctx, rtID, natID); err != nil {
			return nil, err
		}
		net.PrivateRouteTableIDs = append(net.PrivateRouteTableIDs, rtID)
	}

	sgID, err := p.CreateSecurityGroup(ctx, vpcID, project)
	if err != nil {
		return nil, err
	}
	net.SecurityGroupID = sgID

	p.log.Info("network provisioned",
		zap.String("vpc_id", net.VPCID),
		zap.Strings("public_subnet_ids", net.PublicSubnetIDs),
		zap.Strings("private_subnet_ids", net.PrivateSubnetIDs),
		zap.String("internet_gateway_id", net.InternetGatewayID),
		zap.String("nat_gateway_id", net.NATGatewayID),
		zap.String("security_group_id", net.SecurityGroupID),
	)
	return net, nil
}

// AvailabilityZones returns the first two available zones in the region.
// Two zones is the minimum a DB subnet group accepts.
func (p *Provisioner) AvailabilityZones(ctx context.Context) ([]string, error) {
	out, err := p.ec2.DescribeAvailabilityZones(ctx, describeZonesInput())
	if err != nil {
		return nil, errors.Wrap(err, "listing availability zones")
	}
	if len(out.AvailabilityZones) < zoneCount {
		return nil, errors.Newf("need at least %d availability zones, region has %d",
			zoneCount, len(out.AvailabilityZones))
	}

	zones := make([]string, 0, zoneCount)
	for _, az := range out.AvailabilityZones[:zoneCount] {
		zones = append(zones, aws.ToString(az.ZoneName))
	}
	return zones, nil
}
