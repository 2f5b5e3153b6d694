package vpcnet

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const defaultRouteCIDR = "0.0.0.0/0"

// CreateRouteTable creates a route table in the VPC, tags it public or
// private, and associates it with the given subnet.
func (p *Provisioner) CreateRouteTable(ctx context.Context, vpcID, subnetID, project string, public bool) (string, error) {
	out, err := p.ec2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId: aws.String(vpcID),
	})
	if err != nil {
		return "", errors.Wrapf(err, "creating route table in %s", vpcID)
	}
	rtID := aws.ToString(out.RouteTable.RouteTableId)

	tableType := subnetTypePrivate
	if public {
		tableType = subnetTypePublic
	}
	tags := append(ownedTags(project+"-"+tableType+"-rt", project), tag(tagType, tableType))
	if err := p.tagResource(ctx, rtID, tags); err != nil {
		return "", err
	}

	if _, err := p.ec2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
		RouteTableId: aws.String(rtID),
		SubnetId:     aws.String(subnetID),
	}); err != nil {
		return "", errors.Wrapf(err, "associating route table %s with subnet %s", rtID, subnetID)
	}

	p.log.Info("created route table",
		zap.String("route_table_id", rtID),
		zap.String("subnet_id", subnetID),
		zap.String("type", tableType),
	)
	return rtID, nil
}

// CreateRouteToInternetGateway adds the default route through the internet
// gateway; public subnets reach the internet this way.
func (p *Provisioner) CreateRouteToInternetGateway(ctx context.Context, routeTableID, igwID string) error {
	_, err := p.ec2.CreateRoute(ctx, &ec2.CreateRouteInput{
		RouteTableId:         aws.String(routeTableID),
		DestinationCidrBlock: aws.String(defaultRouteCIDR),
		GatewayId:            aws.String(igwID),
	})
	if err != nil {
		return errors.Wrapf(err, "routing %s through internet gateway %s", routeTableID, igwID)
	}
	p.log.Info("created route", zap.String("route_table_id", routeTableID), zap.String("gateway_id", igwID))
	return nil
}

// CreateRouteToNATGateway adds the default route through the NAT gateway;
// private subnets get outbound-only internet access this way.
func (p *Provisioner) CreateRouteToNATGateway(ctx context.Context, routeTableID, natID string) error {
	_, err := p.ec2.CreateRoute(ctx, &ec2.CreateRouteInput{
		RouteTableId:         aws.String(routeTableID),
		DestinationCidrBlock: aws.String(defaultRouteCIDR),
		NatGatewayId:         aws.String(natID),
	})
	if err != nil {
		return errors.Wrapf(err, "routing %s through NAT gateway %s", routeTableID, natID)
	}
	p.log.Info("created route", zap.String("route_table_id", routeTableID), zap.String("nat_gateway_id", natID))
	return nil
}
