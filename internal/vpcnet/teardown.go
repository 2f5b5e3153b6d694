package vpcnet

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Teardown deletes vpcID and everything inside it that blocks VPC deletion,
// in the fixed order AWS's own dependency constraints dictate:
//
//  1. NAT gateways (then release their elastic IPs)
//  2. non-main route tables (disassociated first)
//  3. internet gateways (detached first)
//  4. subnets
//  5. non-default security groups
//  6. the VPC itself
//
// Every delete tolerates "not found", so a partially torn down VPC can be
// retried. Errors on individual resources are logged and the remaining
// steps still run; the first hard failure is returned at the end.
func (p *Provisioner) Teardown(ctx context.Context, vpcID string) error {
	p.log.Info("tearing down VPC", zap.String("vpc_id", vpcID))

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(p.deleteNATGateways(ctx, vpcID))
	keep(p.deleteRouteTables(ctx, vpcID))
	keep(p.deleteInternetGateways(ctx, vpcID))
	keep(p.deleteSubnets(ctx, vpcID))
	keep(p.deleteSecurityGroups(ctx, vpcID))

	if _, err := p.ec2.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: aws.String(vpcID)}); err != nil && !isNotFound(err) {
		keep(errors.Wrapf(err, "deleting VPC %s", vpcID))
	} else {
		p.log.Info("deleted VPC", zap.String("vpc_id", vpcID))
	}
	return firstErr
}

// TeardownProject finds every VPC tagged for project and tears it down.
// Only resources created by this tool are touched.
func (p *Provisioner) TeardownProject(ctx context.Context, project string) error {
	out, err := p.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: ownedVPCFilters(project),
	})
	if err != nil {
		return errors.Wrapf(err, "listing VPCs for project %s", project)
	}

	var firstErr error
	for _, vpc := range out.Vpcs {
		if err := p.Teardown(ctx, aws.ToString(vpc.VpcId)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// deleteNATGateways deletes every live NAT gateway in the VPC. The elastic
// IP allocation IDs are captured before deletion and released only after
// the gateway is confirmed gone; releasing earlier fails because the
// address is still associated.
func (p *Provisioner) deleteNATGateways(ctx context.Context, vpcID string) error {
	out, err := p.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return errors.Wrapf(err, "listing NAT gateways in %s", vpcID)
	}

	var firstErr error
	for _, nat := range out.NatGateways {
		if nat.State == ec2types.NatGatewayStateDeleted || nat.State == ec2types.NatGatewayStateDeleting {
			continue
		}
		natID := aws.ToString(nat.NatGatewayId)

		var allocationIDs []string
		for _, addr := range nat.NatGatewayAddresses {
			if addr.AllocationId != nil {
				allocationIDs = append(allocationIDs, *addr.AllocationId)
			}
		}

		if _, err := p.ec2.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{
			NatGatewayId: aws.String(natID),
		}); err != nil {
			if !isNotFound(err) {
				p.log.Warn("deleting NAT gateway failed", zap.String("nat_gateway_id", natID), zap.Error(err))
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "deleting NAT gateway %s", natID)
				}
			}
			continue
		}

		p.log.Info("waiting for NAT gateway deletion", zap.String("nat_gateway_id", natID))
		waiter := ec2.NewNatGatewayDeletedWaiter(p.ec2)
		if err := waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{NatGatewayIds: []string{natID}}, natWaitTimeout); err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "waiting for NAT gateway %s deletion", natID)
			}
			continue
		}

		for _, allocationID := range allocationIDs {
			if _, err := p.ec2.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{
				AllocationId: aws.String(allocationID),
			}); err != nil && !isNotFound(err) {
				p.log.Warn("releasing elastic IP failed", zap.String("allocation_id", allocationID), zap.Error(err))
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "releasing elastic IP %s", allocationID)
				}
			}
		}
		p.log.Info("deleted NAT gateway", zap.String("nat_gateway_id", natID))
	}
	return firstErr
}

// deleteRouteTables deletes every non-main route table in the VPC. The main
// table cannot be deleted and goes away with the VPC.
func (p *Provisioner) deleteRouteTables(ctx context.Context, vpcID string) error {
	out, err := p.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return errors.Wrapf(err, "listing route tables in %s", vpcID)
	}

	var firstErr error
	for _, rt := range out.RouteTables {
		if isMainRouteTable(rt) {
			continue
		}
		rtID := aws.ToString(rt.RouteTableId)

		for _, assoc := range rt.Associations {
			if assoc.SubnetId == nil {
				continue
			}
			if _, err := p.ec2.DisassociateRouteTable(ctx, &ec2.DisassociateRouteTableInput{
				AssociationId: assoc.RouteTableAssociationId,
			}); err != nil && !isNotFound(err) {
				p.log.Warn("disassociating route table failed", zap.String("route_table_id", rtID), zap.Error(err))
			}
		}

		if _, err := p.ec2.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{
			RouteTableId: aws.String(rtID),
		}); err != nil && !isNotFound(err) {
			p.log.Warn("deleting route table failed", zap.String("route_table_id", rtID), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "deleting route table %s", rtID)
			}
			continue
		}
		p.log.Info("deleted route table", zap.String("route_table_id", rtID))
	}
	return firstErr
}

func isMainRouteTable(rt ec2types.RouteTable) bool {
	for _, assoc := range rt.Associations {
		if aws.ToBool(assoc.Main) {
			return true
		}
	}
	return false
}

// deleteInternetGateways detaches and deletes every internet gateway
// attached to the VPC.
func (p *Provisioner) deleteInternetGateways(ctx context.Context, vpcID string) error {
	out, err := p.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		Filters: []ec2types.Filter{filter("attachment.vpc-id", vpcID)},
	})
	if err != nil {
		return errors.Wrapf(err, "listing internet gateways attached to %s", vpcID)
	}

	var firstErr error
	for _, igw := range out.InternetGateways {
		igwID := aws.ToString(igw.InternetGatewayId)

		if _, err := p.ec2.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
			InternetGatewayId: aws.String(igwID),
			VpcId:             aws.String(vpcID),
		}); err != nil && !isNotFound(err) {
			p.log.Warn("detaching internet gateway failed", zap.String("igw_id", igwID), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "detaching internet gateway %s", igwID)
			}
			continue
		}

		if _, err := p.ec2.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{
			InternetGatewayId: aws.String(igwID),
		}); err != nil && !isNotFound(err) {
			p.log.Warn("deleting internet gateway failed", zap.String("igw_id", igwID), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "deleting internet gateway %s", igwID)
			}
			continue
		}
		p.log.Info("deleted internet gateway", zap.String("igw_id", igwID))
	}
	return firstErr
}

func (p *Provisioner) deleteSubnets(ctx context.Context, vpcID string) error {
	subnets, err := p.subnetsInVPC(ctx, vpcID)
	if err != nil {
		return err
	}

	var firstErr error
	for _, subnet := range subnets {
		subnetID := aws.ToString(subnet.SubnetId)
		if _, err := p.ec2.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{
			SubnetId: aws.String(subnetID),
		}); err != nil && !isNotFound(err) {
			p.log.Warn("deleting subnet failed", zap.String("subnet_id", subnetID), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "deleting subnet %s", subnetID)
			}
			continue
		}
		p.log.Info("deleted subnet", zap.String("subnet_id", subnetID))
	}
	return firstErr
}

// deleteSecurityGroups deletes every security group in the VPC except the
// default one, which AWS owns.
func (p *Provisioner) deleteSecurityGroups(ctx context.Context, vpcID string) error {
	out, err := p.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return errors.Wrapf(err, "listing security groups in %s", vpcID)
	}

	var firstErr error
	for _, sg := range out.SecurityGroups {
		if aws.ToString(sg.GroupName) == "default" {
			continue
		}
		groupID := aws.ToString(sg.GroupId)
		if _, err := p.ec2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
			GroupId: aws.String(groupID),
		}); err != nil && !isNotFound(err) {
			p.log.Warn("deleting security group failed", zap.String("security_group_id", groupID), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "deleting security group %s", groupID)
			}
			continue
		}
		p.log.Info("deleted security group", zap.String("security_group_id", groupID))
	}
	return firstErr
}
