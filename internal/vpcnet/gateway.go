package vpcnet

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// NAT gateways routinely take a few minutes to come up.
const natWaitTimeout = 10 * time.Minute

// CreateInternetGateway creates an internet gateway, tags it, and attaches
// it to the VPC.
func (p *Provisioner) CreateInternetGateway(ctx context.Context, vpcID, project string) (string, error) {
	out, err := p.ec2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{})
	if err != nil {
		return "", errors.Wrap(err, "creating internet gateway")
	}
	igwID := aws.ToString(out.InternetGateway.InternetGatewayId)

	if err := p.tagResource(ctx, igwID, ownedTags(project+"-igw", project)); err != nil {
		return "", err
	}

	if _, err := p.ec2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(igwID),
		VpcId:             aws.String(vpcID),
	}); err != nil {
		return "", errors.Wrapf(err, "attaching internet gateway %s to %s", igwID, vpcID)
	}

	p.log.Info("created internet gateway", zap.String("igw_id", igwID), zap.String("vpc_id", vpcID))
	return igwID, nil
}

// CreateNATGateway allocates an elastic IP, creates a NAT gateway in the
// given public subnet, and waits until the gateway is available. The EIP is
// tagged before the gateway is created so an interrupted run still leaves
// the address discoverable by project tag.
func (p *Provisioner) CreateNATGateway(ctx context.Context, publicSubnetID, project string) (string, error) {
	eip, err := p.ec2.AllocateAddress(ctx, &ec2.AllocateAddressInput{
		Domain: ec2types.DomainTypeVpc,
	})
	if err != nil {
		return "", errors.Wrap(err, "allocating elastic IP")
	}
	allocationID := aws.ToString(eip.AllocationId)

	if err := p.tagResource(ctx, allocationID, ownedTags(project+"-nat-eip", project)); err != nil {
		return "", err
	}

	out, err := p.ec2.CreateNatGateway(ctx, &ec2.CreateNatGatewayInput{
		SubnetId:     aws.String(publicSubnetID),
		AllocationId: aws.String(allocationID),
	})
	if err != nil {
		return "", errors.Wrapf(err, "creating NAT gateway in %s", publicSubnetID)
	}
	natID := aws.ToString(out.NatGateway.NatGatewayId)

	p.log.Info("waiting for NAT gateway", zap.String("nat_gateway_id", natID))
	waiter := ec2.NewNatGatewayAvailableWaiter(p.ec2)
	if err := waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{NatGatewayIds: []string{natID}}, natWaitTimeout); err != nil {
		return "", errors.Wrapf(err, "waiting for NAT gateway %s", natID)
	}

	if err := p.tagResource(ctx, natID, ownedTags(project+"-nat-gateway", project)); err != nil {
		return "", err
	}

	p.log.Info("created NAT gateway",
		zap.String("nat_gateway_id", natID),
		zap.String("subnet_id", publicSubnetID),
	)
	return natID, nil
}
