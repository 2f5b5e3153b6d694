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

const subnetWaitTimeout = 2 * time.Minute

// SubnetParams describes one subnet to create.
type SubnetParams struct {
	VPCID   string
	CIDR    string
	Zone    string
	Name    string
	Project string
	Public  bool
}

// CreateSubnet creates a subnet in the given VPC and zone, waits until it is
// available, and tags it with its public/private role.
func (p *Provisioner) CreateSubnet(ctx context.Context, params SubnetParams) (string, error) {
	out, err := p.ec2.CreateSubnet(ctx, &ec2.CreateSubnetInput{
		VpcId:            aws.String(params.VPCID),
		CidrBlock:        aws.String(params.CIDR),
		AvailabilityZone: aws.String(params.Zone),
	})
	if err != nil {
		return "", errors.Wrapf(err, "creating subnet %s in %s", params.CIDR, params.Zone)
	}
	subnetID := aws.ToString(out.Subnet.SubnetId)

	waiter := ec2.NewSubnetAvailableWaiter(p.ec2)
	if err := waiter.Wait(ctx, &ec2.DescribeSubnetsInput{SubnetIds: []string{subnetID}}, subnetWaitTimeout); err != nil {
		return "", errors.Wrapf(err, "waiting for subnet %s", subnetID)
	}

	subnetType := subnetTypePrivate
	if params.Public {
		subnetType = subnetTypePublic
	}
	tags := append(ownedTags(params.Name, params.Project), tag(tagType, subnetType))
	if err := p.tagResource(ctx, subnetID, tags); err != nil {
		return "", err
	}

	p.log.Info("created subnet",
		zap.String("subnet_id", subnetID),
		zap.String("zone", params.Zone),
		zap.String("cidr", params.CIDR),
		zap.String("type", subnetType),
	)
	return subnetID, nil
}

// subnetsInVPC lists every subnet inside vpcID.
func (p *Provisioner) subnetsInVPC(ctx context.Context, vpcID string) ([]ec2types.Subnet, error) {
	out, err := p.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing subnets in %s", vpcID)
	}
	return out.Subnets, nil
}
