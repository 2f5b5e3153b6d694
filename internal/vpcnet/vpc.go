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

const vpcWaitTimeout = 2 * time.Minute

// CreateVPC creates the 10.0.0.0/16 VPC for project, waits until it is
// available, tags it, and enables DNS support and DNS hostnames (RDS
// endpoints resolve through VPC DNS).
func (p *Provisioner) CreateVPC(ctx context.Context, project string) (string, error) {
	out, err := p.ec2.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock: aws.String(vpcCIDR),
	})
	if err != nil {
		return "", errors.Wrap(err, "creating VPC")
	}
	vpcID := aws.ToString(out.Vpc.VpcId)

	waiter := ec2.NewVpcAvailableWaiter(p.ec2)
	if err := waiter.Wait(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}}, vpcWaitTimeout); err != nil {
		return "", errors.Wrapf(err, "waiting for VPC %s", vpcID)
	}

	if err := p.tagResource(ctx, vpcID, ownedTags(project+"-vpc", project)); err != nil {
		return "", err
	}

	for _, attr := range []*ec2.ModifyVpcAttributeInput{
		{VpcId: aws.String(vpcID), EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}},
		{VpcId: aws.String(vpcID), EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}},
	} {
		if _, err := p.ec2.ModifyVpcAttribute(ctx, attr); err != nil {
			return "", errors.Wrapf(err, "enabling DNS attributes on %s", vpcID)
		}
	}

	p.log.Info("created VPC", zap.String("vpc_id", vpcID), zap.String("cidr", vpcCIDR))
	return vpcID, nil
}
