package vpcnet

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// CreateSecurityGroup creates the "{project}-sg" group with a single ingress
// rule allowing PostgreSQL (tcp/5432) from inside the VPC. Re-running
// against an existing group reuses it, and an already-present rule is not an
// error, so provisioning stays idempotent.
func (p *Provisioner) CreateSecurityGroup(ctx context.Context, vpcID, project string) (string, error) {
	groupName := project + "-sg"

	var groupID string
	out, err := p.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(groupName),
		Description: aws.String("PostgreSQL access for " + project),
		VpcId:       aws.String(vpcID),
	})
	switch {
	case err == nil:
		groupID = aws.ToString(out.GroupId)
		if err := p.tagResource(ctx, groupID, ownedTags(groupName, project)); err != nil {
			return "", err
		}
	case isDuplicate(err):
		existing, err := p.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			Filters: []ec2types.Filter{
				vpcFilter(vpcID),
				filter("group-name", groupName),
			},
		})
		if err != nil {
			return "", errors.Wrapf(err, "looking up existing security group %s", groupName)
		}
		if len(existing.SecurityGroups) != 1 {
			return "", errors.Newf("expected exactly one security group named %s, got %d",
				groupName, len(existing.SecurityGroups))
		}
		groupID = aws.ToString(existing.SecurityGroups[0].GroupId)
	default:
		return "", errors.Wrapf(err, "creating security group %s", groupName)
	}

	_, err = p.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int32(postgresPort),
			ToPort:     aws.Int32(postgresPort),
			IpRanges:   []ec2types.IpRange{{CidrIp: aws.String(vpcCIDR)}},
		}},
	})
	if err != nil && !isDuplicate(err) {
		return "", errors.Wrapf(err, "authorizing ingress on %s", groupID)
	}

	p.log.Info("created security group",
		zap.String("security_group_id", groupID),
		zap.String("group_name", groupName),
	)
	return groupID, nil
}
