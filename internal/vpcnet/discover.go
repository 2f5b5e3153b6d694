package vpcnet

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/cockroachdb/errors"
)

// ErrNoNetwork is returned by Discover when no VPC tagged for the project
// exists.
var ErrNoNetwork = errors.New("no provisioned network found for project")

// Discovery describes an already-provisioned network found by tag.
type Discovery struct {
	VPCID            string
	SubnetIDs        []string
	PrivateSubnetIDs []string
	SecurityGroupID  string
}

// Discover finds the network previously provisioned for project, so the
// database can be created against existing infrastructure instead of
// building a new VPC.
func (p *Provisioner) Discover(ctx context.Context, project string) (*Discovery, error) {
	vpcs, err := p.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: ownedVPCFilters(project),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing VPCs for project %s", project)
	}
	if len(vpcs.Vpcs) == 0 {
		return nil, errors.Mark(
			errors.Newf("no VPC tagged for project %s", project),
			ErrNoNetwork,
		)
	}
	vpcID := aws.ToString(vpcs.Vpcs[0].VpcId)

	subnets, err := p.subnetsInVPC(ctx, vpcID)
	if err != nil {
		return nil, err
	}

	d := &Discovery{VPCID: vpcID}
	for _, subnet := range subnets {
		subnetID := aws.ToString(subnet.SubnetId)
		d.SubnetIDs = append(d.SubnetIDs, subnetID)
		if subnetTagType(subnet.Tags) == subnetTypePrivate {
			d.PrivateSubnetIDs = append(d.PrivateSubnetIDs, subnetID)
		}
	}

	groups, err := p.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			vpcFilter(vpcID),
			filter("group-name", project+"-sg"),
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "looking up security group for project %s", project)
	}
	if len(groups.SecurityGroups) > 0 {
		d.SecurityGroupID = aws.ToString(groups.SecurityGroups[0].GroupId)
	}

	return d, nil
}

func subnetTagType(tags []ec2types.Tag) string {
	for _, t := range tags {
		if aws.ToString(t.Key) == tagType {
			return aws.ToString(t.Value)
		}
	}
	return ""
}
