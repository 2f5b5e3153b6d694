package vpcnet

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/cockroachdb/errors"
)

// Tag keys shared by every resource this tool creates. Teardown and
// discovery select resources by CreatedBy and Project, so the values must
// stay stable across releases.
const (
	tagName      = "Name"
	tagCreatedBy = "CreatedBy"
	tagProject   = "Project"
	tagType      = "Type"

	// CreatedByValue marks resources as owned by this tool.
	CreatedByValue = "ecom-provisioner"

	subnetTypePublic  = "public"
	subnetTypePrivate = "private"
)

func tag(key, value string) ec2types.Tag {
	return ec2types.Tag{Key: aws.String(key), Value: aws.String(value)}
}

// ownedTags returns the standard tag set for a named resource of project.
func ownedTags(name, project string) []ec2types.Tag {
	return []ec2types.Tag{
		tag(tagName, name),
		tag(tagCreatedBy, CreatedByValue),
		tag(tagProject, project),
	}
}

func (p *Provisioner) tagResource(ctx context.Context, resourceID string, tags []ec2types.Tag) error {
	_, err := p.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{resourceID},
		Tags:      tags,
	})
	return errors.Wrapf(err, "tagging %s", resourceID)
}

func filter(name string, values ...string) ec2types.Filter {
	return ec2types.Filter{Name: aws.String(name), Values: values}
}

func vpcFilter(vpcID string) ec2types.Filter {
	return filter("vpc-id", vpcID)
}

// ownedVPCFilters select VPCs created by this tool for the given project.
func ownedVPCFilters(project string) []ec2types.Filter {
	return []ec2types.Filter{
		filter("tag:"+tagProject, project),
		filter("tag:"+tagCreatedBy, CreatedByValue),
	}
}

func describeZonesInput() *ec2.DescribeAvailabilityZonesInput {
	return &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{filter("state", "available")},
	}
}
