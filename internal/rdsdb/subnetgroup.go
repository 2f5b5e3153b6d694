package rdsdb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// EnsureSubnetGroup returns the named DB subnet group, creating it over the
// given subnets if it does not exist yet. The subnets should be the private
// ones; the database never gets a public address.
func (m *Manager) EnsureSubnetGroup(ctx context.Context, name string, subnetIDs []string) (string, error) {
	existing, err := m.rds.DescribeDBSubnetGroups(ctx, &rds.DescribeDBSubnetGroupsInput{
		DBSubnetGroupName: aws.String(name),
	})
	if err == nil && len(existing.DBSubnetGroups) > 0 {
		m.log.Info("reusing existing DB subnet group", zap.String("subnet_group", name))
		return aws.ToString(existing.DBSubnetGroups[0].DBSubnetGroupName), nil
	}
	if err != nil && !isSubnetGroupNotFound(err) {
		return "", errors.Wrapf(err, "describing DB subnet group %s", name)
	}

	out, err := m.rds.CreateDBSubnetGroup(ctx, &rds.CreateDBSubnetGroupInput{
		DBSubnetGroupName:        aws.String(name),
		DBSubnetGroupDescription: aws.String("Subnet group for " + name),
		SubnetIds:                subnetIDs,
	})
	if err != nil {
		return "", errors.Wrapf(err, "creating DB subnet group %s", name)
	}

	_, err = m.rds.AddTagsToResource(ctx, &rds.AddTagsToResourceInput{
		ResourceName: out.DBSubnetGroup.DBSubnetGroupArn,
		Tags: []rdstypes.Tag{
			{Key: aws.String("Name"), Value: aws.String(name)},
			{Key: aws.String("CreatedBy"), Value: aws.String("ecom-provisioner")},
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "tagging DB subnet group %s", name)
	}

	m.log.Info("created DB subnet group",
		zap.String("subnet_group", name),
		zap.Strings("subnet_ids", subnetIDs),
	)
	return aws.ToString(out.DBSubnetGroup.DBSubnetGroupName), nil
}

// DeleteSubnetGroup removes the named subnet group. A missing group is not
// an error, so teardown can always run it.
func (m *Manager) DeleteSubnetGroup(ctx context.Context, name string) error {
	_, err := m.rds.DeleteDBSubnetGroup(ctx, &rds.DeleteDBSubnetGroupInput{
		DBSubnetGroupName: aws.String(name),
	})
	if err != nil {
		if isSubnetGroupNotFound(err) {
			m.log.Info("DB subnet group already gone", zap.String("subnet_group", name))
			return nil
		}
		return errors.Wrapf(err, "deleting DB subnet group %s", name)
	}
	m.log.Info("deleted DB subnet group", zap.String("subnet_group", name))
	return nil
}

func isSubnetGroupNotFound(err error) bool {
	var notFound *rdstypes.DBSubnetGroupNotFoundFault
	return errors.As(err, &notFound)
}
