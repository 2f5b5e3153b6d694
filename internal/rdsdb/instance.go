package rdsdb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ErrInstanceNotFound is returned when the RDS instance does not exist.
var ErrInstanceNotFound = errors.New("db instance not found")

// deleteWaitTimeout bounds how long DeleteInstance waits for the instance
// to disappear (the original allowed 40 polls at 30s).
const deleteWaitTimeout = 20 * time.Minute

// InstanceParams describes the PostgreSQL instance to create. Zero-cost
// development defaults (smallest class, no backups, single AZ) are supplied
// by the caller's environment config.
type InstanceParams struct {
	Identifier       string
	SubnetGroupName  string
	InstanceClass    string
	EngineVersion    string
	Username         string
	Password         string
	AllocatedStorage int32
	SecurityGroupIDs []string
}

// Endpoint is where clients connect once the instance is available.
type Endpoint struct {
	Host string
	Port int32
}

// InstanceStatus is the subset of DescribeDBInstances this tool reports.
// Endpoint is nil while the instance is still creating.
type InstanceStatus struct {
	Identifier            string
	Status                string
	Engine                string
	EngineVersion         string
	InstanceClass         string
	AllocatedStorage      int32
	MultiAZ               bool
	PubliclyAccessible    bool
	SecurityGroupIDs      []string
	AvailabilityZone      string
	BackupRetentionPeriod int32
	CreatedAt             time.Time
	Endpoint              *Endpoint
}

// ConnectionInfo carries what the schema layer needs to open a SQL
// connection. Database defaults to "postgres" when the instance was created
// without an initial database.
type ConnectionInfo struct {
	Host     string
	Port     int32
	Database string
	Status   string
}

// CreateInstance creates the PostgreSQL instance. At least one security
// group is required; an instance is never placed in the default group.
func (m *Manager) CreateInstance(ctx context.Context, params InstanceParams) error {
	if len(params.SecurityGroupIDs) == 0 {
		return errors.New("refusing to create DB instance without a security group")
	}
	for _, id := range params.SecurityGroupIDs {
		if id == "" {
			return errors.New("refusing to create DB instance with an empty security group ID")
		}
	}

	_, err := m.rds.CreateDBInstance(ctx, &rds.CreateDBInstanceInput{
		DBInstanceIdentifier: aws.String(params.Identifier),
		DBSubnetGroupName:    aws.String(params.SubnetGroupName),
		DBInstanceClass:      aws.String(params.InstanceClass),
		Engine:               aws.String("postgres"),
		EngineVersion:        aws.String(params.EngineVersion),
		MasterUsername:       aws.String(params.Username),
		MasterUserPassword:   aws.String(params.Password),
		AllocatedStorage:     aws.Int32(params.AllocatedStorage),
		VpcSecurityGroupIds:  params.SecurityGroupIDs,
		PubliclyAccessible:   aws.Bool(false),
		// 0 disables automated backups.
		BackupRetentionPeriod: aws.Int32(0),
	})
	if err != nil {
		return errors.Wrapf(err, "creating DB instance %s", params.Identifier)
	}

	m.log.Info("creating DB instance",
		zap.String("identifier", params.Identifier),
		zap.String("class", params.InstanceClass),
		zap.String("engine_version", params.EngineVersion),
	)
	return nil
}

// DeleteInstance deletes the instance without a final snapshot and waits
// until it is gone. A missing instance is not an error.
func (m *Manager) DeleteInstance(ctx context.Context, identifier string) error {
	_, err := m.rds.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier: aws.String(identifier),
		SkipFinalSnapshot:    aws.Bool(true),
	})
	if err != nil {
		if isInstanceNotFound(err) {
			m.log.Info("DB instance already gone", zap.String("identifier", identifier))
			return nil
		}
		return errors.Wrapf(err, "deleting DB instance %s", identifier)
	}

	m.log.Info("waiting for DB instance deletion", zap.String("identifier", identifier))
	waiter := rds.NewDBInstanceDeletedWaiter(m.rds, func(o *rds.DBInstanceDeletedWaiterOptions) {
		o.MinDelay = 30 * time.Second
	})
	if err := waiter.Wait(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(identifier),
	}, deleteWaitTimeout); err != nil {
		return errors.Wrapf(err, "waiting for DB instance %s deletion", identifier)
	}

	m.log.Info("deleted DB instance", zap.String("identifier", identifier))
	return nil
}

// Status returns the instance's current state.
func (m *Manager) Status(ctx context.Context, identifier string) (*InstanceStatus, error) {
	out, err := m.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(identifier),
	})
	if err != nil {
		if isInstanceNotFound(err) {
			return nil, errors.Mark(
				errors.Newf("DB instance %s not found", identifier),
				ErrInstanceNotFound,
			)
		}
		return nil, errors.Wrapf(err, "describing DB instance %s", identifier)
	}
	if len(out.DBInstances) == 0 {
		return nil, errors.Mark(
			errors.Newf("DB instance %s not found", identifier),
			ErrInstanceNotFound,
		)
	}

	db := out.DBInstances[0]
	status := &InstanceStatus{
		Identifier:            aws.ToString(db.DBInstanceIdentifier),
		Status:                aws.ToString(db.DBInstanceStatus),
		Engine:                aws.ToString(db.Engine),
		EngineVersion:         aws.ToString(db.EngineVersion),
		InstanceClass:         aws.ToString(db.DBInstanceClass),
		AllocatedStorage:      aws.ToInt32(db.AllocatedStorage),
		MultiAZ:               aws.ToBool(db.MultiAZ),
		PubliclyAccessible:    aws.ToBool(db.PubliclyAccessible),
		AvailabilityZone:      aws.ToString(db.AvailabilityZone),
		BackupRetentionPeriod: aws.ToInt32(db.BackupRetentionPeriod),
		CreatedAt:             aws.ToTime(db.InstanceCreateTime),
	}
	for _, sg := range db.VpcSecurityGroups {
		status.SecurityGroupIDs = append(status.SecurityGroupIDs, aws.ToString(sg.VpcSecurityGroupId))
	}
	if db.Endpoint != nil {
		status.Endpoint = &Endpoint{
			Host: aws.ToString(db.Endpoint.Address),
			Port: aws.ToInt32(db.Endpoint.Port),
		}
	}
	return status, nil
}

// ConnectionInfo returns the connection details for the instance. It fails
// if the endpoint is not published yet.
func (m *Manager) ConnectionInfo(ctx context.Context, identifier string) (*ConnectionInfo, error) {
	status, err := m.Status(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if status.Endpoint == nil {
		return nil, errors.Newf("DB instance %s has no endpoint yet (status %s)",
			identifier, status.Status)
	}
	return &ConnectionInfo{
		Host:     status.Endpoint.Host,
		Port:     status.Endpoint.Port,
		Database: "postgres",
		Status:   status.Status,
	}, nil
}

func isInstanceNotFound(err error) bool {
	var notFound *rdstypes.DBInstanceNotFoundFault
	return errors.As(err, &notFound)
}
