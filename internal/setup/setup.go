// Package setup orchestrates the end to end provisioning flow: network,
// database instance, schema, and sample data, plus the reverse teardown.
package setup

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
	"github.com/DaveStutler/serverless-e-commerce/internal/dbcreds"
	"github.com/DaveStutler/serverless-e-commerce/internal/ecomschema"
	"github.com/DaveStutler/serverless-e-commerce/internal/rdsdb"
	"github.com/DaveStutler/serverless-e-commerce/internal/vpcnet"
)

// defaultDBWait bounds how long Run polls for the instance to come up.
const defaultDBWait = 20 * time.Minute

// Reporter receives human-readable progress output.
type Reporter interface {
	Section(heading string)
	Table(columns []string, rows [][]string)
	Error(msg string)
}

// NetworkProvisioner is the slice of vpcnet.Provisioner the orchestrator uses.
type NetworkProvisioner interface {
	Provision(ctx context.Context, project string) (*vpcnet.Network, error)
	Discover(ctx context.Context, project string) (*vpcnet.Discovery, error)
	TeardownProject(ctx context.Context, project string) error
}

// DatabaseManager is the slice of rdsdb.Manager the orchestrator uses.
type DatabaseManager interface {
	EnsureSubnetGroup(ctx context.Context, name string, subnetIDs []string) (string, error)
	DeleteSubnetGroup(ctx context.Context, name string) error
	CreateInstance(ctx context.Context, params rdsdb.InstanceParams) error
	DeleteInstance(ctx context.Context, identifier string) error
	Status(ctx context.Context, identifier string) (*rdsdb.InstanceStatus, error)
	ConnectionInfo(ctx context.Context, identifier string) (*rdsdb.ConnectionInfo, error)
	WaitForAvailable(ctx context.Context, identifier string, maxWait time.Duration) error
}

// Connector opens a SQL connection to an available instance.
type Connector func(ctx context.Context, info rdsdb.ConnectionInfo, creds dbcreds.Credentials) (*sql.DB, error)

// Orchestrator runs the full setup and teardown flows.
type Orchestrator struct {
	env     awsenv.Environment
	net     NetworkProvisioner
	db      DatabaseManager
	secrets dbcreds.SecretsAPI
	log     *zap.Logger
	report  Reporter

	connect Connector
	dbWait  time.Duration
}

func New(env awsenv.Environment, net NetworkProvisioner, db DatabaseManager, secrets dbcreds.SecretsAPI, log *zap.Logger, report Reporter) *Orchestrator {
	return &Orchestrator{
		env:     env,
		net:     net,
		db:      db,
		secrets: secrets,
		log:     log,
		report:  report,
		connect: ecomschema.Connect,
		dbWait:  defaultDBWait,
	}
}

// ProvisionNetwork creates the full network for the project, or reuses one
// already tagged for it, and ensures the DB subnet group over the private
// subnets. Re-running against an existing network is a no-op.
func (o *Orchestrator) ProvisionNetwork(ctx context.Context) (*vpcnet.Network, error) {
	network, err := o.ensureNetwork(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "provisioning network")
	}
	if _, err := o.db.EnsureSubnetGroup(ctx, o.env.SubnetGroupName(), network.PrivateSubnetIDs); err != nil {
		return nil, errors.Wrap(err, "ensuring subnet group")
	}
	return network, nil
}

// ensureNetwork reuses the network discovered by tag and provisions a fresh
// one only when none exists yet.
func (o *Orchestrator) ensureNetwork(ctx context.Context) (*vpcnet.Network, error) {
	disc, err := o.net.Discover(ctx, o.env.Project)
	switch {
	case err == nil:
		o.log.Info("reusing existing network",
			zap.String("project", o.env.Project),
			zap.String("vpc_id", disc.VPCID))
		return discoveredNetwork(disc), nil
	case errors.Is(err, vpcnet.ErrNoNetwork):
		return o.net.Provision(ctx, o.env.Project)
	default:
		return nil, err
	}
}

// discoveredNetwork maps a tag discovery back into the Network shape the
// later stages consume. Subnets not tagged private are treated as public.
func discoveredNetwork(disc *vpcnet.Discovery) *vpcnet.Network {
	network := &vpcnet.Network{
		VPCID:            disc.VPCID,
		PrivateSubnetIDs: disc.PrivateSubnetIDs,
		SecurityGroupID:  disc.SecurityGroupID,
	}
	private := make(map[string]bool, len(disc.PrivateSubnetIDs))
	for _, id := range disc.PrivateSubnetIDs {
		private[id] = true
	}
	for _, id := range disc.SubnetIDs {
		if !private[id] {
			network.PublicSubnetIDs = append(network.PublicSubnetIDs, id)
		}
	}
	return network
}

// Run provisions everything: VPC networking, subnet group, DB instance,
// schema, and sample data. Each stage is idempotent, so a failed run can be
// retried from the top.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.report.Section("Network")
	network, err := o.ProvisionNetwork(ctx)
	if err != nil {
		return err
	}
	o.report.Table(
		[]string{"VPC", "PUBLIC SUBNETS", "PRIVATE SUBNETS", "SECURITY GROUP"},
		[][]string{{
			network.VPCID,
			joinIDs(network.PublicSubnetIDs),
			joinIDs(network.PrivateSubnetIDs),
			network.SecurityGroupID,
		}},
	)

	o.report.Section("Database")
	creds, err := dbcreds.Resolve(ctx, o.secrets, o.env.DBSecretName)
	if err != nil {
		return err
	}

	if err := o.ensureInstance(ctx, creds, network.SecurityGroupID); err != nil {
		return err
	}
	if err := o.db.WaitForAvailable(ctx, o.env.DBIdentifier, o.dbWait); err != nil {
		return errors.Wrap(err, "waiting for DB instance")
	}

	o.report.Section("Schema")
	info, err := o.db.ConnectionInfo(ctx, o.env.DBIdentifier)
	if err != nil {
		return errors.Wrap(err, "resolving connection info")
	}
	db, err := o.connect(ctx, *info, creds)
	if err != nil {
		return errors.Wrap(err, "connecting to database")
	}
	defer db.Close()

	store := ecomschema.NewStore(db, o.log)
	if _, err := store.CreateTables(ctx); err != nil {
		return errors.Wrap(err, "creating tables")
	}
	if _, err := store.Seed(ctx); err != nil {
		return errors.Wrap(err, "seeding sample data")
	}

	tables, err := store.ListTables(ctx)
	if err != nil {
		return errors.Wrap(err, "listing tables")
	}
	rows := make([][]string, 0, len(tables))
	for _, name := range tables {
		rows = append(rows, []string{name})
	}
	o.report.Table([]string{"TABLE"}, rows)
	return nil
}

// ensureInstance creates the DB instance unless one with the identifier
// already exists.
func (o *Orchestrator) ensureInstance(ctx context.Context, creds dbcreds.Credentials, securityGroupID string) error {
	status, err := o.db.Status(ctx, o.env.DBIdentifier)
	switch {
	case err == nil:
		o.log.Info("DB instance already exists",
			zap.String("identifier", o.env.DBIdentifier),
			zap.String("status", status.Status))
		return nil
	case !errors.Is(err, rdsdb.ErrInstanceNotFound):
		return errors.Wrap(err, "checking DB instance")
	}

	return errors.Wrap(o.db.CreateInstance(ctx, rdsdb.InstanceParams{
		Identifier:       o.env.DBIdentifier,
		SubnetGroupName:  o.env.SubnetGroupName(),
		InstanceClass:    o.env.DBInstanceClass,
		EngineVersion:    o.env.DBEngineVersion,
		Username:         creds.Username,
		Password:         creds.Password,
		AllocatedStorage: o.env.AllocatedStorage,
		SecurityGroupIDs: []string{securityGroupID},
	}), "creating DB instance")
}

// Teardown removes everything Run created, database first so the subnet
// group and network are free to go. Missing resources are fine; a partial
// environment tears down cleanly.
func (o *Orchestrator) Teardown(ctx context.Context) error {
	o.report.Section("Database")
	if err := o.db.DeleteInstance(ctx, o.env.DBIdentifier); err != nil {
		return errors.Wrap(err, "deleting DB instance")
	}
	if err := o.db.DeleteSubnetGroup(ctx, o.env.SubnetGroupName()); err != nil {
		return errors.Wrap(err, "deleting subnet group")
	}

	o.report.Section("Network")
	if err := o.net.TeardownProject(ctx, o.env.Project); err != nil {
		return errors.Wrap(err, "tearing down network")
	}
	return nil
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ", ")
}
