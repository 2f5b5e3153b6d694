// Command ecom provisions the AWS networking and PostgreSQL database for
// the e-commerce environment and manages its schema and sample data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

var version = "dev"

type App struct {
	Version kong.VersionFlag `help:"Show version."`

	Infra struct {
		Up     InfraUpCmd     `cmd:"" help:"Create the VPC, subnets, gateways, routing, and security group."`
		Down   InfraDownCmd   `cmd:"" help:"Tear down all tagged network resources."`
		Status InfraStatusCmd `cmd:"" help:"Show the provisioned network resources."`
	} `cmd:"" help:"Network commands."`

	DB struct {
		Create DBCreateCmd `cmd:"" help:"Create the PostgreSQL instance."`
		Delete DBDeleteCmd `cmd:"" help:"Delete the PostgreSQL instance and wait for it to go away."`
		Status DBStatusCmd `cmd:"" help:"Show the instance status and endpoint."`
		Wait   DBWaitCmd   `cmd:"" help:"Block until the instance is available."`
	} `cmd:"" name:"db" help:"Database instance commands."`

	Schema struct {
		Create SchemaCreateCmd `cmd:"" help:"Create the e-commerce tables and indexes."`
		Seed   SchemaSeedCmd   `cmd:"" help:"Insert the sample catalog, users, and categories."`
		Tables SchemaTablesCmd `cmd:"" help:"List the tables in the database."`
	} `cmd:"" help:"Schema commands."`

	Setup    SetupCmd    `cmd:"" help:"Provision everything: network, database, schema, and sample data."`
	Teardown TeardownCmd `cmd:"" help:"Remove everything setup created, database first."`
}

func newLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return log
}

func main() {
	env, err := awsenv.ParseEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(env.LogLevel)
	defer func() { _ = logger.Sync() }()

	cfg, err := awsenv.LoadConfig(context.Background(), env.Region)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	clients := awsenv.NewClientSet(cfg)

	var app App
	ctx := kong.Parse(&app,
		kong.Name("ecom"),
		kong.Description("E-commerce infrastructure provisioning CLI."),
		kong.Vars{"version": version},
		kong.Bind(env),
		kong.Bind(clients),
		kong.Bind(logger),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
