// Command ecom-lambda exposes the schema operations as a Lambda function.
// The event names the operation and the target DB instance; credentials come
// from the environment or Secrets Manager, matching the CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

func main() {
	env, err := awsenv.ParseEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.LogLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	awsCfg, err := awsenv.LoadConfig(context.Background(), env.Region)
	if err != nil {
		logger.Fatal("loading AWS config", zap.Error(err))
	}
	clients := awsenv.NewClientSet(awsCfg)

	lambda.Start(NewHandler(clients, logger).Handle)
}
