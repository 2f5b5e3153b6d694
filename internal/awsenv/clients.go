package awsenv

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

const configTimeout = 10 * time.Second

// ClientSet bundles the AWS service clients the tool drives. Consumers
// depend on the narrow API interfaces declared in their own packages, so
// tests can substitute fakes.
type ClientSet struct {
	EC2     *ec2.Client
	RDS     *rds.Client
	Secrets *secretsmanager.Client
}

// LoadConfig resolves the default AWS configuration, optionally pinned to
// region, and instruments every client built from it with OpenTelemetry
// spans for SDK calls.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, configTimeout)
	defer cancel()

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "loading AWS config")
	}
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return cfg, nil
}

// NewClientSet builds the service clients from a resolved configuration.
func NewClientSet(cfg aws.Config) *ClientSet {
	return &ClientSet{
		EC2:     ec2.NewFromConfig(cfg),
		RDS:     rds.NewFromConfig(cfg),
		Secrets: secretsmanager.NewFromConfig(cfg),
	}
}
