// Package awsenv loads the tool's environment configuration and builds the
// AWS SDK client set used by the provisioning packages.
package awsenv

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

// Environment holds every knob the provisioning commands read from the
// process environment. Defaults mirror the development setup this tool
// targets; anything security-sensitive has no default.
type Environment struct {
	// Region overrides the AWS SDK's resolved region when set.
	Region string `env:"AWS_REGION"`

	// Project names the infrastructure set. It becomes the Project tag on
	// every created resource and prefixes derived names (security group,
	// subnet group).
	Project string `env:"ECOM_PROJECT" envDefault:"ecommerce-app" validate:"required"`

	// DBIdentifier is the RDS instance identifier.
	DBIdentifier string `env:"ECOM_DB_IDENTIFIER" envDefault:"mypostgresdb" validate:"required"`

	DBInstanceClass  string `env:"ECOM_DB_INSTANCE_CLASS" envDefault:"db.t3.micro" validate:"required"`
	DBEngineVersion  string `env:"ECOM_DB_ENGINE_VERSION" envDefault:"14.18" validate:"required"`
	AllocatedStorage int32  `env:"ECOM_DB_ALLOCATED_STORAGE" envDefault:"20" validate:"gte=20"`

	// DBUsername and DBPassword are the master credentials. When
	// DBSecretName is set the password is fetched from Secrets Manager
	// instead and DBPassword may be empty.
	DBUsername   string `env:"DB_USERNAME" envDefault:"dbuser" validate:"required"`
	DBPassword   string `env:"DB_PASSWORD" validate:"required_without=DBSecretName"`
	DBSecretName string `env:"DB_SECRET_NAME"`

	LogLevel zapcore.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// SecurityGroupName returns the name of the RDS security group for this project.
func (e Environment) SecurityGroupName() string {
	return e.Project + "-sg"
}

// SubnetGroupName returns the name of the DB subnet group for this project.
func (e Environment) SubnetGroupName() string {
	return e.Project + "-subnet-group"
}

// ParseEnvironment reads and validates the environment configuration.
func ParseEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "parsing environment")
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(e); err != nil {
		return e, errors.Wrap(err, "validating environment")
	}
	return e, nil
}
