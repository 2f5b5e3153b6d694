// Package dbcreds resolves the database master credentials, either from the
// process environment or from an AWS Secrets Manager secret.
package dbcreds

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// SecretsAPI is the slice of Secrets Manager this package uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Credentials is a username/password pair for the database.
type Credentials struct {
	Username string `env:"DB_USERNAME" envDefault:"dbuser" json:"username"`
	Password string `env:"DB_PASSWORD,required" json:"password"`
}

// FromEnv reads credentials from DB_USERNAME / DB_PASSWORD.
func FromEnv() (Credentials, error) {
	var c Credentials
	if err := env.Parse(&c); err != nil {
		return c, errors.Wrap(err, "reading database credentials from environment")
	}
	return c, nil
}

// FromSecretsManager fetches a JSON secret of the form
// {"username": ..., "password": ...} from Secrets Manager.
func FromSecretsManager(ctx context.Context, client SecretsAPI, secretName string) (Credentials, error) {
	var c Credentials

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return c, errors.Wrapf(err, "fetching secret %s", secretName)
	}

	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &c); err != nil {
		return c, errors.Wrapf(err, "parsing secret %s", secretName)
	}
	if c.Username == "" || c.Password == "" {
		return c, errors.Newf("secret %s is missing username or password", secretName)
	}
	return c, nil
}

// Resolve picks Secrets Manager when secretName is set and the environment
// otherwise.
func Resolve(ctx context.Context, client SecretsAPI, secretName string) (Credentials, error) {
	if secretName != "" {
		return FromSecretsManager(ctx, client, secretName)
	}
	return FromEnv()
}
