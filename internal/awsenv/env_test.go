package awsenv_test

import (
	"os"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/DaveStutler/serverless-e-commerce/internal/awsenv"
)

// clearEnv guarantees a variable is absent for the duration of the test,
// restoring whatever the host had afterwards.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseEnvironmentDefaults(t *testing.T) {
	clearEnv(t, "ECOM_PROJECT", "ECOM_DB_IDENTIFIER", "ECOM_DB_INSTANCE_CLASS",
		"ECOM_DB_ENGINE_VERSION", "ECOM_DB_ALLOCATED_STORAGE",
		"DB_USERNAME", "DB_SECRET_NAME", "LOG_LEVEL")
	t.Setenv("DB_PASSWORD", "hunter2")

	env, err := awsenv.ParseEnvironment()
	if err != nil {
		t.Fatalf("ParseEnvironment: %v", err)
	}

	if env.Project != "ecommerce-app" {
		t.Errorf("Project = %s, want ecommerce-app", env.Project)
	}
	if env.DBIdentifier != "mypostgresdb" {
		t.Errorf("DBIdentifier = %s, want mypostgresdb", env.DBIdentifier)
	}
	if env.DBInstanceClass != "db.t3.micro" {
		t.Errorf("DBInstanceClass = %s, want db.t3.micro", env.DBInstanceClass)
	}
	if env.DBEngineVersion != "14.18" {
		t.Errorf("DBEngineVersion = %s, want 14.18", env.DBEngineVersion)
	}
	if env.AllocatedStorage != 20 {
		t.Errorf("AllocatedStorage = %d, want 20", env.AllocatedStorage)
	}
	if env.DBUsername != "dbuser" {
		t.Errorf("DBUsername = %s, want dbuser", env.DBUsername)
	}
	if env.LogLevel != zapcore.InfoLevel {
		t.Errorf("LogLevel = %v, want info", env.LogLevel)
	}
}

func TestParseEnvironmentDerivedNames(t *testing.T) {
	clearEnv(t, "ECOM_DB_IDENTIFIER", "DB_SECRET_NAME")
	t.Setenv("ECOM_PROJECT", "shop")
	t.Setenv("DB_PASSWORD", "hunter2")

	env, err := awsenv.ParseEnvironment()
	if err != nil {
		t.Fatalf("ParseEnvironment: %v", err)
	}
	if got := env.SecurityGroupName(); got != "shop-sg" {
		t.Errorf("SecurityGroupName = %s, want shop-sg", got)
	}
	if got := env.SubnetGroupName(); got != "shop-subnet-group" {
		t.Errorf("SubnetGroupName = %s, want shop-subnet-group", got)
	}
}

func TestParseEnvironmentRequiresPasswordOrSecret(t *testing.T) {
	clearEnv(t, "ECOM_PROJECT", "DB_PASSWORD", "DB_SECRET_NAME")

	if _, err := awsenv.ParseEnvironment(); err == nil {
		t.Fatal("expected error without DB_PASSWORD or DB_SECRET_NAME")
	}
}

func TestParseEnvironmentSecretInsteadOfPassword(t *testing.T) {
	clearEnv(t, "ECOM_PROJECT", "DB_PASSWORD")
	t.Setenv("DB_SECRET_NAME", "ecom/db")

	env, err := awsenv.ParseEnvironment()
	if err != nil {
		t.Fatalf("ParseEnvironment: %v", err)
	}
	if env.DBSecretName != "ecom/db" {
		t.Errorf("DBSecretName = %s, want ecom/db", env.DBSecretName)
	}
}

func TestParseEnvironmentLogLevel(t *testing.T) {
	clearEnv(t, "ECOM_PROJECT", "DB_SECRET_NAME")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("LOG_LEVEL", "debug")

	env, err := awsenv.ParseEnvironment()
	if err != nil {
		t.Fatalf("ParseEnvironment: %v", err)
	}
	if env.LogLevel != zapcore.DebugLevel {
		t.Errorf("LogLevel = %v, want debug", env.LogLevel)
	}
}
