package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS profile with its SDK configuration and
// initialised service clients. It is the unit passed from the provider
// into the engine; everything downstream works against it.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	ProfileName string

	// AccountID is the resolved AWS account ID for this profile (via STS).
	AccountID string

	// Region is the region every EC2 call in this invocation targets.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds initialised service clients scoped to Region.
	Clients *ClientSet
}

// AWSClientProvider resolves AWS credentials into a ready ProfileConfig.
// It is the sole entry point for credential and region management; all
// resolution is delegated to the SDK's shared-config chain, never
// reimplemented.
//
// Implementations must use the AWS SDK v2 only. Never shell out to the
// aws CLI.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named profile, with
	// region overriding the profile's configured region when non-empty.
	// Pass an empty profile to use the default credential chain.
	LoadProfile(ctx context.Context, profile, region string) (*ProfileConfig, error)
}
