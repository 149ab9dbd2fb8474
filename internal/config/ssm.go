package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const ssmTimeout = 5 * time.Second

// ParameterFetcher is the subset of the SSM client used to read the API key.
type ParameterFetcher interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// newParameterFetcher builds an SSM client from the default AWS credential chain.
// Tests replace it.
var newParameterFetcher = func(ctx context.Context) (ParameterFetcher, error) {
	ctx, cancel := context.WithTimeout(ctx, ssmTimeout)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return ssm.NewFromConfig(awsCfg), nil
}

// resolveAPIKey reads the decrypted parameter named by cfg.APIKeyParam into cfg.APIKey.
func resolveAPIKey(ctx context.Context, cfg *UpstreamConfig, fetcher ParameterFetcher) error {
	ctx, cancel := context.WithTimeout(ctx, ssmTimeout)
	defer cancel()

	out, err := fetcher.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(cfg.APIKeyParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("reading parameter %s: %w", cfg.APIKeyParam, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return fmt.Errorf("parameter %s has no value", cfg.APIKeyParam)
	}

	cfg.APIKey = *out.Parameter.Value
	return nil
}
