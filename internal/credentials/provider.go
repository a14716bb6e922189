// Package credentials resolves AWS credentials and region through the
// standard AWS config chain (shared config, environment, SSO, IMDS).
package credentials

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	samlaunch "github.com/lex00/samlaunch-go"
)

// Provider resolves a profile reference through the AWS config chain.
type Provider struct {
	// VerifyIdentity additionally calls sts:GetCallerIdentity so bad
	// credentials fail at resolution time instead of inside the launcher.
	VerifyIdentity bool
}

// Resolve implements samlaunch.CredentialsProvider.
func (p *Provider) Resolve(ctx context.Context, profile, region string) (samlaunch.Credentials, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return samlaunch.Credentials{}, fmt.Errorf("loading aws config: %w", err)
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return samlaunch.Credentials{}, fmt.Errorf("retrieving credentials: %w", err)
	}

	if p.VerifyIdentity {
		client := sts.NewFromConfig(cfg)
		identity, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return samlaunch.Credentials{}, fmt.Errorf("verifying caller identity: %w", err)
		}
		slog.Debug("resolved caller identity", "account", aws.ToString(identity.Account))
	}

	return samlaunch.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Source:          creds.Source,
		Region:          cfg.Region,
	}, nil
}

// Static returns fixed credentials; dry-run validation uses it so resolution
// can be exercised without touching the AWS config chain.
type Static struct {
	Creds samlaunch.Credentials
}

// Resolve implements samlaunch.CredentialsProvider.
func (s Static) Resolve(_ context.Context, _, region string) (samlaunch.Credentials, error) {
	creds := s.Creds
	if creds.Region == "" {
		creds.Region = region
	}
	return creds, nil
}
