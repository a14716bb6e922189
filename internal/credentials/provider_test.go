package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	samlaunch "github.com/lex00/samlaunch-go"
)

func TestStatic_Resolve(t *testing.T) {
	s := Static{Creds: samlaunch.Credentials{
		AccessKeyID: "AKIATEST",
		Region:      "eu-central-1",
	}}

	creds, err := s.Resolve(context.Background(), "ignored", "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "AKIATEST", creds.AccessKeyID)
	// The configured region wins over the requested one.
	assert.Equal(t, "eu-central-1", creds.Region)
}

func TestStatic_Resolve_RegionFallback(t *testing.T) {
	creds, err := Static{}.Resolve(context.Background(), "", "ap-southeast-2")
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", creds.Region)
}
