package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigShipsBootableJWTSecret(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	// A fresh checkout must boot; the auth middleware refuses an empty key.
	assert.NotEmpty(t, cfg.JWT.SecretKey)
	assert.Equal(t, "pathavana", cfg.JWT.Issuer)
	assert.Equal(t, "pathavana-web", cfg.JWT.Audience)
}

func TestInitConfigEnvOverridesJWTSecret(t *testing.T) {
	t.Setenv("PATHAVANA_JWT_SECRET_KEY", "from-environment")

	cfg, err := InitConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-environment", cfg.JWT.SecretKey)
}
