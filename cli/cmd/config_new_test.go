package cmd

import (
	"testing"

	"github.com/francois-poidevin/sondetracker/config"
	defaults "github.com/mcuadros/go-defaults"
	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsEnvVariables(t *testing.T) {
	c := &config.Configuration{}
	defaults.SetDefaults(c)

	m := asEnvVariables(c, envPrefix, true)
	assert.Equal(t, "info", m["ST_LOG_LEVEL"])
	assert.Equal(t, ".", m["ST_SONDETRACKER_SOURCE"])
	assert.Equal(t, "1", m["ST_SONDETRACKER_REFRESH"])
	assert.Equal(t, "false", m["ST_SONDETRACKER_VERIFYCONTENT"])
	assert.Equal(t, "STDOUT", m["ST_SONDETRACKER_SINKERTYPE"])
	assert.Equal(t, "sondes.csv", m["ST_SONDETRACKER_FILE_OUTPUT"])
	assert.Equal(t, "sondes", m["ST_SONDETRACKER_DB_DBNAME"])
	assert.Equal(t, ":8080", m["ST_SONDETRACKER_HTTP_ADDR"])

	unprefixed := asEnvVariables(c, "", false)
	assert.Contains(t, unprefixed, "SONDETRACKER_DB_HOST")
	assert.Len(t, unprefixed, len(m))
}

func TestDefaultConfigurationAsToml(t *testing.T) {
	c := config.Configuration{}
	defaults.SetDefaults(&c)

	btes, err := toml.Marshal(c)
	require.NoError(t, err)

	back := config.Configuration{}
	require.NoError(t, toml.Unmarshal(btes, &back))
	assert.Equal(t, c, back)
}
