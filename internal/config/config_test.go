package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		App:      config.AppConfig{Environment: "production"},
		Database: config.DatabaseConfig{ConnectionString: "postgres://localhost/vtexwatch"},
		Vtex:     config.VtexConfig{CategoryTreeDepth: 50, PageSize: 50},
		Probe:    config.ProbeConfig{DegreeOfParallelism: 8, MinBatchSize: 20, MaxBatchSize: 50},
	}
}

func TestValidate_OK(t *testing.T) {
	c := validConfig()
	assert.NoError(t, c.Validate())
}

func TestValidate_RequiresConnectionString(t *testing.T) {
	c := validConfig()
	c.Database.ConnectionString = ""
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsUnknownEnvironment(t *testing.T) {
	c := validConfig()
	c.App.Environment = "sandbox"
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsProxyCredentialsWithoutURL(t *testing.T) {
	c := validConfig()
	c.Proxy.Username = "user"
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsInvertedBatchBounds(t *testing.T) {
	c := validConfig()
	c.Probe.MinBatchSize = 50
	c.Probe.MaxBatchSize = 20
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsRetailerWithEmptyHost(t *testing.T) {
	c := validConfig()
	c.Retailers = []config.RetailerConfig{{RetailerID: 1, RetailerHost: ""}}
	assert.Error(t, c.Validate())
}

func TestRedisAddr_EmptyWhenUnconfigured(t *testing.T) {
	c := validConfig()
	assert.Equal(t, "", c.RedisAddr())
}

func TestRedisAddr_FormatsHostPort(t *testing.T) {
	c := validConfig()
	c.Redis.Host = "cache.internal"
	c.Redis.Port = 6380
	assert.Equal(t, "cache.internal:6380", c.RedisAddr())
}

func TestEnabledRetailers_FiltersDisabledAndByHost(t *testing.T) {
	c := validConfig()
	c.Retailers = []config.RetailerConfig{
		{RetailerHost: "a.example.com", Enabled: true},
		{RetailerHost: "b.example.com", Enabled: false},
		{RetailerHost: "c.example.com", Enabled: true},
	}

	all := c.EnabledRetailers("")
	assert.Len(t, all, 2)

	one := c.EnabledRetailers("c.example.com")
	assert.Len(t, one, 1)
	assert.Equal(t, "c.example.com", one[0].RetailerHost)
}
