package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestMustInit_DefaultsAndEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
	t.Setenv("APPUNI_SERVER_HTTP_PORT", "9999")
	t.Setenv("APPUNI_ORDERS_STRICT_TRANSITIONS", "true")

	assert.NotPanics(t, MustInit)

	assert.Equal(t, "9999", viper.GetString("server.http.port"))
	assert.True(t, viper.GetBool("orders.strict_transitions"))
	assert.Equal(t, "30.00", viper.GetString("orders.delivery_fee"))
	assert.Equal(t, "memory", viper.GetString("feed.driver"))
	assert.Equal(t, []string{"*"}, viper.GetStringSlice("server.http.cors.allowed_origins"))
}
