package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("with nil values", func(t *testing.T) {
		config := NewConfig(nil)
		require.NotNil(t, config)
		assert.Empty(t, config.Get("anything"))
	})

	t.Run("with values", func(t *testing.T) {
		values := map[string]string{
			"API_PORT":   "8080",
			"MYSQL_HOST": "localhost",
		}
		config := NewConfig(values)

		assert.Equal(t, "8080", config.Get("API_PORT"))
		assert.Equal(t, "localhost", config.Get("MYSQL_HOST"))

		// Verify it's a copy, not a reference
		values["API_PORT"] = "modified"
		assert.Equal(t, "8080", config.Get("API_PORT"))
	})
}

func TestNewConfigFromEnv(t *testing.T) {
	// Create a temporary .env file for testing
	envContent := "AMVERSE_TEST_KEY1=test_value1\nAMVERSE_TEST_KEY2=test_value2\n"
	tmpFile, err := os.CreateTemp("", "test_env_*.env")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(envContent)
	require.NoError(t, err)
	tmpFile.Close()

	config := NewConfigFromEnv(tmpFile.Name())

	require.NotNil(t, config)
	assert.Equal(t, "test_value1", config.Get("AMVERSE_TEST_KEY1"))
	assert.Equal(t, "test_value2", config.Get("AMVERSE_TEST_KEY2"))
}

func TestConfigGetWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"existing": "value",
		"empty":    "",
	})

	t.Run("existing key", func(t *testing.T) {
		assert.Equal(t, "value", config.GetWithDefault("existing", "default"))
	})

	t.Run("empty value falls back", func(t *testing.T) {
		assert.Equal(t, "default", config.GetWithDefault("empty", "default"))
	})

	t.Run("missing key falls back", func(t *testing.T) {
		assert.Equal(t, "default", config.GetWithDefault("missing", "default"))
	})
}

func TestConfigGetIntWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"timeout": "120",
		"garbage": "not-a-number",
	})

	tests := []struct {
		name         string
		key          string
		defaultValue int
		expected     int
	}{
		{"parseable value", "timeout", 60, 120},
		{"unparseable value", "garbage", 60, 60},
		{"missing key", "missing", 60, 60},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, config.GetIntWithDefault(test.key, test.defaultValue))
		})
	}
}

func TestConfigSet(t *testing.T) {
	config := NewConfig(nil)

	config.Set("key", "value")
	assert.Equal(t, "value", config.Get("key"))

	config.Set("key", "overridden")
	assert.Equal(t, "overridden", config.Get("key"))
}
