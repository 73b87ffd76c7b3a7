// Package config provides typed accessors over Viper for the marclink CLI.
// Values resolve from flags, config file, and environment, in that order.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentstation/marclink/pkg/events"
	"github.com/agentstation/marclink/pkg/suggest"
	"github.com/agentstation/marclink/pkg/transport"
)

// Configuration keys.
const (
	KeyTenant          = "tenant"
	KeyRulesFile       = "rules_file"
	KeyTopicPrefix     = "topic_prefix"
	KeyPartitionSize   = "partition_size"
	KeyRetryAttempts   = "retry_attempts"
	KeySearchParameter = "search_parameter"
	KeyLogFormat       = "log_format"
)

// Init wires Viper's environment binding: every key is also readable from a
// MARCLINK_-prefixed environment variable.
func Init() {
	viper.SetEnvPrefix("MARCLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyTopicPrefix, transport.DefaultTopicPrefix)
	viper.SetDefault(KeyPartitionSize, events.DefaultPartitionSize)
	viper.SetDefault(KeyRetryAttempts, transport.DefaultRetryAttempts)
	viper.SetDefault(KeySearchParameter, string(suggest.SearchByNaturalID))
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv("MARCLINK_" + strings.ToUpper(key))
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// Tenant returns the configured tenant identifier.
func Tenant() string {
	return GetString(KeyTenant)
}

// RulesFile returns the configured rule table file path.
func RulesFile() string {
	return GetString(KeyRulesFile)
}

// TopicPrefix returns the configured outbound topic prefix.
func TopicPrefix() string {
	return GetString(KeyTopicPrefix)
}

// PartitionSize returns the configured batch partition size.
func PartitionSize() int {
	return viper.GetInt(KeyPartitionSize)
}

// RetryAttempts returns the configured publish retry ceiling.
func RetryAttempts() int {
	return viper.GetInt(KeyRetryAttempts)
}

// SearchParameter returns the configured suggestion search parameter.
func SearchParameter() suggest.SearchParameter {
	return suggest.SearchParameter(GetString(KeySearchParameter))
}

// LogFormat returns the configured log output format ("json" or empty for
// the terminal-aware default).
func LogFormat() string {
	return GetString(KeyLogFormat)
}
