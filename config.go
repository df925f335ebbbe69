package ssg

import "github.com/goliatone/go-ssg/internal/runtimeconfig"

var (
	ErrConfigPathRequired   = runtimeconfig.ErrConfigPathRequired
	ErrConfigRead           = runtimeconfig.ErrConfigRead
	ErrConfigDecode         = runtimeconfig.ErrConfigDecode
	ErrLoggingLevelInvalid  = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid = runtimeconfig.ErrLoggingFormatInvalid
	ErrPandocTimeoutInvalid = runtimeconfig.ErrPandocTimeoutInvalid
	ErrTheoremInvalid       = runtimeconfig.ErrTheoremInvalid
)

const (
	TextDirectionLTR = runtimeconfig.TextDirectionLTR
	TextDirectionRTL = runtimeconfig.TextDirectionRTL
)

type (
	Config        = runtimeconfig.Config
	Theorem       = runtimeconfig.Theorem
	PandocConfig  = runtimeconfig.PandocConfig
	LoggingConfig = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads and validates the site config file at path.
func LoadConfig(path string) (*Config, error) {
	return runtimeconfig.Load(path)
}
