package config

func ApplyDefaults(cfg *Config) {
	if cfg.Start == "" {
		cfg.Start = "file_input"
	}
	if cfg.Skip == nil {
		cfg.Skip = []string{"WhiteSpace", "Comment"}
	}
	if cfg.EndMarker == "" {
		cfg.EndMarker = "ENDMARKER"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warning"
	}
}

var verbosities = map[string]int{
	"error":   -2,
	"warning": -1,
	"notice":  0,
	"info":    1,
	"debug":   2,
}

// Verbosity maps LogLevel to a commonlog verbosity.
func (c *Config) Verbosity() int {
	return verbosities[c.LogLevel]
}
