package config

// ConfigManager layers command-line overrides onto a loaded Config.
// Priority: CLI flags > Config file > Default values.
type ConfigManager struct {
	Config *Config
	Flags  map[string]any
}

func NewConfigManager(cfg *Config) *ConfigManager {
	return &ConfigManager{
		Config: cfg,
		Flags:  make(map[string]any),
	}
}

// RegisterFlag records an override under the YAML key of the field it replaces.
func (cm *ConfigManager) RegisterFlag(key string, value any) {
	cm.Flags[key] = value
}

// MergeConfiguration applies the registered overrides in place. Zero values,
// unknown keys and values of the wrong type are ignored.
func (cm *ConfigManager) MergeConfiguration() *Config {
	if n, ok := cm.Flags["contextLines"].(int); ok && n != 0 {
		cm.Config.ContextLines = n
	}
	cm.overrideString("encoding", &cm.Config.Encoding)
	cm.overrideString("gitPath", &cm.Config.GitPath)
	cm.overrideString("logLevel", &cm.Config.LogLevel)
	return cm.Config
}

func (cm *ConfigManager) overrideString(key string, dst *string) {
	if s, ok := cm.Flags[key].(string); ok && s != "" {
		*dst = s
	}
}
