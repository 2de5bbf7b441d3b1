package config

// Config 配置文件结构
type Config struct {
	PyenvCommand       string            `json:"pyenv_command" yaml:"pyenv_command" toml:"pyenv_command"`                      // pyenv 可执行文件
	PythonBuildCommand string            `json:"python_build_command" yaml:"python_build_command" toml:"python_build_command"` // python-build 可执行文件
	ClearIfLower       bool              `json:"clear_if_lower" yaml:"clear_if_lower" toml:"clear_if_lower"`                   // 默认启用 --clear-if-lower
	NoLocal            bool              `json:"no_local" yaml:"no_local" toml:"no_local"`                                     // 默认启用 --no-local
	Quiet              int               `json:"quiet" yaml:"quiet" toml:"quiet"`                                              // 默认静默级别
	MinVersions        map[string]string `json:"min_versions" yaml:"min_versions" toml:"min_versions"`                         // 工具最低版本要求
}

// Manager 配置管理器接口
type Manager interface {
	// Load 加载配置文件，文件不存在时返回默认配置
	Load() (*Config, error)

	// Save 保存配置文件（原子操作）
	Save(config *Config) error

	// CreateDefaultConfig 创建默认配置
	CreateDefaultConfig() error

	// Path 返回配置文件路径
	Path() string
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		PyenvCommand:       "pyenv",
		PythonBuildCommand: "python-build",
		MinVersions: map[string]string{
			"pyenv":            "2.0.0",
			"pyenv-virtualenv": "1.1.0",
		},
	}
}
