package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 环境变量覆盖
const (
	EnvPort        = "FINSIGHT_PORT"
	EnvDataDir     = "FINSIGHT_DATA_DIR"
	EnvLexiconPath = "FINSIGHT_LEXICON_PATH"
	EnvCurrency    = "FINSIGHT_CURRENCY"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Classifier ClassifierConfig `toml:"classifier"`
	Display    DisplayConfig    `toml:"display"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir     string `toml:"data_dir"`
	MaxUploadMB int    `toml:"max_upload_mb"`
	SampleRows  int    `toml:"sample_rows"`
}

// ClassifierConfig 布局识别配置
type ClassifierConfig struct {
	LexiconPath string `toml:"lexicon_path"` // 额外同义词 YAML，为空只用内置词库
}

// DisplayConfig 展示配置
type DisplayConfig struct {
	Currency string `toml:"currency"`
	Locale   string `toml:"locale"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:     "data",
			MaxUploadMB: 20,
			SampleRows:  20,
		},
		Display: DisplayConfig{
			Currency: "EUR",
			Locale:   "es",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	dir, err := GetExeDir()
	if err != nil {
		return "."
	}
	return dir
}

// LoadConfigWithInfo 加载可执行文件同目录下的 .env 与 config.toml
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFromDir(baseDir())
}

// LoadFromDir 从指定目录加载配置：.env → config.toml → 环境变量覆盖
func LoadFromDir(dir string) (*AppConfig, LoadConfigInfo, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, LoadConfigInfo{}, fmt.Errorf("load .env: %w", err)
	}

	configPath := filepath.Join(dir, "config.toml")
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s: %q", EnvPort, v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv(EnvLexiconPath); v != "" {
		config.Classifier.LexiconPath = v
	}
	if v := os.Getenv(EnvCurrency); v != "" {
		config.Display.Currency = v
	}
	return nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到可执行文件同目录的 config.toml
func SaveConfig(config *AppConfig) error {
	return SaveToDir(config, baseDir())
}

// SaveToDir 保存配置到指定目录
func SaveToDir(config *AppConfig, dir string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.toml"), data, 0644)
}

// ResolvePath 相对路径按可执行文件目录解析
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir(), path)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolvePath(config.Data.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DBPath SQLite 数据库文件路径
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "finsight.db")
}

// MaxUploadBytes 上传大小上限（字节）
func (c *AppConfig) MaxUploadBytes() int64 {
	mb := c.Data.MaxUploadMB
	if mb <= 0 {
		mb = 20
	}
	return int64(mb) << 20
}
