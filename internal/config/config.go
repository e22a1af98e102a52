// Package config 加载客户端配置: 默认值, YAML文件, 环境变量依次覆盖
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/utils"
)

// EnvPrefix 环境变量前缀, STOMP_LOG__DEBUG=true 覆盖 log.debug
const EnvPrefix = "STOMP_"

var ErrTemplateCreated = errors.New("the configuration file does not exist and has been created. Please try again after editing the configuration file")

type Config struct {
	Stomp   StompConfig   `koanf:"stomp" yaml:"stomp"`
	Client  ClientConfig  `koanf:"client" yaml:"client"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
	Archive ArchiveConfig `koanf:"archive" yaml:"archive"`
}

type StompConfig struct {
	AcceptVersion     string `koanf:"accept_version" yaml:"accept_version"`
	Host              string `koanf:"host" yaml:"host"`
	DestinationPrefix string `koanf:"destination_prefix" yaml:"destination_prefix"`
	DialTimeout       string `koanf:"dial_timeout" yaml:"dial_timeout"`
	MaxFrameSize      int    `koanf:"max_frame_size" yaml:"max_frame_size"`
}

type ClientConfig struct {
	Prompt           string `koanf:"prompt" yaml:"prompt"`
	HistoryFile      string `koanf:"history_file" yaml:"history_file"`
	ExitOnDisconnect bool   `koanf:"exit_on_disconnect" yaml:"exit_on_disconnect"`
	DedupeSize       int    `koanf:"dedupe_size" yaml:"dedupe_size"`
	DedupeTTL        string `koanf:"dedupe_ttl" yaml:"dedupe_ttl"`
}

type LogConfig struct {
	Dir       string `koanf:"dir" yaml:"dir"`
	Debug     bool   `koanf:"debug" yaml:"debug"`
	Console   bool   `koanf:"console" yaml:"console"`
	NoColor   bool   `koanf:"no_color" yaml:"no_color"`
	Retention string `koanf:"retention" yaml:"retention"`
}

// ArchiveConfig MongoDB事件归档
type ArchiveConfig struct {
	Enabled          bool   `koanf:"enabled" yaml:"enabled"`
	Host             string `koanf:"host" yaml:"host"`
	Port             uint64 `koanf:"port" yaml:"port"`
	Username         string `koanf:"username" yaml:"username"`
	Password         string `koanf:"password" yaml:"password"`
	Database         string `koanf:"database" yaml:"database"`
	Collection       string `koanf:"collection" yaml:"collection"`
	UseTLS           bool   `koanf:"use_tls" yaml:"use_tls"`
	ConnectTimeout   string `koanf:"connect_timeout" yaml:"connect_timeout"`
	OperationTimeout string `koanf:"operation_timeout" yaml:"operation_timeout"`
	MinPoolSize      uint64 `koanf:"min_pool_size" yaml:"min_pool_size"`
	MaxPoolSize      uint64 `koanf:"max_pool_size" yaml:"max_pool_size"`
	QueueSize        int    `koanf:"queue_size" yaml:"queue_size"`
}

var defaults = map[string]interface{}{
	"stomp.accept_version":      "1.2",
	"stomp.host":                "stomp.cs.bgu.ac.il",
	"stomp.destination_prefix":  "/",
	"stomp.dial_timeout":        "5s",
	"stomp.max_frame_size":      1048576,
	"client.prompt":             "> ",
	"client.history_file":       ".stomp_history",
	"client.exit_on_disconnect": true,
	"client.dedupe_size":        1024,
	"client.dedupe_ttl":         "10m",
	"log.dir":                   "logs",
	"log.debug":                 false,
	"log.console":               false,
	"log.no_color":              false,
	"log.retention":             "30d",
	"archive.enabled":           false,
	"archive.host":              "localhost",
	"archive.port":              27017,
	"archive.username":          "",
	"archive.password":          "",
	"archive.database":          "stomp",
	"archive.collection":        "events",
	"archive.use_tls":           false,
	"archive.connect_timeout":   "10s",
	"archive.operation_timeout": "5s",
	"archive.min_pool_size":     0,
	"archive.max_pool_size":     4,
	"archive.queue_size":        256,
}

var (
	mu          sync.Mutex
	config      Config
	initialized = false
)

// Load 按顺序合并默认值, 配置文件和环境变量, 不做缓存
func Load(path string) (Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := WriteTemplate(path); err != nil {
				return Config{}, err
			}
			return Config{}, ErrTemplateCreated
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// STOMP_ARCHIVE__HOST=db 覆盖 archive.host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ReadConfig 加载并校验配置, 成功后缓存
func ReadConfig(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	mu.Lock()
	defer mu.Unlock()
	config = cfg
	initialized = true
	return cfg, nil
}

// GetConfig 返回缓存的配置, 尚未读取时返回默认配置
func GetConfig() Config {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return config
	}
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

// Default 只包含默认值的配置
func Default() Config {
	k := koanf.New(".")
	for key, value := range defaults {
		_ = k.Set(key, value)
	}
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return cfg
}

// WriteTemplate 将默认配置写入path
func WriteTemplate(path string) error {
	data, err := yamlv3.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config template: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Stomp.AcceptVersion) == "" {
		errs = append(errs, errors.New("stomp.accept_version must not be empty"))
	}
	if strings.TrimSpace(c.Stomp.Host) == "" {
		errs = append(errs, errors.New("stomp.host must not be empty"))
	}
	if c.Stomp.DestinationPrefix != "" && c.Stomp.DestinationPrefix != "/" {
		errs = append(errs, fmt.Errorf("stomp.destination_prefix must be \"\" or \"/\", got %q", c.Stomp.DestinationPrefix))
	}
	if c.Stomp.MaxFrameSize <= 0 {
		errs = append(errs, errors.New("stomp.max_frame_size must be positive"))
	}
	if c.Client.DedupeSize <= 0 {
		errs = append(errs, errors.New("client.dedupe_size must be positive"))
	}

	durations := map[string]string{
		"stomp.dial_timeout": c.Stomp.DialTimeout,
		"client.dedupe_ttl":  c.Client.DedupeTTL,
		"log.retention":      c.Log.Retention,
	}
	if c.Archive.Enabled {
		durations["archive.connect_timeout"] = c.Archive.ConnectTimeout
		durations["archive.operation_timeout"] = c.Archive.OperationTimeout
		if strings.TrimSpace(c.Archive.Host) == "" {
			errs = append(errs, errors.New("archive.host must not be empty"))
		}
		if strings.TrimSpace(c.Archive.Database) == "" {
			errs = append(errs, errors.New("archive.database must not be empty"))
		}
		if strings.TrimSpace(c.Archive.Collection) == "" {
			errs = append(errs, errors.New("archive.collection must not be empty"))
		}
		if c.Archive.QueueSize <= 0 {
			errs = append(errs, errors.New("archive.queue_size must be positive"))
		}
		if c.Archive.MaxPoolSize < c.Archive.MinPoolSize {
			errs = append(errs, errors.New("archive.max_pool_size must not be less than archive.min_pool_size"))
		}
	}
	for _, key := range []string{"stomp.dial_timeout", "client.dedupe_ttl", "log.retention", "archive.connect_timeout", "archive.operation_timeout"} {
		value, ok := durations[key]
		if !ok {
			continue
		}
		if _, err := utils.ParseDuration(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// DialTimeoutDuration 已校验配置的便捷访问
func (c StompConfig) DialTimeoutDuration() time.Duration {
	return utils.ParseStringTime(c.DialTimeout)
}

func (c ClientConfig) DedupeTTLDuration() time.Duration {
	return utils.ParseStringTime(c.DedupeTTL)
}

func (c LogConfig) RetentionDuration() time.Duration {
	return utils.ParseStringTime(c.Retention)
}
