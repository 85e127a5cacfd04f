package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Simulator families.
const (
	ProviderUDP    = "udp"
	ProviderFalcon = "falcon"
	ProviderMock   = "mock"
)

// Config holds the application configuration.
type Config struct {
	Sim      SimConfig      `yaml:"sim"`
	UDP      UDPConfig      `yaml:"udp"`
	Falcon   FalconConfig   `yaml:"falcon"`
	Ticker   TickerConfig   `yaml:"ticker"`
	Switch   SwitchConfig   `yaml:"switch"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Compiler CompilerConfig `yaml:"compiler"`
	Bridge   BridgeConfig   `yaml:"bridge"`
}

// SimConfig selects the simulator connection and the aircraft interface.
type SimConfig struct {
	Provider    string `yaml:"provider"`    // "udp", "falcon", "mock"
	Aircraft    string `yaml:"aircraft"`    // Interface name, e.g. "AH-64D"
	Definitions string `yaml:"definitions"` // Optional YAML file with extra function definitions
}

// UDPConfig holds settings for the DCS export link.
type UDPConfig struct {
	Listen    string   `yaml:"listen"`
	Remote    string   `yaml:"remote"` // Empty: reply to the last sender
	MaxPacket int      `yaml:"max_packet"`
	Queue     int      `yaml:"queue"`   // Packets buffered between ticks
	Timeout   Duration `yaml:"timeout"` // Silence after which the link counts as down
}

// FalconConfig holds settings for the shared-memory link.
type FalconConfig struct {
	Area      string   `yaml:"area"`
	Reconnect Duration `yaml:"reconnect"`
}

// TickerConfig holds ticker settings.
type TickerConfig struct {
	SyncLoop Duration `yaml:"sync_loop"`
}

// SwitchConfig holds switch matching settings.
type SwitchConfig struct {
	// Tolerance enables nearest-position matching of numeric switch values.
	// Zero requires an exact match.
	Tolerance float64 `yaml:"tolerance"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server  LogSettings `yaml:"server"`
	Traffic LogSettings `yaml:"traffic"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path      string   `yaml:"path"`
	Retention Duration `yaml:"retention"` // Age after which compile runs are pruned
}

// CompilerConfig holds defaults for the clickable data compiler.
type CompilerConfig struct {
	Source     string `yaml:"source"`
	Output     string `yaml:"output"`
	Package    string `yaml:"package"`
	Interface  string `yaml:"interface"`
	Qualifier  string `yaml:"qualifier"`
	ImportPath string `yaml:"import_path"`
}

// BridgeConfig holds settings for the cockpit front-end bridge.
type BridgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sim: SimConfig{
			Provider: ProviderUDP,
			Aircraft: "AH-64D",
		},
		UDP: UDPConfig{
			Listen:    "127.0.0.1:9089",
			MaxPacket: 1400,
			Queue:     256,
			Timeout:   Duration(3 * time.Second),
		},
		Falcon: FalconConfig{
			Area:      "FalconSharedMemoryArea",
			Reconnect: Duration(5 * time.Second),
		},
		Ticker: TickerConfig{
			SyncLoop: Duration(50 * time.Millisecond),
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/simlink.log",
				Level: "INFO",
			},
			Traffic: LogSettings{
				Path:  "./logs/traffic.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path:      "./data/simlink.db",
			Retention: Duration(30 * Day),
		},
		Compiler: CompilerConfig{
			Package: "generated",
		},
		Bridge: BridgeConfig{
			Enabled: true,
			Address: "localhost:1921",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Expansions and env fallbacks; never saved back to disk.
	for _, p := range []*string{&cfg.DB.Path, &cfg.Log.Server.Path, &cfg.Log.Traffic.Path, &cfg.Sim.Definitions} {
		*p = expandPath(*p)
	}
	applyEnv(&cfg.UDP.Remote, "SIMLINK_REMOTE_ADDR")
	applyEnv(&cfg.UDP.Listen, "SIMLINK_LISTEN_ADDR")
	applyEnv(&cfg.Falcon.Area, "SIMLINK_FALCON_AREA")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var windowsVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// expandPath expands $VAR, ${VAR} and %VAR% references.
func expandPath(p string) string {
	p = windowsVar.ReplaceAllStringFunc(p, func(m string) string {
		return os.Getenv(strings.Trim(m, "%"))
	})
	return os.ExpandEnv(p)
}

func applyEnv(field *string, key string) {
	if *field != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Sim.Provider {
	case ProviderUDP, ProviderFalcon, ProviderMock:
	default:
		return fmt.Errorf("invalid sim.provider %q: must be udp, falcon or mock", c.Sim.Provider)
	}
	if c.Switch.Tolerance < 0 {
		return fmt.Errorf("invalid switch.tolerance %v: must not be negative", c.Switch.Tolerance)
	}
	if c.UDP.MaxPacket < 0 || c.UDP.Queue < 0 {
		return fmt.Errorf("invalid udp settings: max_packet and queue must not be negative")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SimLink Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments above enum and tuning fields.
	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: udp, falcon, mock\n${1}provider:"))

	reTolerance := regexp.MustCompile(`(?m)^(\s+)tolerance:`)
	data = reTolerance.ReplaceAll(data, []byte("${1}# 0 = exact match; e.g. 0.01 accepts 0.999998 for 1.0\n${1}tolerance:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
