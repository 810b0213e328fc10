package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/co2-budget/internal/config"
	"github.com/iwvelando/co2-budget/pkg/constants"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for server configuration files that cannot be used.
var ErrInvalidConfig = errors.New("invalid server configuration")

// sizeUnits maps the accepted request size suffixes to their multipliers.
var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
}

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address        string `yaml:"address"`
	MaxRequestSize string `yaml:"maxRequestSize"`
	// ReportConfig is the path of the report configuration; empty keeps the
	// configuration the command was started with.
	ReportConfig     string               `yaml:"reportConfig"`
	Logging          config.LoggingConfig `yaml:"logging"`
	requestSizeBytes int64
}

func defaultConfig() *Config {
	return &Config{
		Address:          constants.DefaultServerAddress,
		MaxRequestSize:   strconv.FormatInt(constants.DefaultMaxRequestSizeBytes, 10),
		requestSizeBytes: constants.DefaultMaxRequestSizeBytes,
	}
}

// LoadConfig reads the server configuration. A missing file or an empty path
// yields the defaults. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// RequestSizeBytes returns the request body limit in bytes.
func (c *Config) RequestSizeBytes() int64 {
	return c.requestSizeBytes
}

// SetRequestSizeBytes overrides the request body limit; non-positive sizes
// are ignored.
func (c *Config) SetRequestSizeBytes(size int64) {
	if size <= 0 {
		return
	}
	c.requestSizeBytes = size
	c.MaxRequestSize = strconv.FormatInt(size, 10)
}

// resolve fills defaults and derives the byte limit from MaxRequestSize.
func (c *Config) resolve() error {
	c.Address = strings.TrimSpace(c.Address)
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("%w: address %q: %v", ErrInvalidConfig, c.Address, err)
	}

	size, err := ParseSize(c.MaxRequestSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if size <= 0 {
		size = constants.DefaultMaxRequestSizeBytes
	}
	c.requestSizeBytes = size
	c.MaxRequestSize = strconv.FormatInt(size, 10)
	return nil
}

// ParseSize converts a size such as "512", "256K" or "1MB" into bytes. An
// empty value is the default request limit.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	split := strings.IndexFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) })
	if split < 0 {
		split = len(trimmed)
	}
	digits, unit := trimmed[:split], strings.TrimSpace(trimmed[split:])
	if digits == "" {
		return 0, fmt.Errorf("invalid size %q: no number", value)
	}

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unsupported unit %q", value, unit)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("invalid size %q: overflow", value)
	}
	return n * multiplier, nil
}
