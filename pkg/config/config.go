package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/binderdb/binder/util"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile = "file"
	BackendMmap = "mmap"

	DefaultDataCapacity = 1_000_000_000
	DefaultMaxDocuments = 1_000_000
)

// Config holds the store configuration including tunable storage options.
type Config struct {
	// Storage layout
	StoragePath            string `yaml:"storage_path" json:"storage.path"`
	DataCapacityPerSegment int64  `yaml:"data_capacity_per_segment" json:"data.capacity.per.segment"`
	MaxDocumentsPerSegment int    `yaml:"max_documents_per_segment" json:"max.documents.per.segment"`

	// I/O backend: "file" (positional read/write) or "mmap" (memory-mapped reads)
	Backend    string `yaml:"backend" json:"backend"`
	SyncWrites bool   `yaml:"sync_writes" json:"sync.writes"`

	// Observability
	LogLevel       util.LogLevel `yaml:"log_level" json:"log_level"`
	EnableExporter bool          `yaml:"enable_exporter" json:"enable.exporter"`
	ExporterPort   int           `yaml:"exporter_port" json:"exporter.port"`
}

// LoadConfig builds a Config from command line flags and an optional YAML/JSON
// config file (-config flag or CONFIG_PATH env). Explicit flags win over file
// values. Returns the remaining non-flag arguments untouched.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{SyncWrites: true}

	fs := flag.NewFlagSet("binder", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to YAML/JSON config file")
	fs.String("storage-path", "binder-data", "Storage directory for segment and index files")
	fs.Int64("segment-capacity", DefaultDataCapacity, "Data capacity per segment in bytes")
	fs.Int("max-documents", DefaultMaxDocuments, "Maximum documents per segment")
	fs.String("backend", BackendFile, "I/O backend (file, mmap)")
	fs.Bool("sync-writes", true, "Fsync after every store and index append")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Bool("exporter", false, "Enable Prometheus exporter")
	fs.Int("exporter-port", 9100, "Exporter port")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" && *configPath == "" {
		*configPath = envPath
	}

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, nil, err
		}

		if strings.HasSuffix(*configPath, ".json") {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, nil, fmt.Errorf("parse %s: %w", *configPath, err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, nil, fmt.Errorf("parse %s: %w", *configPath, err)
			}
		}
	}

	applyFlags(cfg, fs)

	cfg.Normalize()
	util.SetLevel(cfg.LogLevel)

	return cfg, fs.Args(), nil
}

// applyFlags overrides file-provided values with flags the user set explicitly.
// Defaults for untouched flags are handled by Normalize instead, so a config
// file value is not clobbered by a flag default.
func applyFlags(cfg *Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		val := f.Value.String()
		switch f.Name {
		case "storage-path":
			cfg.StoragePath = val
		case "segment-capacity":
			cfg.DataCapacityPerSegment = util.ParseInt64(val, DefaultDataCapacity)
		case "max-documents":
			cfg.MaxDocumentsPerSegment = util.ParseInt(val, DefaultMaxDocuments)
		case "backend":
			cfg.Backend = val
		case "sync-writes":
			cfg.SyncWrites = util.ParseBool(val, true)
		case "log-level":
			if lvl, ok := util.ParseLevel(val); ok {
				cfg.LogLevel = lvl
			}
		case "exporter":
			cfg.EnableExporter = util.ParseBool(val, false)
		case "exporter-port":
			cfg.ExporterPort = util.ParseInt(val, 9100)
		}
	})
}

// Normalize applies defaults and rejects out-of-range values in place.
func (cfg *Config) Normalize() {
	if strings.TrimSpace(cfg.StoragePath) == "" {
		cfg.StoragePath = "binder-data"
	}
	if cfg.DataCapacityPerSegment <= 0 {
		cfg.DataCapacityPerSegment = DefaultDataCapacity
	}
	if cfg.MaxDocumentsPerSegment <= 0 {
		cfg.MaxDocumentsPerSegment = DefaultMaxDocuments
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendFile, BackendMmap:
	case "":
		cfg.Backend = BackendFile
	default:
		util.Warn("Invalid backend '%s', defaulting to '%s'", cfg.Backend, BackendFile)
		cfg.Backend = BackendFile
	}

	if cfg.ExporterPort <= 0 {
		cfg.ExporterPort = 9100
	}
}
