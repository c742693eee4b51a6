package config

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultEndpoints []byte

// Endpoints externalizes the host allow-list and the API mirror priority
// order so they can be overridden per environment without a rebuild.
type Endpoints struct {
	ShareHosts []string `yaml:"share_hosts"`
	APIBases   []string `yaml:"api_bases"`
}

type Config struct {
	ShareURL      string
	OutputDir     string
	EndpointsFile string
	WaitSeconds   int
	Timeout       int
	Interactive   bool
	Verbose       bool
	Silent        bool

	Endpoints Endpoints
}

func NewConfig() *Config {
	return &Config{
		OutputDir:   "videos",
		WaitSeconds: 15,
		Timeout:     120,
	}
}

func (c *Config) ParseFlags() {
	flag.StringVar(&c.OutputDir, "o", "videos", "Output directory for downloaded videos")
	flag.StringVar(&c.EndpointsFile, "endpoints", "", "YAML file overriding share hosts and API bases")
	flag.IntVar(&c.WaitSeconds, "wait", 15, "Seconds to wait for a verification page before resolving")
	flag.IntVar(&c.Timeout, "timeout", 120, "Browser stage timeout in seconds")
	flag.BoolVar(&c.Interactive, "interactive", false, "Open a visible browser window (lets you solve challenge pages)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Print captured cookie names and resolver details")
	flag.BoolVar(&c.Silent, "silent", false, "Silent mode (no banner)")

	flag.Parse()

	c.ShareURL = flag.Arg(0)

	// Ensure absolute path for output dir
	if absPath, err := filepath.Abs(c.OutputDir); err == nil {
		c.OutputDir = absPath
	}
}

// LoadEndpoints fills the host and API-base lists from the embedded defaults,
// then applies the override file when one was given. An override replaces a
// list only when it actually sets it.
func (c *Config) LoadEndpoints() error {
	if err := yaml.Unmarshal(defaultEndpoints, &c.Endpoints); err != nil {
		return fmt.Errorf("embedded endpoint defaults are broken: %w", err)
	}

	if c.EndpointsFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.EndpointsFile)
	if err != nil {
		return fmt.Errorf("reading endpoints file: %w", err)
	}

	var override Endpoints
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing endpoints file: %w", err)
	}

	if len(override.ShareHosts) > 0 {
		c.Endpoints.ShareHosts = override.ShareHosts
	}
	if len(override.APIBases) > 0 {
		c.Endpoints.APIBases = override.APIBases
	}
	return nil
}
