// Package config loads wyec.conf files.
//
// Configuration files are looked up in the directory of the input file
// and all of its parents. Files closer to the input take precedence;
// list values may contain "inherit" to splice in the value of the
// parent configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type config struct {
	cfg  Config
	meta toml.MetaData
}

func mergeLists(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for _, el := range b {
		if el == "inherit" {
			out = append(out, a...)
		} else {
			out = append(out, el)
		}
	}
	return out
}

// normalizeList removes duplicates from list, keeping the first
// occurrence of each element.
func normalizeList(list []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(list))
	for _, el := range list {
		if el == "inherit" {
			// The default config doesn't use "inherit", so the merged
			// list can't contain it.
			panic(`unresolved "inherit"`)
		}
		if !seen[el] {
			seen[el] = true
			out = append(out, el)
		}
	}
	return out
}

func (cfg config) Merge(ocfg config) config {
	if ocfg.meta.IsDefined("target", "include") {
		cfg.cfg.Target.Include = ocfg.cfg.Target.Include
	}
	if ocfg.meta.IsDefined("target", "indent") {
		cfg.cfg.Target.Indent = ocfg.cfg.Target.Indent
	}
	if ocfg.meta.IsDefined("target", "integers") {
		cfg.cfg.Target.Integers = mergeLists(cfg.cfg.Target.Integers, ocfg.cfg.Target.Integers)
	}
	if ocfg.meta.IsDefined("analysis", "max_joins") {
		cfg.cfg.Analysis.MaxJoins = ocfg.cfg.Analysis.MaxJoins
	}
	if ocfg.meta.IsDefined("output", "verbose") {
		cfg.cfg.Output.Verbose = ocfg.cfg.Output.Verbose
	}
	return cfg
}

type Config struct {
	Target   TargetConfig   `toml:"target"`
	Analysis AnalysisConfig `toml:"analysis"`
	Output   OutputConfig   `toml:"output"`
}

type TargetConfig struct {
	// Include is the header included at the top of the output.
	Include string `toml:"include"`
	// Indent is the number of spaces per indentation level.
	Indent int `toml:"indent"`
	// Integers lists the C integer types available for declarations,
	// in order of preference at each width.
	Integers []string `toml:"integers"`
}

type AnalysisConfig struct {
	MaxJoins int `toml:"max_joins"`
}

type OutputConfig struct {
	Verbose bool `toml:"verbose"`
}

// Default is the configuration used when no file overrides it.
var Default = Config{
	Target: TargetConfig{
		Include: "whiley.h",
		Indent:  4,
		Integers: []string{
			"uint8_t", "int8_t",
			"uint16_t", "int16_t",
			"uint32_t", "int32_t",
			"uint64_t", "int64_t",
		},
	},
	Analysis: AnalysisConfig{
		MaxJoins: 8,
	},
}

const configName = "wyec.conf"

func parseFile(path string) (config, error) {
	f, err := os.Open(path)
	if err != nil {
		return config{}, err
	}
	defer f.Close()
	var cfg Config
	meta, err := toml.NewDecoder(f).Decode(&cfg)
	if err != nil {
		return config{}, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	return config{cfg, meta}, nil
}

func parseConfigs(dir string) ([]config, error) {
	var out []config

	for dir != "" {
		cfg, err := parseFile(filepath.Join(dir, configName))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			out = append(out, cfg)
		}
		ndir := filepath.Dir(dir)
		if ndir == dir {
			break
		}
		dir = ndir
	}
	out = append(out, config{
		cfg:  Default,
		meta: toml.MetaData{}, // meta of the base config should never be accessed
	})
	for i := 0; i < len(out)/2; i++ {
		out[i], out[len(out)-1-i] = out[len(out)-1-i], out[i]
	}
	return out, nil
}

func mergeConfigs(confs []config) Config {
	if len(confs) == 0 {
		// This shouldn't happen because we always have at least a
		// default config.
		panic("trying to merge zero configs")
	}
	conf := confs[0]
	for _, oconf := range confs[1:] {
		conf = conf.Merge(oconf)
	}
	return conf.cfg
}

func finish(conf Config) (Config, error) {
	conf.Target.Integers = normalizeList(conf.Target.Integers)
	if len(conf.Target.Integers) == 0 {
		return Config{}, fmt.Errorf("target.integers must not be empty")
	}
	if conf.Target.Indent < 1 {
		return Config{}, fmt.Errorf("target.indent must be at least 1")
	}
	if conf.Analysis.MaxJoins < 1 {
		return Config{}, fmt.Errorf("analysis.max_joins must be at least 1")
	}
	return conf, nil
}

// Load returns the configuration that applies to files in dir.
func Load(dir string) (Config, error) {
	confs, err := parseConfigs(dir)
	if err != nil {
		return Config{}, err
	}
	return finish(mergeConfigs(confs))
}

// LoadFile returns the configuration in path, merged over the default
// configuration.
func LoadFile(path string) (Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return Config{}, err
	}
	return finish(mergeConfigs([]config{{cfg: Default}, cfg}))
}
