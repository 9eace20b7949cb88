// Package config holds the disassembler and host settings shared by the
// rvdis command and its HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/rvdis/disasm"
	"github.com/sarchlab/rvdis/insts"
)

// Config holds rendering options and host settings.
type Config struct {
	// ISA selects the enabled extensions, e.g. "rv32i" or "rv32im".
	// Default: "rv32im".
	ISA string `json:"isa" yaml:"isa"`

	// Registers selects register naming: "abi" or "numeric".
	// Default: "abi".
	Registers string `json:"registers" yaml:"registers"`

	// FramePointer renders x8 as fp instead of s0.
	FramePointer bool `json:"frame_pointer" yaml:"frame_pointer"`

	// Pseudo collapses common idioms into pseudo-instructions.
	Pseudo bool `json:"pseudo" yaml:"pseudo"`

	// OffsetBase renders loads and jalr as "rd, imm(rs1)".
	OffsetBase bool `json:"offset_base" yaml:"offset_base"`

	// Color highlights mnemonics in terminal output.
	Color bool `json:"color" yaml:"color"`

	Cache  CacheConfig  `json:"cache" yaml:"cache"`
	Server ServerConfig `json:"server" yaml:"server"`
}

// CacheConfig sizes the rendered-line cache used by the server.
type CacheConfig struct {
	// NumSets must be a power of two. Default: 256.
	NumSets int `json:"num_sets" yaml:"num_sets"`
	// NumWays is the associativity. Default: 4.
	NumWays int `json:"num_ways" yaml:"num_ways"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8080".
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultConfig returns a Config that renders exactly like the package-level
// disasm.Disassemble.
func DefaultConfig() *Config {
	return &Config{
		ISA:       insts.ISADefault.String(),
		Registers: insts.RegisterStyleABI.String(),
		Cache: CacheConfig{
			NumSets: 256,
			NumWays: 4,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig loads a Config from a YAML file, or JSON when the file name
// ends in .json. Missing fields keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isJSON(path) {
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes the Config in the format implied by the file name.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every setting names something the disassembler
// supports.
func (c *Config) Validate() error {
	if _, err := insts.ParseISA(c.ISA); err != nil {
		return fmt.Errorf("isa: %w", err)
	}
	if _, err := insts.ParseRegisterStyle(c.Registers); err != nil {
		return fmt.Errorf("registers: %w", err)
	}
	if c.Cache.NumSets <= 0 || c.Cache.NumSets&(c.Cache.NumSets-1) != 0 {
		return fmt.Errorf("cache.num_sets must be a power of two > 0")
	}
	if c.Cache.NumWays <= 0 {
		return fmt.Errorf("cache.num_ways must be > 0")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// DisasmOptions translates the rendering settings into disassembler
// options. Call Validate first; unparsable values fall back to defaults.
func (c *Config) DisasmOptions() []disasm.Option {
	isa, err := insts.ParseISA(c.ISA)
	if err != nil {
		isa = insts.ISADefault
	}
	style, err := insts.ParseRegisterStyle(c.Registers)
	if err != nil {
		style = insts.RegisterStyleABI
	}

	return []disasm.Option{
		disasm.WithISA(isa),
		disasm.WithRegisterStyle(style),
		disasm.WithFramePointer(c.FramePointer),
		disasm.WithPseudo(c.Pseudo),
		disasm.WithOffsetBaseLoads(c.OffsetBase),
	}
}

// NewDisassembler builds a Disassembler from the rendering settings.
func (c *Config) NewDisassembler() *disasm.Disassembler {
	return disasm.New(c.DisasmOptions()...)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
