package config

import (
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/viper"
)

// AgentCode maps a shipping agent name to a planner company code.
type AgentCode struct {
	Name string `mapstructure:"name"`
	Code string `mapstructure:"code"`
}

// LoadAgentCodes merges the entries listed under "agents" in path over base.
// The file format follows its extension (yaml, yml, json, toml). An empty
// path returns a copy of base.
//
//	agents:
//	  - name: 上組
//	    code: KMG
//
// Entries are a list rather than a map because viper lower-cases map keys.
func LoadAgentCodes(path string, base map[string]string) (map[string]string, error) {
	codes := maps.Clone(base)
	if codes == nil {
		codes = make(map[string]string)
	}
	if path == "" {
		return codes, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read agent codes file: %w", err)
	}

	var entries []AgentCode
	if err := v.UnmarshalKey("agents", &entries); err != nil {
		return nil, fmt.Errorf("failed to decode agent codes: %w", err)
	}
	for i, e := range entries {
		name, code := strings.TrimSpace(e.Name), strings.TrimSpace(e.Code)
		if name == "" || code == "" {
			return nil, fmt.Errorf("agent entry %d: name and code are required", i)
		}
		codes[name] = code
	}
	return codes, nil
}
