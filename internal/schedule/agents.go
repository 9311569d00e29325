package schedule

import (
	"sort"
	"strings"
)

// DefaultAgentCodes maps shipping agent names, as printed in bulletins, to the
// planner company codes used on the berth plan.
var DefaultAgentCodes = map[string]string{
	"日本通運":       "NXT",
	"上組":         "KMG",
	"住友倉庫":       "SMS",
	"三井倉庫":       "MSW",
	"鈴江コーポレーション": "SZC",
	"宇徳":         "UTK",
	"日新":         "NSN",
	"山九":         "SNK",
	"伊勢湾海運":      "ISW",
	"名港海運":       "MKK",
}

// AgentTable resolves agent names to planner company codes.
type AgentTable struct {
	codes map[string]string
	// names sorted longest first, so the most specific contained name wins.
	names []string
}

// NewAgentTable builds a table from name→code pairs. Names are trimmed; empty
// names or codes are ignored.
func NewAgentTable(codes map[string]string) *AgentTable {
	t := &AgentTable{codes: make(map[string]string, len(codes))}
	for name, code := range codes {
		name, code = strings.TrimSpace(name), strings.TrimSpace(code)
		if name == "" || code == "" {
			continue
		}
		t.codes[name] = code
		t.names = append(t.names, name)
	}
	sort.Slice(t.names, func(i, j int) bool {
		if len(t.names[i]) != len(t.names[j]) {
			return len(t.names[i]) > len(t.names[j])
		}
		return t.names[i] < t.names[j]
	})
	return t
}

// Resolve returns the planner code for agent. An exact name match wins, then
// the longest known name contained in agent (e.g. "株式会社上組"). Unknown
// agents are returned unchanged.
func (t *AgentTable) Resolve(agent string) string {
	agent = strings.TrimSpace(agent)
	if agent == "" {
		return ""
	}
	if code, ok := t.codes[agent]; ok {
		return code
	}
	for _, name := range t.names {
		if strings.Contains(agent, name) {
			return t.codes[name]
		}
	}
	return agent
}
