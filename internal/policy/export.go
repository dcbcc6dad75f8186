package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Export represents the exported catalog for external tools.
type Export struct {
	Version     string         `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	SHA256      string         `json:"sha256"`
	Commands    CommandsExport `json:"commands"`
	Paths       []RuleDetails  `json:"path_triggers"`
	Metadata    ExportMetadata `json:"metadata"`
}

// CommandsExport holds the command-domain rule lists in declared order.
type CommandsExport struct {
	Allow []RuleDetails `json:"allow"`
	Block []RuleDetails `json:"block"`
}

// RuleDetails represents a single rule for export.
type RuleDetails struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

// ExportMetadata summarizes the export.
type ExportMetadata struct {
	RuleCount int            `json:"rule_count"`
	Counts    map[string]int `json:"counts"`
}

func exportRules(rules []Rule) []RuleDetails {
	out := make([]RuleDetails, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleDetails{
			Pattern:  r.Pattern,
			Category: r.Category,
			Source:   r.Source,
		})
	}
	return out
}

// ExportCatalog exports the catalog in a structured format. Rule order is
// preserved: ordering is a policy invariant, not a presentation detail.
func (c *Catalog) ExportCatalog() *Export {
	export := &Export{
		Version:     "1.0.0",
		GeneratedAt: time.Now().UTC(),
		Commands: CommandsExport{
			Allow: exportRules(c.Commands.Allow),
			Block: exportRules(c.Commands.Block),
		},
		Paths: exportRules(c.PathTriggers),
		Metadata: ExportMetadata{
			Counts: map[string]int{
				"allow":         len(c.Commands.Allow),
				"block":         len(c.Commands.Block),
				"path_triggers": len(c.PathTriggers),
			},
		},
	}
	export.Metadata.RuleCount = len(c.Commands.Allow) + len(c.Commands.Block) + len(c.PathTriggers)
	export.SHA256 = c.ComputeHash()
	return export
}

// ComputeHash returns a deterministic hash of all rules for change detection.
func (c *Catalog) ComputeHash() string {
	var all []string

	lists := []struct {
		name  string
		rules []Rule
	}{
		{"allow", c.Commands.Allow},
		{"block", c.Commands.Block},
		{"paths", c.PathTriggers},
	}

	for _, l := range lists {
		for _, r := range l.rules {
			all = append(all, fmt.Sprintf("%s:%s:%s", l.name, r.Category, r.Pattern))
		}
	}

	sort.Strings(all)

	h := sha256.New()
	for _, s := range all {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ExportJSON returns the catalog as an indented JSON string.
func (c *Catalog) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(c.ExportCatalog(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
