package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
)

// YAMLDirectory serves sponsor records from a file keyed by category:
//
//	hosting:
//	  - name: Linode
//	    domain: linode.com
//	    evidence_links: [https://linuxunplugged.com/640]
type YAMLDirectory struct {
	*StaticDirectory
}

var _ ports.SponsorDirectory = (*YAMLDirectory)(nil)

// LoadYAMLDirectory reads and parses the file once.
func LoadYAMLDirectory(path string) (*YAMLDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sponsor directory %s: %w", path, err)
	}
	return ParseYAMLDirectory(path, raw)
}

// ParseYAMLDirectory parses raw YAML; path only labels errors.
func ParseYAMLDirectory(path string, raw []byte) (*YAMLDirectory, error) {
	var records map[string][]domain.RawSponsorRecord
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse sponsor directory %s: %w", path, err)
	}
	return &YAMLDirectory{StaticDirectory: NewMemoryDirectory(records)}, nil
}
