package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
	lxsyncerrors "github.com/alexisbeaulieu97/lxsync/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Parse loads a spec document from disk, applies defaults, validates it,
// and returns the resulting model.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lxsyncerrors.NewParseError(path, 0, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, lxsyncerrors.NewParseError(path, extractLine(err), err)
	}

	applyDefaults(&doc)

	if err := Validate(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func applyDefaults(doc *Document) {
	if doc.State == "" {
		doc.State = DefaultState
	}
	if doc.Type == "" {
		doc.Type = DefaultType
	}
	if doc.Timeout == 0 {
		doc.Timeout = DefaultTimeout
	}
	if doc.Server.URL == "" {
		doc.Server.URL = defaultServerURL()
	}
	if doc.Server.ClientCert == "" {
		doc.Server.ClientCert = defaultCredentialPath("client.crt")
	}
	if doc.Server.ClientKey == "" {
		doc.Server.ClientKey = defaultCredentialPath("client.key")
	}
}

// defaultServerURL prefers the snap socket when it exists, matching how
// lxc itself resolves the endpoint on snap-packaged hosts.
func defaultServerURL() string {
	if _, err := os.Stat(lxd.SnapSocketPath); err == nil {
		return "unix:" + lxd.SnapSocketPath
	}
	return lxd.DefaultSocketURL
}

func defaultCredentialPath(file string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lxc", file)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
