package cli

import (
	"github.com/policykit/policyconv/internal/models"
	"github.com/policykit/policyconv/internal/policy"
	"github.com/policykit/policyconv/internal/policyio"
	"github.com/policykit/policyconv/internal/schema"
	"github.com/spf13/cobra"
)

// loadServerPolicy reads a JSON or YAML server policy. Unless skipSchema is
// set the document must pass the server policy schema first.
func loadServerPolicy(cmd *cobra.Command, path string, skipSchema bool) (*models.ServerPolicy, error) {
	var p models.ServerPolicy
	raw, err := policyio.Load(path, cmd.InOrStdin(), &p)
	if err != nil {
		return nil, err
	}
	if !skipSchema {
		if err := schema.ValidateServerPolicy(raw); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func loadClientPolicy(cmd *cobra.Command, path string) (*models.ClientPolicy, error) {
	var p models.ClientPolicy
	if _, err := policyio.Load(path, cmd.InOrStdin(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// digestOf returns the canonical digest of v, or "" if it cannot be
// computed
func digestOf(v interface{}) string {
	d, err := policy.Digest(v)
	if err != nil {
		return ""
	}
	return d
}
