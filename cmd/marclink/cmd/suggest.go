package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/marclink"
	"github.com/agentstation/marclink/internal/config"
	"github.com/agentstation/marclink/pkg/marc"
	"github.com/agentstation/marclink/pkg/rules"
)

var authoritiesFile string

// suggestCmd resolves one bibliographic field against a file of authority
// records and prints the field with its link details filled.
var suggestCmd = &cobra.Command{
	Use:   "suggest <field.json>",
	Short: "Resolve a bibliographic field to a single authority record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant := config.Tenant()
		if tenant == "" {
			return fmt.Errorf("a tenant is required (--tenant or MARCLINK_TENANT)")
		}
		rulesFile := config.RulesFile()
		if rulesFile == "" {
			return fmt.Errorf("a rule file is required (--rules_file or MARCLINK_RULES_FILE)")
		}
		if authoritiesFile == "" {
			return fmt.Errorf("an authorities file is required (--authorities)")
		}

		field, err := readField(args[0])
		if err != nil {
			return err
		}
		store, err := readAuthorities(authoritiesFile)
		if err != nil {
			return err
		}

		linker, err := marclink.New(
			marclink.WithRuleSource(rules.NewFileSource(rulesFile)),
			marclink.WithLinkStore(fileLinkStore{}),
			marclink.WithAuthorityStore(store),
			marclink.WithSearchParameter(config.SearchParameter()),
		)
		if err != nil {
			return err
		}

		if _, err := linker.Suggest(cmd.Context(), tenant, field); err != nil {
			return err
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(field)
	},
}

func init() {
	suggestCmd.Flags().StringVar(&authoritiesFile, "authorities", "",
		"JSON file mapping natural ids to authority records")
}

// readField parses a single bibliographic field from a JSON file.
func readField(path string) (*marc.Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var field marc.Field
	if err := json.Unmarshal(data, &field); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &field, nil
}

// fileAuthorityStore serves authority records from a JSON map loaded at
// startup, keyed by natural identifier.
type fileAuthorityStore map[string]*marc.Authority

// ByIDs implements suggest.Store.
func (s fileAuthorityStore) ByIDs(_ context.Context, ids []string) ([]*marc.Authority, error) {
	var out []*marc.Authority
	for _, a := range s {
		for _, id := range ids {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

// ByNaturalIDs implements suggest.Store.
func (s fileAuthorityStore) ByNaturalIDs(_ context.Context, naturalIDs []string) ([]*marc.Authority, error) {
	var out []*marc.Authority
	for _, id := range naturalIDs {
		if a, ok := s[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func readAuthorities(path string) (fileAuthorityStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var store fileAuthorityStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return store, nil
}
