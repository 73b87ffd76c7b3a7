package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/marclink"
	"github.com/agentstation/marclink/internal/config"
	"github.com/agentstation/marclink/pkg/events"
	"github.com/agentstation/marclink/pkg/logging"
	"github.com/agentstation/marclink/pkg/rules"
	"github.com/agentstation/marclink/pkg/transport"
)

var linksFile string

// processCmd runs a notification file through the full pipeline against an
// in-memory transport and prints the published events as JSON lines.
var processCmd = &cobra.Command{
	Use:   "process <notifications.json>",
	Short: "Classify and diff a file of authority-change notifications",
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

		notifications, err := readNotifications(args[0])
		if err != nil {
			return err
		}
		linkStore, err := readLinks(linksFile)
		if err != nil {
			return err
		}

		channel := transport.NewChannel()
		linker, err := marclink.New(
			marclink.WithRuleSource(rules.NewFileSource(rulesFile)),
			marclink.WithLinkStore(linkStore),
			marclink.WithTransport(channel),
			marclink.WithTopicPrefix(config.TopicPrefix()),
			marclink.WithPartitionSize(config.PartitionSize()),
			marclink.WithRetryAttempts(config.RetryAttempts()),
		)
		if err != nil {
			return err
		}

		result, err := linker.ProcessNotifications(cmd.Context(), tenant, notifications)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		for _, msg := range channel.Messages(config.TopicPrefix() + "." + tenant) {
			var event events.LinksChangeEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				return err
			}
			if err := encoder.Encode(event); err != nil {
				return err
			}
		}

		logging.Default().Info().
			Int("emitted", result.Emitted).
			Int("batches", result.Batches).
			Int("skipped", result.Skipped).
			Int("no_links", result.NoLinks).
			Int("malformed", result.Malformed).
			Msg("Processing complete")
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&linksFile, "links", "",
		"JSON file mapping authority ids to their existing instance links")
}

// readNotifications parses a JSON array of inbound notifications.
func readNotifications(path string) ([]events.Notification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var notifications []events.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return notifications, nil
}

// fileLinkStore serves instance links from a JSON map loaded at startup.
type fileLinkStore map[string][]events.InstanceLink

// ByAuthority implements events.LinkStore.
func (s fileLinkStore) ByAuthority(_ context.Context, _ string, authorityID string) ([]events.InstanceLink, error) {
	return s[authorityID], nil
}

// readLinks loads the optional links file; a missing path yields an empty
// store, under which every authority classifies as having no links.
func readLinks(path string) (fileLinkStore, error) {
	if path == "" {
		return fileLinkStore{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var store fileLinkStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return store, nil
}
