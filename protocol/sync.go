package protocol

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/destination"
	"github.com/XAbade/tap-sherpaan/statestore"
	"github.com/XAbade/tap-sherpaan/types"
	"github.com/XAbade/tap-sherpaan/utils"
	"github.com/XAbade/tap-sherpaan/utils/logger"
)

// syncCmd runs the incremental sync for all selected streams.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "sync command",
	Long:  `Sync pulls records from the Sherpa backend and emits RECORD/STATE messages on stdout, resuming from the persisted bookmarks.`,
	Example: `
// Full catalog:
tap-sherpaan sync --config path/to/config.json

// Selected streams with explicit state:
tap-sherpaan sync --config path/to/config.json --catalog path/to/streams.json --state path/to/state.json
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == "not-set" {
			return fmt.Errorf("--config not passed")
		}
		if err := utils.UnmarshalFile(configPath, connector.GetConfigRef()); err != nil {
			return err
		}

		// a streams file narrows the selection; without one every discovered
		// stream is synced
		if streamsPath != "" {
			catalog = &types.Catalog{}
			if err := utils.UnmarshalFile(streamsPath, catalog); err != nil {
				return err
			}
		}
		state = types.NewState()
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := connector.Setup(cmd.Context()); err != nil {
			return err
		}

		store, err := statestore.New(utils.Ternary(statePath == "", viper.GetString(constants.StatePath), statePath).(string))
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Load(state); err != nil {
			return err
		}
		connector.SetupState(state, store)

		streams, err := connector.Discover(cmd.Context())
		if err != nil {
			return err
		}
		selected := selectStreams(streams)
		if len(selected) == 0 {
			return fmt.Errorf("no valid streams selected")
		}

		writer := destination.NewStdout()
		defer writer.Close(cmd.Context())

		if err := connector.Incremental(cmd.Context(), writer, selected...); err != nil {
			return fmt.Errorf("sync finished with stream failures: %s", err)
		}
		logger.Infof("total records emitted: %d", writer.TotalRecords())
		return nil
	},
}

// selectStreams validates the configured selection against the source
// catalog; invalid entries are skipped with a warning, matching the runner
// policy of not letting one bad stream block the rest.
func selectStreams(streams []*types.Stream) []types.StreamInterface {
	sourceMap := types.StreamsToMap(streams...)

	configured := catalog
	if configured == nil {
		configured = types.GetWrappedCatalog(streams)
	}

	selectedIDs := []string{}
	selected := []types.StreamInterface{}
	for _, elem := range configured.Streams {
		source, found := sourceMap[elem.ID()]
		if !found {
			logger.Warnf("skipping; configured stream %s not found in source", elem.ID())
			continue
		}
		if err := elem.Validate(source); err != nil {
			logger.Warnf("skipping; configured stream %s found invalid due to reason: %s", elem.ID(), err)
			continue
		}
		selectedIDs = append(selectedIDs, elem.ID())
		selected = append(selected, elem)
	}
	logger.Infof("valid selected streams are %s", strings.Join(selectedIDs, ", "))
	return selected
}
