package protocol

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XAbade/tap-sherpaan/types"
	"github.com/XAbade/tap-sherpaan/utils"
)

// discoverCmd writes the stream catalog.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "discover command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == "not-set" {
			return fmt.Errorf("--config not passed")
		}
		return utils.UnmarshalFile(configPath, connector.GetConfigRef())
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := connector.Setup(cmd.Context()); err != nil {
			return err
		}
		streams, err := connector.Discover(cmd.Context())
		if err != nil {
			return err
		}
		if len(streams) == 0 {
			return errors.New("no streams found in connector")
		}
		types.LogCatalog(streams)
		return nil
	},
}
