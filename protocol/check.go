package protocol

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XAbade/tap-sherpaan/types"
	"github.com/XAbade/tap-sherpaan/utils"
)

// checkCmd validates the config and probes backend connectivity, reporting a
// CONNECTION_STATUS message either way.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == "not-set" {
			return fmt.Errorf("--config not passed")
		}
		return utils.UnmarshalFile(configPath, connector.GetConfigRef())
	},
	Run: func(cmd *cobra.Command, _ []string) {
		types.LogConnectionStatus(connector.Setup(cmd.Context()))
	},
}
