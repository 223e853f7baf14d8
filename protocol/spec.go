package protocol

import (
	"github.com/spf13/cobra"

	"github.com/XAbade/tap-sherpaan/types"
)

// specCmd writes the connector's configuration schema.
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		types.LogSpec(connector.Spec())
		return nil
	},
}
