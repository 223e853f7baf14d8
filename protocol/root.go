// Package protocol wires the connector's command surface: spec, check,
// discover and sync, in the style of Singer/Airbyte style taps. stdout
// carries protocol messages only; diagnostics go to the logger.
package protocol

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/drivers/abstract"
	"github.com/XAbade/tap-sherpaan/types"
	"github.com/XAbade/tap-sherpaan/utils"
	"github.com/XAbade/tap-sherpaan/utils/logger"
)

var (
	configPath  string
	statePath   string
	streamsPath string

	catalog *types.Catalog
	state   *types.State

	commands  = []*cobra.Command{}
	connector *abstract.AbstractDriver
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tap-sherpaan",
	Short: "Sherpa data extraction connector",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		viper.SetDefault(constants.ConfigFolder, os.TempDir())
		viper.SetDefault(constants.StatePath, filepath.Join(os.TempDir(), "state.json"))
		viper.SetDefault(constants.StreamsPath, filepath.Join(os.TempDir(), "streams.json"))
		if configPath != "not-set" {
			configFolder := filepath.Dir(configPath)
			viper.Set(constants.ConfigFolder, configFolder)
			viper.Set(constants.StatePath, utils.Ternary(statePath == "", filepath.Join(configFolder, "state.json"), statePath).(string))
			viper.Set(constants.StreamsPath, utils.Ternary(streamsPath == "", filepath.Join(configFolder, "streams.json"), streamsPath).(string))
		}

		// logger uses CONFIG_FOLDER
		logger.Init()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'tap-sherpaan --help' to display usage guide", args[0])
		}
		return nil
	},
}

// CreateRootCommand attaches the subcommands and binds the driver.
func CreateRootCommand(driver abstract.DriverInterface) *cobra.Command {
	RootCmd.AddCommand(commands...)
	connector = abstract.NewAbstractDriver(driver)
	return RootCmd
}

func init() {
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "not-set", "(Required) Config for connector")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Optional) State for connector; file path or sqlite://path.db")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "catalog", "", "", "(Optional) Path to the streams file for the connector")
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
