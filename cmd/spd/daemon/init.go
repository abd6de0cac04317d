package daemon

import (
	"fmt"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/cobra"

	"github.com/stakepool/staking-pool/config"
	"github.com/stakepool/staking-pool/util"
)

// CommandInit returns the init command of spd daemon that creates the home dir.
func CommandInit() *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "init",
		Short:   "Initialize a staking-pool home directory.",
		Long:    `Creates a new staking-pool home directory with default config`,
		Example: `spd init --home /home/user/.spd --force`,
		Args:    cobra.NoArgs,
		RunE:    runInitCmd,
	}
	cmd.Flags().String(homeFlag, config.DefaultSpdDir, "The path to the spd home directory")
	cmd.Flags().Bool(forceFlag, false, "Override existing configuration")
	return cmd
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	home, err := cmd.Flags().GetString(homeFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", homeFlag, err)
	}

	homePath, err := filepath.Abs(home)
	if err != nil {
		return err
	}
	homePath = util.CleanAndExpandPath(homePath)

	force, err := cmd.Flags().GetBool(forceFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", forceFlag, err)
	}

	if util.FileExists(config.ConfigFile(homePath)) && !force {
		return fmt.Errorf("home path %s already initialized", homePath)
	}

	if err := util.MakeDirectory(homePath); err != nil {
		return err
	}
	// Create log directory
	logDir := config.LogDir(homePath)
	if err := util.MakeDirectory(logDir); err != nil {
		return err
	}

	defaultConfig := config.DefaultConfigWithHome(homePath)
	fileParser := flags.NewParser(&defaultConfig, flags.Default)

	return flags.NewIniParser(fileParser).WriteFile(config.ConfigFile(homePath), flags.IniIncludeComments|flags.IniIncludeDefaults)
}
