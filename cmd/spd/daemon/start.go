package daemon

import (
	"fmt"
	"net"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stakepool/staking-pool/config"
	"github.com/stakepool/staking-pool/log"
	"github.com/stakepool/staking-pool/service"
	"github.com/stakepool/staking-pool/util"
)

// CommandStart returns the start command of spd daemon.
func CommandStart() *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "start",
		Short:   "Start the staking-pool daemon.",
		Long:    `Start the staking-pool daemon. Note that the home directory should be initialized beforehand`,
		Example: `spd start --home /home/user/.spd`,
		Args:    cobra.NoArgs,
		RunE:    runStartCmd,
	}
	cmd.Flags().String(homeFlag, config.DefaultSpdDir, "The path to the spd home directory")
	cmd.Flags().String(apiListenerFlag, "", "The address that the JSON API server listens to")
	return cmd
}

func runStartCmd(cmd *cobra.Command, args []string) error {
	home, err := cmd.Flags().GetString(homeFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", homeFlag, err)
	}

	homePath, err := filepath.Abs(home)
	if err != nil {
		return err
	}
	homePath = util.CleanAndExpandPath(homePath)

	apiListener, err := cmd.Flags().GetString(apiListenerFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", apiListenerFlag, err)
	}

	cfg, err := config.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if apiListener != "" {
		_, err := net.ResolveTCPAddr("tcp", apiListener)
		if err != nil {
			return fmt.Errorf("invalid API listener address %s, %w", apiListener, err)
		}
		cfg.APIListener = apiListener
	}

	logger, err := log.NewRootLoggerWithFile(config.LogFile(homePath), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize the logger: %w", err)
	}

	poolApp, err := service.NewPoolAppFromConfig(homePath, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create the pool app: %w", err)
	}

	poolServer := service.NewPoolServer(cfg, logger, poolApp)
	return poolServer.RunUntilShutdown()
}
