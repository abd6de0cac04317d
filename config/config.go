package config

import (
	"fmt"
	"net"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"

	"github.com/stakepool/staking-pool/metrics"
	"github.com/stakepool/staking-pool/util"
)

const (
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "spd.log"
	defaultConfigFileName = "spd.conf"
	defaultDataDirname    = "data"
	DefaultAPIPort        = 12590
)

var (
	//   C:\Users\<username>\AppData\Local\Spd on Windows
	//   ~/.spd on Linux
	//   ~/Library/Application Support/Spd on MacOS
	DefaultSpdDir = btcutil.AppDataDir("spd", false)

	DefaultAPIListener = fmt.Sprintf("127.0.0.1:%d", DefaultAPIPort)
)

// Config is the main config for the spd daemon
type Config struct {
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`

	APIListener string `long:"apilistener" description:"the listener for the depositor-facing JSON API, e.g., 127.0.0.1:1234"`

	Investment *InvestmentConfig `group:"investment" namespace:"investment"`

	Reinvest *ReinvestConfig `group:"reinvest" namespace:"reinvest"`

	ChainConfig *ChainConfig `group:"chain" namespace:"chain"`

	DatabaseConfig *DatabaseConfig `group:"dbconfig" namespace:"dbconfig"`

	Metrics *metrics.Config `group:"metrics" namespace:"metrics"`
}

func DefaultConfigWithHome(homePath string) Config {
	investmentCfg := DefaultInvestmentConfig()
	reinvestCfg := DefaultReinvestConfig()
	chainCfg := DefaultChainConfig()
	chainCfg.KeyDirectory = homePath
	dbCfg := DefaultDatabaseConfig()
	cfg := Config{
		LogLevel:       defaultLogLevel,
		APIListener:    DefaultAPIListener,
		Investment:     &investmentCfg,
		Reinvest:       &reinvestCfg,
		ChainConfig:    &chainCfg,
		DatabaseConfig: &dbCfg,
		Metrics:        metrics.DefaultPoolConfig(),
	}

	return cfg
}

func DefaultConfig() Config {
	return DefaultConfigWithHome(DefaultSpdDir)
}

func ConfigFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

func DataDir(homePath string) string {
	return filepath.Join(homePath, defaultDataDirname)
}

// DBPath returns the file path of the database under the given home.
func DBPath(homePath string) string {
	return filepath.Join(DataDir(homePath), "spd.db")
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig(homePath string) (*Config, error) {
	// The home directory is required to have a configuration file with a specific name
	// under it.
	cfgFile := ConfigFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	// Next, load any additional configuration options from the file.
	var cfg Config
	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(cfgFile)
	if err != nil {
		return nil, err
	}

	// Make sure everything we just loaded makes sense.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the given configuration to be sane. This makes sure no
// illegal values or combination of values are set.
func (cfg *Config) Validate() error {
	if cfg.Investment == nil {
		return fmt.Errorf("empty investment config")
	}
	if _, err := cfg.Investment.ToInvestmentInfo(); err != nil {
		return err
	}

	if cfg.Reinvest == nil {
		return fmt.Errorf("empty reinvest config")
	}
	if err := cfg.Reinvest.Validate(); err != nil {
		return err
	}

	if cfg.ChainConfig == nil {
		return fmt.Errorf("empty chain config")
	}
	if err := cfg.ChainConfig.Validate(); err != nil {
		return err
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.APIListener); err != nil {
		return fmt.Errorf("invalid API listener address %s, %w", cfg.APIListener, err)
	}

	if cfg.Metrics == nil {
		return fmt.Errorf("empty metrics config")
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config")
	}

	return nil
}
