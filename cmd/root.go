package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/pcmscope/configs"
)

var (
	configFile string
	verbose    bool
	logLevel   string
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pcmscope",
	Short: "Real-time PCM waveform and spectrum visualizer",
	Long: `pcmscope reads raw 16-bit little-endian stereo PCM from a named pipe
(such as mpd's fifo output), keeps the most recent second of audio and draws
it as a waveform or a magnitude spectrum.

Key features:
- Non-blocking FIFO, stdin and paced file replay sources
- Waveform view with both channels in separate bands
- Hann-windowed FFT spectrum view
- Braille terminal renderer and headless capture reports
- Optional DogStatsD metrics`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/pcmscope/pcmscope.yaml)")

	// Logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to this file (terminal mode discards logs otherwise)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config", "pcmscope"))
		viper.AddConfigPath("/etc/pcmscope")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("pcmscope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PCMSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configFile, err)
		os.Exit(1)
	}

	configs.SetDefaults(viper.GetViper())
}

// initializeConfig binds the running command's flags after parsing
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper(), commandFlagKeys[cmd.Name()])
}

// commandFlagKeys maps subcommand flags onto nested configuration keys
var commandFlagKeys = map[string]map[string]string{}

// registerFlagKeys records which config key each flag of command overrides
func registerFlagKeys(command string, keys map[string]string) {
	commandFlagKeys[command] = keys
}

// bindFlags binds each cobra flag to its associated viper key and env var
func bindFlags(cmd *cobra.Command, v *viper.Viper, keys map[string]string) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}

		// An explicit flag wins over file and environment
		if f.Changed {
			v.Set(key, f.Value.String())
			if sv, isSlice := f.Value.(pflag.SliceValue); isSlice {
				v.Set(key, sv.GetSlice())
			}
		}

		envVarSuffix := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
		if err := v.BindEnv(key, "PCMSCOPE_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
