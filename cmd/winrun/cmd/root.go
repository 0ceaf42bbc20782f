/*
Copyright © 2025 subbotindann

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subbotindann/wgate/internal/colors"
	"github.com/subbotindann/wgate/internal/commands/winrun"
	"github.com/subbotindann/wgate/internal/config"
)

var (
	cfgFile string
	// Verbose boolean flag for verbose logging
	Verbose bool
	// Color boolean flag for colorized output
	Color bool
	// AppVersion stores the winrun version
	AppVersion string
	// AppBuildTime stores the winrun build time
	AppBuildTime string

	conf *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "winrun <binary>",
	Short: "Run native binaries, replay the Windows API calls of everything else",
	Example: heredoc.Doc(`
		# Replay the Win32 calls of a PE through waygate
		❯ winrun game.exe

		# Same, with compatibility diagnostics and the final emulated state
		❯ winrun -d --dump-state game.exe

		# Run an ELF directly (traced with gdb first in debug mode)
		❯ winrun -d --max-stops 32 ./a.out`),
	Args:              cobra.ExactArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return winrun.Run(cmd.Context(), &winrun.Config{
			Target:    args[0],
			Debug:     conf.Debug,
			DumpState: conf.DumpState,
			GDBPath:   conf.Trace.GDB,
			MaxStops:  conf.Trace.MaxStops,
			Verbose:   conf.Verbose,
			Output:    cmd.OutOrStdout(),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihander.Default)

	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/winrun/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&Color, "color", false, "colorize output")
	rootCmd.PersistentFlags().String("gdb", config.DefaultGDB, "gdb binary used for tracing native targets")
	rootCmd.PersistentFlags().Int("max-stops", config.DefaultMaxStops, "maximum breakpoint stops recorded per trace")
	rootCmd.Flags().BoolP("debug", "d", false, "print compatibility diagnostics")
	rootCmd.Flags().Bool("dump-state", false, "dump the emulated OS state as YAML after replay")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("trace.gdb", rootCmd.PersistentFlags().Lookup("gdb"))
	viper.BindPFlag("trace.max-stops", rootCmd.PersistentFlags().Lookup("max-stops"))
	viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))
	viper.BindPFlag("dump-state", rootCmd.Flags().Lookup("dump-state"))
	viper.BindEnv("color", "CLICOLOR")
	// Settings
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	if AppVersion != "" {
		rootCmd.Version = fmt.Sprintf("%s (built %s)", AppVersion, AppBuildTime)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "winrun"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("winrun")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if conf, err = config.LoadConfig(); err != nil {
		return err
	}
	if conf.Verbose || conf.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if viper.IsSet("color") {
		colors.Init(&conf.Color)
	}
	log.WithField("color", colors.Enabled()).Debug("configuration loaded")
	return nil
}
