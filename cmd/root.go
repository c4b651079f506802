/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rotblauer/orthod/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var optDatadir string
var optVerbosity int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "orthod",
	Short: "Aerial imagery for bounding boxes",
	Long: `orthod finds the highest-resolution aerial imagery available for a
geographic bounding box, assembles it from map tiles, and crops it to
the box's exact pixel extent.

Imagery, retrieval records, and the tile cache live under the datadir
(default ~/.orthod; override with --datadir or ORTHOD_DATADIR).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Here you will define your flags and configuration settings.
	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.orthod.yaml)")
	rootCmd.PersistentFlags().StringVar(&optDatadir, "datadir", params.DefaultDatadirRoot, "Data directory root")
	rootCmd.PersistentFlags().CountVarP(&optVerbosity, "verbosity", "v", "Log more; stackable")
	if err := viper.BindPFlag("datadir", rootCmd.PersistentFlags().Lookup("datadir")); err != nil {
		panic(err)
	}
}

// setDefaultSlog maps the --verbosity count onto the default slog level.
// Zero is info, each -v steps one level toward (and past) debug.
func setDefaultSlog(cmd *cobra.Command, args []string) {
	slog.SetLogLoggerLevel(slog.LevelInfo - slog.Level(4*optVerbosity))
}

// datadir resolves the configured data directory: flag, then ORTHOD_DATADIR,
// then the config file, then the default.
func datadir() string {
	return viper.GetString("datadir")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".orthod" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".orthod")
	}

	viper.SetEnvPrefix("orthod")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
