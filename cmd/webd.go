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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/rotblauer/orthod/common"
	"github.com/rotblauer/orthod/daemon/webd"
	"github.com/rotblauer/orthod/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var optHTTPInterface string
var optHTTPPort int
var optToken string

// webdCmd represents the webd command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the webserver",
	Long: `Serves imagery on the internet: retrieval over GET, a raw tile
proxy, retrieval history, and a websocket feed of progress events.

The daemon holds the datadir's write lock for its lifetime, so one-shot
fetches against the same datadir will fail while it runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		slog.Info("webd.Run")

		if optToken != "" {
			os.Setenv("ORTHOTOKEN", optToken)
		}

		config := params.DefaultWebDaemonConfig()
		config.DataDir = datadir()
		config.ListenerConfig = params.ListenerConfig{
			Network: "tcp",
			Address: fmt.Sprintf("%s:%d", optHTTPInterface, optHTTPPort),
		}
		server := webd.NewWebDaemon(config)

		done := make(chan error, 1)
		go func() {
			done <- server.Run()
		}()

		select {
		case err := <-done:
			if err != nil {
				log.Fatalln(err)
			}
		case sig := <-common.Interrupted():
			slog.Info("webd interrupted", "signal", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Stop(ctx); err != nil {
				log.Fatalln(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// webdCmd.PersistentFlags().String("foo", "", "A help for foo")
	pFlags := webdCmd.PersistentFlags()
	pFlags.AddFlagSet(&pflag.FlagSet{})
	pFlags.StringVar(&optHTTPInterface, "interface", "localhost", "Interface to listen on")
	pFlags.IntVar(&optHTTPPort, "port", 3000, "Port to listen on")
	pFlags.StringVar(&optToken, "token", "", "Access token for the retrieval endpoint (also ORTHOTOKEN)")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	// webdCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")
}
