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
	"encoding/json"
	"log"
	"os"

	"github.com/rotblauer/orthod/api"
	"github.com/rotblauer/orthod/flat"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/state"
	"github.com/rotblauer/orthod/stream"
	"github.com/spf13/cobra"
)

var optHistoryLimit int
var optHistorySuccess bool
var optHistoryLog bool

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past retrievals as NDJSON",
	Long: `Prints retrieval records from the datadir index, newest first.

With --log the records come from the append-only gzipped NDJSON log
instead, oldest first. The log needs no database lock, so it stays
readable while a webd daemon owns the datadir.

Example:

  orthod history --limit 5 --success | jq .name
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		enc := json.NewEncoder(os.Stdout)
		if optHistoryLog {
			r, err := flat.NewFlatWithRoot(datadir()).NamedGZReader(params.RetrievalsLogGZFileName)
			if err != nil {
				log.Fatalln(err)
			}
			defer r.Close()
			n := 0
			for rec := range stream.NDJSON[*state.Record](cmd.Context(), r) {
				if optHistorySuccess && (rec.Report == nil || !rec.Report.Success) {
					continue
				}
				if err := enc.Encode(rec); err != nil {
					log.Fatalln(err)
				}
				if n++; optHistoryLimit > 0 && n >= optHistoryLimit {
					break
				}
			}
			return
		}
		conf := params.DefaultOrthoConfig()
		conf.DataDir = datadir()
		o := api.NewOrtho(conf)
		defer o.Close()
		records, err := o.History(cmd.Context(), optHistoryLimit, optHistorySuccess)
		if err != nil {
			log.Fatalln(err)
		}
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				log.Fatalln(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	// Here you will define your flags and configuration settings.
	historyCmd.PersistentFlags().IntVar(&optHistoryLimit, "limit", 0, "Stop after this many records (0 means all)")
	historyCmd.PersistentFlags().BoolVar(&optHistorySuccess, "success", false, "Only successful retrievals")
	historyCmd.PersistentFlags().BoolVar(&optHistoryLog, "log", false, "Read the NDJSON log instead of the database")
}
