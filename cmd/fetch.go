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
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/orthod/api"
	"github.com/rotblauer/orthod/common"
	"github.com/rotblauer/orthod/events"
	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/retriever"
	"github.com/rotblauer/orthod/rgeo"
	"github.com/rotblauer/orthod/tiles"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var optFetchByCenter bool
var optFetchOutput string
var optFetchMaxZoom int
var optFetchMinZoom int
var optFetchWorkers int
var optFetchTimeout time.Duration
var optFetchRPS float64
var optFetchNoCache bool
var optFetchS3 bool
var optFetchPlaceNames bool
var optFetchQuiet bool

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [flags] lat1 lon1 lat2 lon2",
	Short: "Retrieve the finest available imagery for a bounding box",
	Long: `

Retrieves the highest-resolution aerial imagery available for a
bounding box, assembled from tiles and cropped to the box's exact
pixel extent.

The box is four positional floats, two opposite corners:

  orthod fetch 47.66 -122.40 47.56 -122.20

or, with -b, a center point plus width and height in meters:

  orthod fetch -b 47.61 -122.30 1500 1000

Levels are tried finest first. A level only counts when every tile
under the box exists upstream; the service answers a placeholder tile
for anything it does not have, so one placeholder abandons the level
and the scan drops one zoom coarser. The winning composite is saved
under the datadir along with a record of the attempt, and the attempt
is recorded either way.

Flags:

  --max-zoom     Finest level to try. (Default is 23.)
  --min-zoom     Coarsest level worth keeping. (Default is 1.)
  --workers      Concurrent tile fetches within a row. 1 keeps rows
                 strictly serial, which stops a row at its first
                 missing tile instead of fetching the rest. (Default is 1.)
  --no-cache     Skip the persistent and in-memory tile caches.
  --place-names  Load the reverse geocoder and name output by place.
                 First load is slow and hungry; coordinates are the
                 default name.

Examples:

  orthod fetch 47.66 -122.40 47.56 -122.20
  orthod fetch -b 47.61 -122.30 1500 1000 --max-zoom 17 -o seattle.jpeg
  AWS_BUCKETNAME=imagery orthod fetch --s3 --place-names 47.66 -122.40 47.56 -122.20
`,
	Args: cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		if optFetchQuiet {
			slog.SetLogLoggerLevel(slog.Level(slog.LevelWarn + 1))
		}

		parse := geo.ParseCorners
		if optFetchByCenter {
			parse = geo.ParseCenter
		}
		box, err := parse(args)
		if err != nil {
			log.Fatalln(err)
		}

		conf := params.DefaultOrthoConfig()
		conf.DataDir = datadir()
		conf.Retriever.MaxZoom = tiles.Zoom(optFetchMaxZoom)
		conf.Retriever.MinZoom = tiles.Zoom(optFetchMinZoom)
		conf.Retriever.Workers = optFetchWorkers
		conf.Fetch.Timeout = optFetchTimeout
		conf.Fetch.RPS = optFetchRPS
		conf.Cache.Persistent = !optFetchNoCache
		if optFetchNoCache {
			conf.Cache.MemTTL = 0
		}

		if optFetchS3 && params.AWS_BUCKETNAME == "" {
			log.Fatalln("--s3 wants an AWS_BUCKETNAME in the environment")
		}
		if optFetchPlaceNames {
			if err := rgeo.Init(); err != nil && !errors.Is(err, rgeo.ErrAlreadyInitialized) {
				slog.Warn("Reverse geocoder unavailable, naming by coordinates", "error", err)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			sig := <-common.Interrupted()
			slog.Warn("Received signal", "signal", sig)
			cancel()
		}()

		var bar *progressbar.ProgressBar
		if !optFetchQuiet {
			bar = progressbar.Default(-1, "fetching tiles")
			tileEvents := make(chan retriever.TileEvent)
			sub := events.TileFeed.Subscribe(tileEvents)
			defer sub.Unsubscribe()
			go func() {
				for range tileEvents {
					_ = bar.Add(1)
				}
			}()
		}

		o := api.NewOrtho(conf)
		defer o.Close()

		ret, err := o.Retrieve(ctx, box)
		if bar != nil {
			_ = bar.Finish()
			fmt.Println()
		}
		if err != nil {
			log.Fatalln("Retrieval failed:", err)
		}

		rep := ret.Record.Report
		fmt.Printf("Retrieved %dx%d px at zoom %d: %d tiles, %s, %s\n",
			rep.Width, rep.Height, rep.Zoom, rep.TileCount,
			humanize.Bytes(uint64(len(ret.JPEG))),
			rep.Elapsed.Round(time.Millisecond))
		fmt.Println("Saved", ret.Record.Path)
		if ret.Record.S3Key != "" {
			fmt.Println("Uploaded", ret.Record.S3Key)
		}

		if optFetchOutput != "" {
			if err := os.WriteFile(optFetchOutput, ret.JPEG, 0660); err != nil {
				log.Fatalln(err)
			}
			fmt.Println("Wrote", optFetchOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// fetchCmd.PersistentFlags().String("foo", "", "A help for foo")
	defaults := params.DefaultOrthoConfig()

	pFlags := fetchCmd.PersistentFlags()
	pFlags.BoolVarP(&optFetchByCenter, "by-center", "b", false, "Read args as center lat, lon and width, height in meters")
	pFlags.StringVarP(&optFetchOutput, "output", "o", "", "Also write the image to this path")
	pFlags.IntVar(&optFetchMaxZoom, "max-zoom", int(defaults.Retriever.MaxZoom), "Finest level to try")
	pFlags.IntVar(&optFetchMinZoom, "min-zoom", int(defaults.Retriever.MinZoom), "Coarsest level worth keeping")
	pFlags.IntVar(&optFetchWorkers, "workers", defaults.Retriever.Workers, "Concurrent tile fetches within a row")
	pFlags.DurationVar(&optFetchTimeout, "timeout", defaults.Fetch.Timeout, "Per-tile request timeout")
	pFlags.Float64Var(&optFetchRPS, "rps", defaults.Fetch.RPS, "Tile request rate limit, 0 is unlimited")
	pFlags.BoolVar(&optFetchNoCache, "no-cache", false, "Skip the tile caches")
	pFlags.BoolVar(&optFetchS3, "s3", false, "Require the S3 upload of the result")
	pFlags.BoolVar(&optFetchPlaceNames, "place-names", false, "Name output by reverse-geocoded place")
	pFlags.BoolVarP(&optFetchQuiet, "quiet", "q", false, "No progress bar, warnings only")
}
