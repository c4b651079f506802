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
	"log"
	"strconv"

	"github.com/rotblauer/orthod/tiles"
	"github.com/spf13/cobra"
)

// quadkeyCmd represents the quadkey command
var quadkeyCmd = &cobra.Command{
	Use:   "quadkey [x y z | quadkey]",
	Short: "Convert between tile addresses and quadkeys",
	Long: `Three integer args are a tile x y z, printed as its quadkey.
One arg is a quadkey, printed as its tile x y z.

  $ orthod quadkey 3 5 4
  0213
  $ orthod quadkey 0213
  3 5 4
`,
	Args: cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		switch len(args) {
		case 3:
			vals := [3]int{}
			for i, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					log.Fatalln(err)
				}
				vals[i] = n
			}
			z := tiles.Zoom(vals[2])
			if !z.Valid() {
				log.Fatalf("zoom %d out of range %d..%d", vals[2], tiles.MinZoom, tiles.MaxZoom)
			}
			if max := tiles.MapSize(z) / 256; vals[0] < 0 || vals[0] >= max || vals[1] < 0 || vals[1] >= max {
				log.Fatalf("tile %d,%d out of range for zoom %d", vals[0], vals[1], vals[2])
			}
			fmt.Println(tiles.TileToQuadKey(tiles.Tile{X: vals[0], Y: vals[1]}, z))
		case 1:
			tile, z, err := tiles.QuadKeyToTile(tiles.QuadKey(args[0]))
			if err != nil {
				log.Fatalln(err)
			}
			fmt.Println(tile.X, tile.Y, int(z))
		default:
			if err := cmd.Help(); err != nil {
				log.Fatalln(err)
			}
			log.Fatalln("want 1 or 3 args")
		}
	},
}

func init() {
	rootCmd.AddCommand(quadkeyCmd)
}
