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
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotblauer/orthod/tiles"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var optResLat float64
var optResDPI int

// resRows builds one row per zoom level: ground resolution in meters
// per pixel and the map scale denominator, both at the given latitude.
func resRows(lat float64, dpi int) [][]string {
	rows := make([][]string, 0, int(tiles.MaxZoom))
	for z := tiles.MinZoom; z <= tiles.MaxZoom; z++ {
		res := decimal.NewFromFloat(tiles.GroundResolution(lat, z))
		scale := decimal.NewFromFloat(tiles.MapScale(lat, z, dpi))
		rows = append(rows, []string{
			strconv.Itoa(int(z)),
			res.StringFixed(3),
			"1 : " + scale.StringFixed(0),
		})
	}
	return rows
}

// resCmd represents the res command
var resCmd = &cobra.Command{
	Use:   "res",
	Short: "Print ground resolution and map scale per zoom level",
	Long: `Prints meters-per-pixel and the map scale denominator for every
zoom level. Both shrink by cos(latitude) away from the equator, so pass
--lat for honest numbers at your area of interest.
`,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "zoom\tm/px\tscale\t")
		for _, row := range resRows(optResLat, optResDPI) {
			fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
		}
		if err := w.Flush(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(resCmd)

	resCmd.PersistentFlags().Float64Var(&optResLat, "lat", 0, "Latitude for the cos(lat) shrink")
	resCmd.PersistentFlags().IntVar(&optResDPI, "dpi", 96, "Screen resolution for the scale column")
}
