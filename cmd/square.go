/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
	"github.com/spf13/cobra"

	"github.com/notargets/rbfcloud/InputParameters"
)

// SquareCmd represents the square command
var SquareCmd = &cobra.Command{
	Use:   "square",
	Short: "Cloud on a structured lattice over the unit square",
	Long: `Cloud on an Nx x Ny lattice over the unit square with the facets West,
North, East and South. Corners go to the first of those that contains them.
A seed jitters every node that is neither dirichlet nor neumann.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, InputParameters.MethodSquare)
	},
}

func init() {
	rootCmd.AddCommand(SquareCmd)
	SquareCmd.Flags().Int("nx", 0, "lattice nodes along x")
	SquareCmd.Flags().Int("ny", 0, "lattice nodes along y")
	SquareCmd.Flags().Uint64("seed", 0, "jitter seed, no jitter unless given")
	addCloudFlags(SquareCmd, "West=dirichlet,North=dirichlet,East=dirichlet,South=dirichlet")
}
