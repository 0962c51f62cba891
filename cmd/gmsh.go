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

// GmshCmd represents the gmsh command
var GmshCmd = &cobra.Command{
	Use:   "gmsh",
	Short: "Cloud from the nodes of a Gmsh 4.0 ASCII mesh",
	Long: `Cloud from the nodes of a Gmsh 4.0 ASCII mesh. Boundary curves are matched
to facets by physical group name; every curve's group must be listed in the
facets, whose order decides which facet owns a shared corner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, InputParameters.MethodGmsh)
	},
}

func init() {
	rootCmd.AddCommand(GmshCmd)
	GmshCmd.Flags().StringP("meshFile", "F", "", "mesh file to read in Gmsh 4.0 ASCII (.msh) format")
	addCloudFlags(GmshCmd, "")
}
