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
	"fmt"
	"os"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/rbfcloud/InputParameters"
	"github.com/notargets/rbfcloud/cloud"
	"github.com/notargets/rbfcloud/utils"
)

func addCloudFlags(cmd *cobra.Command, facets string) {
	cmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file of cloud parameters like:\n\t- Facets\n\t- SupportSize")
	cmd.Flags().StringP("outputFile", "o", "", "write the finished cloud to this YAML file")
	cmd.Flags().StringP("supportSize", "s", "", "neighbors per stencil, an integer or \"max\"")
	cmd.Flags().String("facets", facets, "comma separated facets in precedence order as Name=type,\ntype one of internal, dirichlet, neumann, robin")
}

// loadParameters reads the input file, then lets flags and the config file
// override it.
func loadParameters(cmd *cobra.Command, method string) (cp *InputParameters.CloudParameters, err error) {
	var (
		data []byte
	)
	if err = viper.BindPFlags(cmd.Flags()); err != nil {
		return
	}
	cp = &InputParameters.CloudParameters{}
	if fileName := viper.GetString("inputConditionsFile"); fileName != "" {
		if data, err = os.ReadFile(fileName); err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		if err = cp.Parse(data); err != nil {
			return nil, fmt.Errorf("parsing input file %s: %w", fileName, err)
		}
	}
	if cp.Method == "" {
		cp.Method = method
	}
	if cp.Method != method {
		return nil, fmt.Errorf("input file is for method %q, running %q", cp.Method, method)
	}
	if cp.SupportSize == 0 {
		cp.SupportSize = cloud.SupportMax
	}
	switch method {
	case InputParameters.MethodSquare:
		if viper.IsSet("nx") {
			cp.Nx = viper.GetInt("nx")
		}
		if viper.IsSet("ny") {
			cp.Ny = viper.GetInt("ny")
		}
		if viper.IsSet("seed") {
			seed := viper.GetUint64("seed")
			cp.Seed = &seed
		}
	case InputParameters.MethodGmsh:
		if viper.IsSet("meshFile") {
			cp.MeshFile = viper.GetString("meshFile")
		}
	}
	if viper.IsSet("supportSize") {
		if cp.SupportSize, err = cloud.ParseSupportSize(viper.GetString("supportSize")); err != nil {
			return nil, err
		}
	}
	if viper.IsSet("facets") || len(cp.Facets) == 0 {
		if facets := viper.GetString("facets"); facets != "" {
			if cp.Facets, err = parseFacets(strings.Split(facets, ",")); err != nil {
				return nil, err
			}
		}
	}
	return
}

// parseFacets reads Name=type pairs
func parseFacets(args []string) (specs []cloud.FacetSpec, err error) {
	for _, arg := range args {
		var (
			name, typ string
			found     bool
			bc        utils.BCType
		)
		if name, typ, found = strings.Cut(strings.TrimSpace(arg), "="); !found || name == "" {
			return nil, fmt.Errorf("facet %q is not of the form Name=type", arg)
		}
		if bc, err = utils.ParseBCName(typ); err != nil {
			return nil, fmt.Errorf("facet %q: %w", name, err)
		}
		specs = append(specs, cloud.FacetSpec{Name: name, Type: bc})
	}
	return
}

func runBuild(cmd *cobra.Command, method string) (err error) {
	var (
		cp *InputParameters.CloudParameters
		b  cloud.Builder
		c  *cloud.Cloud
	)
	if cp, err = loadParameters(cmd, method); err != nil {
		return
	}
	logger := newLogger()
	if viper.GetBool("verbose") {
		cp.Print()
	}
	if b, err = cp.Builder(logger); err != nil {
		return
	}
	build := func() (err error) {
		c, err = cloud.New(b)
		return
	}
	if dir := viper.GetString("profile"); dir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
	}
	if viper.GetBool("perf") {
		err = countInstructions(build, logger)
	} else {
		err = build()
	}
	if err != nil {
		return
	}
	logger.Debug("memory after build", "usage", utils.GetMemUsage())
	fmt.Fprintln(cmd.OutOrStdout(), c.Counts())
	if fileName := viper.GetString("outputFile"); fileName != "" {
		if err = writeCloud(c, fileName); err != nil {
			return
		}
		logger.Info("cloud written", "file", fileName)
	}
	return
}

func writeCloud(c *cloud.Cloud, fileName string) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(fileName); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err = c.WriteYAML(file); err != nil {
		return fmt.Errorf("writing %s: %w", fileName, err)
	}
	return
}
