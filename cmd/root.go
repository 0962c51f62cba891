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

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rbfcloud",
	Short: "Builds RBF-FD discretization clouds",
	Long: `Builds the node cloud consumed by a meshfree RBF-FD solver: nodes tagged
internal, dirichlet, neumann or robin, their support stencils and outward
normals, numbered in contiguous boundary blocks.

The cloud comes from a structured lattice on the unit square or from a
Gmsh 4.0 ASCII mesh.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rbfcloud.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log construction stages")
	rootCmd.PersistentFlags().String("profile", "", "write a CPU profile of the build into this directory")
	rootCmd.PersistentFlags().Bool("perf", false, "count CPU instructions spent building the cloud (linux)")
	for _, name := range []string{"verbose", "profile", "perf"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".rbfcloud")
	}
	viper.SetEnvPrefix("RBFCLOUD")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if viper.GetBool("verbose") {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "rbfcloud",
	})
}
