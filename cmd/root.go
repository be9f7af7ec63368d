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

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/kfrantz/bssncosmo/internal/config"
	"github.com/kfrantz/bssncosmo/internal/driver"
	"github.com/kfrantz/bssncosmo/internal/output"
)

// rootCmd represents the base command, collapsed to the spec's single
// positional form: bssncosmo <config-file-path>.
var rootCmd = &cobra.Command{
	Use:   "bssncosmo <config-file-path>",
	Short: "BSSN cosmological evolution code",
	Long: `bssncosmo evolves Einstein's field equations via the BSSN conformal
decomposition on a uniform 3D grid, coupled to dust, cosmological-constant,
and scalar-field matter, for cosmological spacetime simulations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cpuprofile, _ := cmd.Flags().GetBool("cpuprofile"); cpuprofile {
			defer profile.Start(profile.CPUProfile).Stop()
		}
		return runSimulation(args[0])
	},
}

func init() {
	rootCmd.Flags().Bool("cpuprofile", false, "write a CPU profile of the run to a file in a new temporary directory")
}

// Execute runs the root command, printing any returned error to stderr
// and exiting the process with status 1. Errors raised while the
// simulation runs are written to the run log first (see runSimulation);
// errors from loading the config or constructing the driver come before
// the log is open and go to stderr only.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSimulation(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	d, err := driver.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing simulation: %w", err)
	}
	defer d.Close()

	if err := output.CopyConfig(cfg.OutputDir, configPath); err != nil {
		d.Logger.Printf("output: copying config file: %v", err)
	}

	if err := d.Run(); err != nil {
		d.Logger.Printf("fatal: %v", err)
		return fmt.Errorf("running simulation: %w", err)
	}
	return nil
}
