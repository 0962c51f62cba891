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
	"github.com/charmbracelet/log"
	perf "github.com/hodgesds/perf-utils"
)

// countInstructions runs f under a hardware instruction counter. Without
// access to perf events the build still runs, uncounted.
func countInstructions(f func() error, logger *log.Logger) (err error) {
	var (
		ran  bool
		ferr error
		pv   *perf.ProfileValue
	)
	pv, err = perf.CPUInstructions(func() error {
		ran = true
		ferr = f()
		return ferr
	})
	switch {
	case !ran:
		logger.Warn("perf events unavailable, building without counting", "err", err)
		return f()
	case ferr != nil:
		return ferr
	case err != nil:
		logger.Warn("reading instruction counter", "err", err)
		return nil
	}
	logger.Info("build cost", "instructions", pv.Value, "enabled_ns", pv.TimeEnabled, "running_ns", pv.TimeRunning)
	return
}
