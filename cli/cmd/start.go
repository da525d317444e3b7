package cmd

/*
Copyright © 2019 NAME HERE <EMAIL ADDRESS>

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

import (
	"context"
	"os"

	"github.com/francois-poidevin/sondetracker/internal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Allow to start tracking of all sonde flights of a source",
	Long: `Poll a directory (or a list) of .log telemetry files and publish every
	flight change to the configured sinker, until SIGINT or SIGTERM.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlag(cmd, "sondetracker.source", "source")
		bindFlag(cmd, "sondetracker.refresh", "refresh")
		bindFlag(cmd, "sondetracker.file.output", "output")
		bindFlag(cmd, "sondetracker.sinkertype", "sinkerType")
		bindFlag(cmd, "sondetracker.verifycontent", "verifyContent")
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Initialize config
		initConfig()

		errExec := internal.Execute(ctx, log, *conf)
		if errExec != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errExec,
			}).Error("Error in Execute processing")
			os.Exit(1)
		}
	},
}

func init() {
	startCmd.Flags().String("source", ".", "directory of .log files, or a comma separated list of .log files")
	startCmd.Flags().Int("refresh", 1, "polling interval (sec)")
	startCmd.Flags().String("output", "sondes.csv", "set the CSV output file name of the FILE sinker")
	startCmd.Flags().String("sinkerType", "STDOUT", "set the sinker type (STDOUT|FILE|DB)")
	startCmd.Flags().Bool("verifyContent", false, "fingerprint files on every cycle")
}
