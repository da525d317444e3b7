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
	"io"
	"os"

	"github.com/francois-poidevin/sondetracker/internal"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var exportOutput string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every flight of a source as CSV",
	Long: `Read the source once and write one CSV row per sample of every flight,
	to stdout or to the file given with --output.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlag(cmd, "sondetracker.source", "source")
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Initialize config
		initConfig()
		// keep stdout for the CSV
		log.Out = os.Stderr

		fs := afero.NewOsFs()
		var w io.Writer = os.Stdout
		if exportOutput != "" && exportOutput != "-" {
			path, errPath := homedir.Expand(exportOutput)
			if errPath != nil {
				log.WithContext(ctx).Fatal(errPath)
			}
			f, errCreate := fs.Create(path)
			if errCreate != nil {
				log.WithContext(ctx).WithFields(logrus.Fields{
					"Error": errCreate,
				}).Fatal("Unable to create export file")
			}
			defer f.Close()
			w = f
		}

		if errExport := internal.Export(ctx, log, *conf, fs, w); errExport != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errExport,
			}).Error("Error in Export processing")
			os.Exit(1)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "CSV file, - for stdout")
	exportCmd.Flags().String("source", ".", "directory of .log files, or a comma separated list of .log files")
}
