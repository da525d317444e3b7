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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/francois-poidevin/sondetracker/internal"
	"github.com/francois-poidevin/sondetracker/internal/app/service"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// startHttpCmd represents the startHttp command
// see https://dev.to/moficodes/build-your-first-rest-api-with-go-2gcj
var startHttpCmd = &cobra.Command{
	Use:   "startHttp",
	Short: "Allow to start REST API service around tracking of sonde flights",
	Long: `The HTTP Rest API service start with config parameters. The configured
	source is polled right away when it exists; /api/v1/start selects another one.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlag(cmd, "sondetracker.http.addr", "addr")
		bindFlag(cmd, "sondetracker.source", "source")
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Initialize config
		initConfig()

		fs := afero.NewOsFs()
		engine, errEngine := internal.NewEngine(ctx, log, *conf, fs, clockwork.NewRealClock())
		if errEngine != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errEngine,
			}).Fatal("Unable to build the polling engine")
		}
		defer engine.Scheduler.Stop()

		if src, errSrc := internal.OpenSource(fs, conf.Sondetracker.Source); errSrc != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errSrc,
			}).Warn("Configured source unavailable, waiting for /api/v1/start")
		} else if errStart := engine.Scheduler.Start(ctx, src); errStart != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errStart,
			}).Warn("Unable to poll configured source, waiting for /api/v1/start")
		}

		svc := service.New(ctx, log, fs, engine.Store, engine.Scheduler)
		svc.Metrics = promhttp.HandlerFor(engine.Registry, promhttp.HandlerOpts{})
		svc.Notifier = engine.Notifier

		srv := &http.Server{
			Addr:              conf.Sondetracker.Http.Addr,
			Handler:           svc.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		log.WithContext(ctx).WithFields(logrus.Fields{
			"addr": srv.Addr,
		}).Info("Dashboard API listening")

		//Start http server here
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	},
}

func init() {
	startHttpCmd.Flags().String("addr", ":8080", "listen address of the dashboard API")
	startHttpCmd.Flags().String("source", ".", "source polled at startup")
}
