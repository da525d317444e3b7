package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/export"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// FileSinker rewrites a CSV export of the active flights on every change.
type FileSinker struct {
	Log    *logrus.Logger
	fs     afero.Fs
	output string
}

func New(log *logrus.Logger, fs afero.Fs) app.Sinker {
	//init the logger here
	return &FileSinker{Log: log, fs: fs}
}

func (s *FileSinker) Init(ctx context.Context, params interface{}) error {
	parameters, ok := params.(Configuration)
	if !ok {
		return errors.New("file sinker needs a file.Configuration")
	}
	if parameters.Output == "" {
		return errors.New("file sinker needs an output file name")
	}

	output, err := homedir.Expand(parameters.Output)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := s.fs.MkdirAll(dir, os.ModePerm); err != nil {
			s.Log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": err,
			}).Error("Unable to create output folder")
			return err
		}
	}
	s.output = output

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"output": output,
	}).Info("File sinker ready")
	return nil
}

// Sink writes to a temporary file then renames it over the export, so
// readers never see a partial file.
func (s *FileSinker) Sink(ctx context.Context, t time.Time, flights app.FlightReader) error {
	if s.output == "" {
		return errors.New("No output file for storing data")
	}

	active := flights.ActiveFlights()
	tmp := s.output + ".tmp"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if err := export.WriteCSV(f, active); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, s.output); err != nil {
		return err
	}

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"number of Flights": len(active),
		"output":            s.output,
		"at":                t,
	}).Debug("CSV export written")
	return nil
}
