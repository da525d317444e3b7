package config

import (
	"github.com/francois-poidevin/sondetracker/internal/app/sinkers/db"
	"github.com/francois-poidevin/sondetracker/internal/app/sinkers/file"
)

// Configuration contains sondetracker settings
type Configuration struct {
	Log struct {
		Level string `toml:"level" default:"info" comment:"Log level: trace, debug, info, warn, error, fatal and panic"`
	} `toml:"Log" comment:"###############################\n Logs Settings \n##############################"`

	Sondetracker struct {
		Source        string             `toml:"source" default:"." comment:"directory of .log files, or a comma separated list of .log files"`
		Refresh       int                `toml:"refresh" default:"1" comment:"polling interval (sec)"`
		Sortsamples   bool               `toml:"sortsamples" default:"false" comment:"re-sort samples by timestamp instead of keeping file order"`
		Verifycontent bool               `toml:"verifycontent" default:"false" comment:"fingerprint every file on every cycle, even when its modification time is unchanged"`
		Readtimeout   int                `toml:"readtimeout" default:"0" comment:"per file read timeout (sec), 0 for none"`
		Sinkertype    string             `toml:"sinkertype" default:"STDOUT" comment:"the sinker Type use (STDOUT|FILE|DB)"`
		File          file.Configuration `toml:"file" comment:"###############################\n file sinker configuration \n##############################"`
		DB            db.Configuration   `toml:"db" comment:"###############################\n db sinker configuration \n##############################"`
		Http          struct {
			Addr string `toml:"addr" default:":8080" comment:"dashboard API listen address"`
		} `toml:"http" comment:"###############################\n dashboard API \n##############################"`
	} `toml:"Sondetracker" comment:"###############################\n Sondetracker Settings \n##############################"`
}
