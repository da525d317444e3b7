package file

// Configuration settings for file sinking
type Configuration struct {
	Output string `toml:"output" default:"sondes.csv" comment:"CSV export file name, rewritten on every change"`
}
