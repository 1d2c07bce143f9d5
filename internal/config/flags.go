package config

import "flag"

// Flags holds the config flags registered on one FlagSet.
type Flags struct {
	fs *flag.FlagSet

	config       *string
	debug        *bool
	logFile      *string
	positionBits *int
	normalBits   *int
	texCoordBits *int
	level        *int
	pointCloud   *bool
	jobs         *int
	noAtomic     *bool
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:           fs,
		config:       fs.String("config", "", "Path to config file (.yaml or .toml)"),
		debug:        fs.Bool("debug", false, "Enable debug logging"),
		logFile:      fs.String("log-file", "", "Write JSON logs to this file"),
		positionBits: fs.Int("qp", 0, "Position quantization bits (0 disables)"),
		normalBits:   fs.Int("qn", 0, "Normal quantization bits (0 disables)"),
		texCoordBits: fs.Int("qt", 0, "Texture coordinate quantization bits (0 disables)"),
		level:        fs.Int("cl", 0, "Compression level 0-10"),
		pointCloud:   fs.Bool("point-cloud", false, "Encode as a point cloud"),
		jobs:         fs.Int("j", 0, "Parallel conversions"),
		noAtomic:     fs.Bool("no-atomic", false, "Write output files in place"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply copies flags that were set on the command line into cfg. Zero is a
// meaningful quantization depth, so only visited flags count.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if *f.debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.LogFile = *f.logFile
		case "qp":
			cfg.Encoder.PositionBits = *f.positionBits
		case "qn":
			cfg.Encoder.NormalBits = *f.normalBits
		case "qt":
			cfg.Encoder.TexCoordBits = *f.texCoordBits
		case "cl":
			cfg.Encoder.CompressionLevel = *f.level
		case "point-cloud":
			cfg.Encoder.PointCloud = *f.pointCloud
		case "j":
			if *f.jobs > 0 {
				cfg.Output.Jobs = *f.jobs
			}
		case "no-atomic":
			cfg.Output.Atomic = !*f.noAtomic
		}
	})
}
