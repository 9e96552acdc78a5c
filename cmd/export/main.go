package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elianafuentes/Dash/internal/config"
	"github.com/elianafuentes/Dash/internal/dataset"
	"github.com/elianafuentes/Dash/internal/geo"
	"github.com/elianafuentes/Dash/internal/logger"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string `short:"i" long:"in" description:"Input CSV file path. Reads from stdin if empty"`
	Output string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Config string `short:"c" long:"config" env:"CONFIG_FILE" description:"Configuration file for column mapping and encoding"`
	All    bool   `short:"A" long:"all" description:"Convert every record instead of the latest published date only"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := config.Default()
	if opts.Config != "" {
		var err error
		cfg, err = config.Load(opts.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
	}

	// Read Input
	var frame *dataset.Frame
	var err error

	if opts.Input != "" {
		f, openErr := os.Open(opts.Input)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", openErr)
			os.Exit(1)
		}
		frame, _, err = dataset.Read(f, cfg.DatasetOptions())
		_ = f.Close()
	} else {
		frame, _, err = dataset.Read(os.Stdin, cfg.DatasetOptions())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dataset: %v\n", err)
		os.Exit(1)
	}

	if !opts.All {
		if latest, ok := frame.LatestDate(); ok {
			frame = frame.FilterDate(latest)
		}
	}

	props := []string{
		cfg.Columns.Municipality,
		cfg.Columns.Department,
		cfg.Columns.Price,
		cfg.Columns.Date,
	}

	fc, stats, err := geo.Convert(frame, cfg.Columns.Latitude, cfg.Columns.Longitude, props)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting records: %v\n", err)
		os.Exit(1)
	}

	// marshal
	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(fc)
	} else {
		outputData, err = json.MarshalIndent(fc, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d features to %s (format: %s, dropped: %d)\n",
			stats.Features, opts.Output, opts.Format, stats.Dropped())
	} else {
		fmt.Println(string(outputData))
	}
}
