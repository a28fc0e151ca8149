package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/spf13/cobra"
	yml "gopkg.in/yaml.v2"

	"github.com/chuhuiyu/mxstim/experiment"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	cfgFile = "stimctl.yml"
	k       = koanf.New(".")
)

// loadConfig overlays the config file, if present, on the defaults.
func loadConfig() (experiment.Config, error) {
	cfg := experiment.DefaultConfig()
	k.Load(structs.Provider(cfg, "koanf"), nil)
	if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			return cfg, fmt.Errorf("error loading config: %w", err)
		}
	}
	err := k.Unmarshal("", &cfg)
	return cfg, err
}

func main() {
	root := &cobra.Command{
		Use:   "stimctl",
		Short: "stimctl compiles and delivers stimulation sequences to MEA hardware",
		Long: `stimctl communicates with a MaxWell-style MEA server, compiles
stimulation pulse trains into hardware instruction sequences, and
delivers them: simultaneously to all stimulation units, sequentially
per unit, or as spatial patterns.

Without a configuration file (stimctl.yml), the reference protocol
defaults are used.  Run "stimctl mkconf" to write them out.`,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", cfgFile, "path to the yaml config file")

	root.AddCommand(
		evokedCmd(),
		recurrentCmd(),
		spatialCmd(),
		serveCmd(),
		mkconfCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func mkconfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkconf",
		Short: "print the default configuration as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return yml.NewEncoder(os.Stdout).Encode(experiment.DefaultConfig())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("stimctl version", Version)
		},
	}
}
