package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamiza/kamiza/internal/config"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and the effective configuration (secrets redacted) as YAML.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeEnvInfo(cmd.OutOrStdout(), currentConfig())
	},
}

func writeEnvInfo(w io.Writer, cfg *config.Config) error {
	version := crucible.GetVersion()
	lines := []string{
		fmt.Sprintf("%s %s", config.AppName, versionInfo.Version),
		"Commit:   " + versionInfo.Commit,
		"Built:    " + versionInfo.BuildDate,
		"Go:       " + runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH,
		"Gofulmen: " + version.Gofulmen,
		"Crucible: " + version.Crucible,
		"Config:   " + configSource(),
	}
	if _, err := fmt.Fprint(w, ascii.DrawBox(strings.Join(lines, "\n"), 0)); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = fmt.Fprintf(w, "\n%s", data)
	return err
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
