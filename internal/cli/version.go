package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// BuildInfo holds version and build information.
type BuildInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// GetBuildInfo returns the current build information.
func GetBuildInfo(version string) BuildInfo {
	info := BuildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Commit = setting.Value[:min(7, len(setting.Value))]
			case "vcs.time":
				info.BuildTime = setting.Value
			}
		}
	}

	return info
}

func newVersionCmd(version string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := GetBuildInfo(version)
			w := cmd.OutOrStdout()

			if short {
				_, err := fmt.Fprintln(w, info.Version)
				return err
			}

			fmt.Fprintf(w, "kaggle %s\n", info.Version)
			fmt.Fprintf(w, "  Go:       %s\n", info.GoVersion)
			fmt.Fprintf(w, "  OS/Arch:  %s/%s\n", info.OS, info.Arch)
			fmt.Fprintf(w, "  Commit:   %s\n", info.Commit)
			_, err := fmt.Fprintf(w, "  Built:    %s\n", info.BuildTime)
			return err
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
