package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/area/internal/config"
	"github.com/vango-dev/area/pkg/manifest"
)

func routesCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Validate and list the route manifest",
		Long: `Validate the route manifest and print the routes of every area.

Examples:
  area routes
  area routes --file=app/routes.yaml
  area routes --format=yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				cfg, err := load()
				if err != nil {
					return err
				}
				file = cfg.ManifestPath()
			}

			m, err := manifest.Load(file)
			if err != nil {
				return err
			}

			switch format {
			case "yaml":
				data, err := m.Marshal()
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			case "table":
				printRoutes(m)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want table or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest file (default from area.yaml)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or yaml")

	return cmd
}

func printRoutes(m *manifest.Manifest) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AREA\tWHEN\tSOURCE\tTARGET\tEXACT\tGUARD")
	for _, a := range m.Areas {
		for _, rs := range a.Routes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", a.Name, rs.When, rs.Source(), target(rs), rs.Exact, rs.Guard)
		}
		if a.Default != "" {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.Name, "(default)", "tag", a.Default, "-", "")
		}
	}
	w.Flush()
	success("%d areas", len(m.Areas))
}

func target(rs manifest.RouteSpec) string {
	switch rs.Source() {
	case "tag":
		return rs.Tag
	case "lazy":
		return rs.Lazy
	case "s3":
		return rs.S3
	case "template":
		return fmt.Sprintf("%d bytes", len(rs.Template))
	default:
		return ""
	}
}
