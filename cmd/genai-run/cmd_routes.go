package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janhq/genai-proxy/internal/app"
	"github.com/janhq/genai-proxy/internal/domain/job"
	"github.com/janhq/genai-proxy/internal/domain/route"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Inspect the route table",
}

var routesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured job types and their models",
	RunE:  runRoutesList,
}

var routesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a routes file without starting anything",
	RunE:  runRoutesValidate,
}

func init() {
	routesCmd.AddCommand(routesListCmd)
	routesCmd.AddCommand(routesValidateCmd)

	routesValidateCmd.Flags().StringP("file", "f", "", "Routes file to validate")
	_ = routesValidateCmd.MarkFlagRequired("file")
}

func runRoutesList(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	registry, err := app.NewRouteRegistry(cfg, log)
	if err != nil {
		return err
	}
	printRoutes(cmd, registry.Routes())
	return nil
}

func runRoutesValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	routes, err := route.LoadFile(path)
	if err != nil {
		return err
	}
	registry, err := route.NewRegistry(routes)
	if err != nil {
		return err
	}
	if err := job.CheckRoutes(registry.Routes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d routes OK\n", path, len(registry.Routes()))
	return nil
}

func printRoutes(cmd *cobra.Command, routes []route.Route) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB TYPE\tKIND\tMODEL\tPINNED")
	for _, r := range routes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", r.Key, r.Kind, r.Reference.String(), r.Reference.Pinned())
	}
	w.Flush()
}
