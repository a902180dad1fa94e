package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fleetdocs/internal/config"
	"fleetdocs/internal/fleet"
	"fleetdocs/pkg/models"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Inspect and seed the fleet registry",
}

var fleetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered fleet vehicles",
	RunE:  runFleetList,
}

var fleetAddCmd = &cobra.Command{
	Use:   "add [plate]",
	Short: "Register a vehicle by plate number",
	Args:  cobra.ExactArgs(1),
	RunE:  runFleetAdd,
}

func init() {
	rootCmd.AddCommand(fleetCmd)
	fleetCmd.AddCommand(fleetListCmd)
	fleetCmd.AddCommand(fleetAddCmd)

	fleetListCmd.Flags().Bool("json", false, "Output as JSON")
	fleetAddCmd.Flags().String("make", "", "Manufacturer")
	fleetAddCmd.Flags().String("model", "", "Model")
	fleetAddCmd.Flags().Int("year", 0, "Model year")
}

func fleetRegistry(ctx context.Context) (*fleet.Registry, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	client, err := fleet.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = client.Disconnect(context.Background()) }
	return fleet.NewRegistry(client.Database(cfg.MongoDatabase)), cleanup, nil
}

func runFleetList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	registry, cleanup, err := fleetRegistry(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	vehicles, err := registry.ListVehicles(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(vehicles)
	}
	for _, v := range vehicles {
		fmt.Printf("%s  %-10s  %s %s %d\n", v.ID, v.Plate, v.Make, v.Model, v.Year)
	}
	fmt.Printf("%d vehicles\n", len(vehicles))
	return nil
}

func runFleetAdd(cmd *cobra.Command, args []string) error {
	mk, _ := cmd.Flags().GetString("make")
	model, _ := cmd.Flags().GetString("model")
	year, _ := cmd.Flags().GetInt("year")

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	registry, cleanup, err := fleetRegistry(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	v := models.Vehicle{
		ID:    uuid.NewString(),
		Plate: args[0],
		Make:  mk,
		Model: model,
		Year:  year,
	}
	if err := registry.InsertVehicle(ctx, v); err != nil {
		return err
	}
	fmt.Printf("registered %s (%s)\n", v.Plate, v.ID)
	return nil
}
