package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// presetCmd represents the preset command group
var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved sound mixes",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE:  runPresetList,
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name> <sound[=volume]...>",
	Short: "Save a mix as a named preset",
	Long: `Save a mix as a named preset. Saving to an existing name replaces it.

  murmur preset save rainy-night rain=0.5 thunder`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPresetSave,
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetDelete,
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetDeleteCmd)
}

func runPresetList(cmd *cobra.Command, args []string) error {
	store, err := openPresetStore()
	if err != nil {
		return err
	}
	defer store.Close()

	presets, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if len(presets) == 0 {
		fmt.Println("No presets saved.")
		return nil
	}

	for _, p := range presets {
		ids := make([]string, 0, len(p.Sounds))
		for id := range p.Sounds {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Printf("%s:", p.Name)
		for _, id := range ids {
			fmt.Printf(" %s=%.2f", id, p.Sounds[id])
		}
		fmt.Println()
	}
	return nil
}

func runPresetSave(cmd *cobra.Command, args []string) error {
	name := args[0]
	volumes, err := parseSoundArgs(args[1:])
	if err != nil {
		return err
	}
	for id, v := range volumes {
		if v < 0 || v > 1 {
			return fmt.Errorf("volume for %q must be within [0, 1], got %v", id, v)
		}
	}

	store, err := openPresetStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Save(context.Background(), name, volumes); err != nil {
		return err
	}

	fmt.Printf("Saved preset %q with %d sounds.\n", name, len(volumes))
	return nil
}

func runPresetDelete(cmd *cobra.Command, args []string) error {
	store, err := openPresetStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted preset %q.\n", args[0])
	return nil
}
