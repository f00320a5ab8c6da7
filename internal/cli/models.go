package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/project-sage/sage/internal/models"
	"github.com/project-sage/sage/internal/ui"
)

var modelsRecommend bool

// modelsCmd represents the models command group
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List and switch LLM providers and models",
	Long: `List known providers and models, switch the chat model, or get a
recommendation per use case with --recommend.`,
	RunE: runModels,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Long: `List every known provider with its models and whether it can be used
right now (credential present, server reachable).`,
	RunE: runModelsList,
}

var modelsSwitchCmd = &cobra.Command{
	Use:   "switch <provider> [model]",
	Short: "Switch the chat provider and model",
	Long: `Switch the provider and model used to answer questions. The change is
validated first and saved to the project configuration.

Switching the chat model never requires re-indexing; only the indexing
provider is tied to the stored embeddings.

Examples:
  sage models switch anthropic
  sage models switch openai gpt-4o`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runModelsSwitch,
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsRecommend, "recommend", false, "recommend the best usable model per use case (speed, quality, privacy)")
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsSwitchCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	if !modelsRecommend {
		return cmd.Help()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mgr := models.NewManager(cfg)
	recs := mgr.Recommend()

	fmt.Println(ui.Header.Render("Recommendations"))
	fmt.Println()

	for _, useCase := range models.UseCases() {
		ref, ok := recs[useCase]
		if !ok {
			fmt.Printf("  %-8s %s\n", useCase, ui.Dim.Render("(no usable provider)"))
			continue
		}
		fmt.Printf("  %-8s %s (%s)\n", useCase, ui.Bold.Render(ref.Model), ref.Provider)
	}

	if len(recs) == 0 {
		fmt.Println()
		fmt.Println(ui.Warning.Render("No provider is usable right now. Configure an API key or start Ollama."))
		return nil
	}

	fmt.Println()
	fmt.Println(ui.Dim.Render("Apply one with 'sage models switch <provider> <model>'."))
	return nil
}

func runModelsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mgr := models.NewManager(cfg)
	currentProvider, currentModel := mgr.Current()

	fmt.Println(ui.Header.Render("Providers"))
	fmt.Println()

	for _, status := range mgr.ConfiguredProviders() {
		cap, _ := models.Lookup(status.Name)

		availability := ui.Success.Render("available")
		if !status.Available {
			availability = ui.Warning.Render(status.Reason)
		}
		fmt.Printf("%s  %s\n", ui.Bold.Render(status.Name), availability)

		for _, m := range cap.Models {
			marker := "  "
			if status.Name == currentProvider && m == currentModel {
				marker = ui.Highlight.Render("* ")
			} else if m == cap.Recommended {
				marker = ui.Dim.Render("+ ")
			}
			fmt.Printf("  %s%-26s %s\n", marker, m, ui.Dim.Render(cap.Descriptions[m]))
		}
		if cap.AllowCustomModels {
			fmt.Printf("    %s\n", ui.Dim.Render("(any locally pulled model also works)"))
		}
		fmt.Println()
	}

	fmt.Printf("Current: %s (%s)\n", currentProvider, currentModel)
	fmt.Println(ui.Dim.Render("* current  + recommended"))
	return nil
}

func runModelsSwitch(cmd *cobra.Command, args []string) error {
	provider := args[0]
	model := ""
	if len(args) > 1 {
		model = args[1]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mgr := models.NewManager(cfg)
	if err := mgr.SwitchModel(provider, model); err != nil {
		return err
	}

	// The manager validated and filled in the recommended model if needed.
	provider, model = mgr.Current()
	cfg.ChatProvider = provider
	cfg.ChatModel = model
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Println(ui.Success.Render(fmt.Sprintf("Now answering with %s (%s).", provider, model)))
	fmt.Println(ui.Dim.Render("The document index is unchanged; no re-indexing needed."))
	return nil
}
