package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ConceptCodes/deep-sql-research/internal/export"
	"github.com/ConceptCodes/deep-sql-research/internal/render"
	"github.com/ConceptCodes/deep-sql-research/internal/ui"
	"github.com/ConceptCodes/deep-sql-research/internal/util"
)

var previewCmd = &cobra.Command{
	Use:   "preview <template-file>",
	Short: "Print the frame plan a renderer would play for a template",
	Long: `Load a template (.json or .yaml), validate it and print the frame plan a
renderer would play: scene windows, exit transitions and card entrances.

With --frame the plan is sampled at that frame instead.`,
	Example: `  deep-sql-research preview template.json
  deep-sql-research preview template.yaml --scene intro
  deep-sql-research preview template.json --frame 75`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().Int("fps", 0, "frames per second (overrides render.fps)")
	previewCmd.Flags().String("scene", "", "only show this scene (ID or unique prefix)")
	previewCmd.Flags().Int("frame", 0, "sample the plan at this frame")
	previewCmd.Flags().Bool("json", false, "print the plan as JSON")

	_ = viper.BindPFlag("render.fps", previewCmd.Flags().Lookup("fps"))
}

func runPreview(cmd *cobra.Command, args []string) error {
	tmpl, err := export.Load(appFs, args[0])
	if err != nil {
		return err
	}
	plan, err := render.FramePlan(tmpl, viper.GetInt("render.fps"))
	if err != nil {
		return err
	}

	if sceneFlag, _ := cmd.Flags().GetString("scene"); sceneFlag != "" {
		if err := filterScene(plan, sceneFlag); err != nil {
			return err
		}
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("frame") {
		n, _ := cmd.Flags().GetInt("frame")
		frame, ok := plan.At(n)
		if !ok {
			return fmt.Errorf("frame %d is outside the plan (0-%d)", n, plan.TotalFrames-1)
		}
		if asJSON {
			return writeJSON(out, frame)
		}
		fmt.Fprint(out, ui.RenderFrame(frame))
		return nil
	}

	if asJSON {
		return writeJSON(out, plan)
	}
	fmt.Fprint(out, ui.RenderPlan(plan))
	return nil
}

// filterScene narrows the plan to the scene matching id. Frame numbers stay
// absolute.
func filterScene(plan *render.Plan, id string) error {
	known := make([]string, len(plan.Scenes))
	for i, sp := range plan.Scenes {
		known[i] = sp.SceneID
	}
	sceneID, err := util.ResolveID(known, id, "scene")
	if err != nil {
		return err
	}
	for _, sp := range plan.Scenes {
		if sp.SceneID == sceneID {
			plan.Scenes = []render.ScenePlan{sp}
			return nil
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
