package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/careersync/internal/config"
	"github.com/kalambet/careersync/internal/extract"
	"github.com/kalambet/careersync/internal/taxonomy"
)

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <resume.pdf|resume.docx>",
	Short: "Upload a resume and extract skills into the profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Uploading %s...", args[0])
		resp, err := client.postFile(cmd.Context(), "/upload_resume", "resume", args[0])
		if err != nil {
			return err
		}

		var result struct {
			ExtractedSkills []struct {
				Name       string  `json:"name"`
				Category   string  `json:"category"`
				Confidence float64 `json:"confidence"`
			} `json:"extracted_skills"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.ExtractedSkills) == 0 {
			printWarning("No new skills found in the resume")
			return nil
		}
		printSuccess("Extracted %d skills", len(result.ExtractedSkills))
		for _, s := range result.ExtractedSkills {
			category := s.Category
			if category == "" {
				category = "other"
			}
			fmt.Printf("  %s  %s (%.0f%%)\n", colorize(colorCyan, category), s.Name, s.Confidence*100)
		}
		return nil
	},
}

// --- extract ---

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract skills from text without touching the profile",
	Long: `Extract skills from text without touching the profile.

Reads plain text from the given file, or from stdin when no file is
given. Runs the extractor in-process; the server does not need to be
running.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		tax, err := taxonomy.Default()
		if err != nil {
			return fmt.Errorf("loading skill taxonomy: %w", err)
		}

		skills := extract.New(tax).Extract(string(data), nil)
		if len(skills) == 0 {
			fmt.Println("No skills found.")
			return nil
		}
		for _, s := range skills {
			category := s.Category
			if category == "" {
				category = "other"
			}
			fmt.Printf("%s  %s (%.0f%%)\n", colorize(colorCyan, category), s.Name, s.Confidence*100)
		}
		return nil
	},
}

// --- match ---

var matchCmd = &cobra.Command{
	Use:   "match [skill ...]",
	Short: "Match skills against the occupation catalog",
	Long: `Match skills against the occupation catalog.

With no arguments the stored profile skills are used.

Examples:
  careersync match Python SQL "Machine Learning"
  careersync match --preference "data science"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		preference, _ := cmd.Flags().GetString("preference")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		skills := args
		if len(skills) == 0 {
			skills, err = profileSkillNames(cmd.Context(), client)
			if err != nil {
				return err
			}
			if len(skills) == 0 {
				return fmt.Errorf("no skills given and the profile is empty — run 'careersync upload' or pass skills")
			}
		}

		body := map[string]any{"skills": skills}
		if preference != "" {
			body["job_preference"] = preference
		}
		resp, err := client.post(cmd.Context(), "/match_jobs", body)
		if err != nil {
			return err
		}

		var result struct {
			JobMatches []jobMatch `json:"job_matches"`
			SessionID  string     `json:"session_id"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.JobMatches) == 0 {
			fmt.Println("No good matches found. Add more skills and try again.")
			return nil
		}
		for i, m := range result.JobMatches {
			printMatch(i+1, m)
		}
		printStatus("Session", "%s", result.SessionID)
		return nil
	},
}

type jobMatch struct {
	Occupation struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		SalaryRange string `json:"salary_range"`
		GrowthRate  string `json:"growth_rate"`
	} `json:"occupation"`
	Similarity    float64  `json:"similarity"`
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	Qualifies     bool     `json:"qualifies"`
}

func printMatch(rank int, m jobMatch) {
	marker := " "
	if m.Qualifies {
		marker = colorize(colorGreen, "✓")
	}
	fmt.Printf("\n%s %s %s\n", marker,
		colorize(colorBold, fmt.Sprintf("%d. %s", rank, m.Occupation.Title)),
		colorize(colorCyan, m.Occupation.ID))
	fmt.Printf("   score %.1f, similarity %.1f%%\n", m.Score, m.Similarity)
	if m.Occupation.SalaryRange != "" {
		fmt.Printf("   %s, growth %s\n", m.Occupation.SalaryRange, m.Occupation.GrowthRate)
	}
	if len(m.MatchedSkills) > 0 {
		fmt.Printf("   matched: %s\n", strings.Join(m.MatchedSkills, ", "))
	}
}

func init() {
	matchCmd.Flags().String("preference", "", "free-text job preference stored with the session")
}

// --- gap ---

var gapCmd = &cobra.Command{
	Use:   "gap <occupation-id> [skill ...]",
	Short: "Show the skill gap for one occupation, with course recommendations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		skills := args[1:]
		if len(skills) == 0 {
			skills, err = profileSkillNames(cmd.Context(), client)
			if err != nil {
				return err
			}
		}
		if len(skills) == 0 {
			return fmt.Errorf("no skills given and the profile is empty")
		}

		body := map[string]any{"job_id": args[0], "skills": skills}
		resp, err := client.post(cmd.Context(), "/get_skill_gap", body)
		if err != nil {
			return err
		}

		var result struct {
			SkillGap struct {
				Occupation struct {
					Title string `json:"title"`
				} `json:"occupation"`
				Score         float64  `json:"score"`
				MatchedSkills []string `json:"matched_skills"`
				MissingSkills struct {
					Skills           []string `json:"skills"`
					Abilities        []string `json:"abilities"`
					Knowledge        []string `json:"knowledge"`
					TechnologySkills []string `json:"technology_skills"`
				} `json:"missing_skills"`
			} `json:"skill_gap"`
			RecommendedCourses []struct {
				Title    string `json:"title"`
				Provider string `json:"provider"`
				Duration string `json:"duration"`
				Price    string `json:"price"`
				URL      string `json:"url"`
			} `json:"recommended_courses"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		gap := result.SkillGap
		fmt.Printf("%s (score %.1f)\n", colorize(colorBold, gap.Occupation.Title), gap.Score)
		if len(gap.MatchedSkills) > 0 {
			fmt.Printf("\n%s %s\n", colorize(colorGreen, "Have:"), strings.Join(gap.MatchedSkills, ", "))
		}
		printGapList("Missing skills", gap.MissingSkills.Skills)
		printGapList("Missing technologies", gap.MissingSkills.TechnologySkills)
		printGapList("Missing abilities", gap.MissingSkills.Abilities)
		printGapList("Missing knowledge", gap.MissingSkills.Knowledge)

		if len(result.RecommendedCourses) > 0 {
			fmt.Printf("\n%s\n", colorize(colorBold, "Recommended courses"))
			for _, c := range result.RecommendedCourses {
				fmt.Printf("  %s (%s, %s, %s)\n    %s\n", c.Title, c.Provider, c.Duration, c.Price, colorize(colorCyan, c.URL))
			}
		}
		return nil
	},
}

func printGapList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s %s\n", colorize(colorYellow, label+":"), strings.Join(items, ", "))
}

// --- suggest ---

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Autocomplete canonical skill names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/get_suggestions", map[string]any{"query": args[0]})
		if err != nil {
			return err
		}

		var result struct {
			Suggestions []string `json:"suggestions"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Suggestions) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}
		for _, s := range result.Suggestions {
			fmt.Println(s)
		}
		return nil
	},
}

// --- sessions ---

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved match sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent match sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/app/sessions?limit=%d", limit))
		if err != nil {
			return err
		}

		var sessions []struct {
			ID            string `json:"id"`
			CreatedAt     string `json:"created_at"`
			JobPreference string `json:"job_preference"`
		}
		if err := decodeJSON(resp, &sessions); err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}
		for _, s := range sessions {
			pref := s.JobPreference
			if pref == "" {
				pref = "-"
			}
			fmt.Printf("%s  %s  %s\n", colorize(colorCyan, s.ID[:8]), s.CreatedAt, pref)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/app/sessions/"+args[0])
		if err != nil {
			return err
		}

		var session any
		if err := decodeJSON(resp, &session); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(session)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/app/sessions/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted session %s", args[0])
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().Int("limit", 20, "maximum number of sessions to list")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the skill profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/app/profile")
		if err != nil {
			return err
		}

		var prof any
		if err := decodeJSON(resp, &prof); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(prof)
	},
}

var profileAddCmd = &cobra.Command{
	Use:   "add <skill> ...",
	Short: "Add skills to the profile",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		for _, name := range args {
			resp, err := client.post(cmd.Context(), "/app/profile/skills", map[string]any{"name": name})
			if err != nil {
				return err
			}
			var result map[string]string
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			printSuccess("Added %s", name)
		}
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <skill>",
	Short: "Remove a skill from the profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/app/profile/skills/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Removed %s", args[0])
		return nil
	},
}

var profileClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all skills from the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will delete ALL profile skills. Use --confirm to proceed.")
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/app/profile/skills")
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Profile skills cleared")
		return nil
	},
}

var profilePreferCmd = &cobra.Command{
	Use:   "prefer <text>",
	Short: "Set the job preference",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pref := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/app/profile/preference", map[string]any{"job_preference": pref})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Preference set to %q", pref)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileClearCmd)
	profileCmd.AddCommand(profilePreferCmd)
	profileClearCmd.Flags().Bool("confirm", false, "confirm clearing all skills")
}

// profileSkillNames fetches the stored skill names for commands that
// fall back to the profile.
func profileSkillNames(ctx context.Context, client *apiClient) ([]string, error) {
	resp, err := client.get(ctx, "/app/profile")
	if err != nil {
		return nil, err
	}

	var prof struct {
		Skills []struct {
			Name string `json:"name"`
		} `json:"skills"`
	}
	if err := decodeJSON(resp, &prof); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(prof.Skills))
	for _, s := range prof.Skills {
		names = append(names, s.Name)
	}
	return names, nil
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
