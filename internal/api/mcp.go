package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/careersync/internal/extract"
	"github.com/kalambet/careersync/internal/match"
	"github.com/kalambet/careersync/internal/profile"
	"github.com/kalambet/careersync/internal/recommend"
	"github.com/kalambet/careersync/internal/taxonomy"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Profile   *profile.Manager
	Extractor *extract.Extractor
	Matcher   *match.Matcher
	Courses   *recommend.Catalog
	Taxonomy  *taxonomy.Taxonomy
}

// NewMCPServer creates an MCP server with all careersync tools and
// resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"careersync",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("careersync — skill extraction, occupation matching and course recommendations over a local profile."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("extract_skills",
			mcp.WithDescription("Extract confidence-scored skills from free resume text. Skills already in the profile are skipped."),
			mcp.WithString("text", mcp.Description("Resume or bio text to scan"), mcp.Required()),
			mcp.WithBoolean("save", mcp.Description("Merge extracted skills into the stored profile (default false)")),
		),
		mcpExtractSkills(deps),
	)

	s.AddTool(
		mcp.NewTool("match_occupations",
			mcp.WithDescription("Score a skill list against the occupation catalog and return the top matches."),
			mcp.WithArray("skills", mcp.Description("Skill names; omitted to use the stored profile")),
		),
		mcpMatchOccupations(deps),
	)

	s.AddTool(
		mcp.NewTool("skill_gap",
			mcp.WithDescription("Report matched and missing skills for one occupation, with recommended courses."),
			mcp.WithString("occupation_id", mcp.Description("Occupation catalog ID, e.g. 15-1132.00"), mcp.Required()),
			mcp.WithArray("skills", mcp.Description("Skill names; omitted to use the stored profile")),
		),
		mcpSkillGap(deps),
	)

	s.AddTool(
		mcp.NewTool("recommend_courses",
			mcp.WithDescription("Recommend courses for a list of missing skills."),
			mcp.WithArray("skills", mcp.Description("Missing skill names"), mcp.Required()),
		),
		mcpRecommendCourses(deps),
	)

	s.AddTool(
		mcp.NewTool("suggest_skills",
			mcp.WithDescription("Autocomplete canonical skill names from the taxonomy."),
			mcp.WithString("query", mcp.Description("Partial skill name"), mcp.Required()),
		),
		mcpSuggestSkills(deps),
	)

	s.AddTool(
		mcp.NewTool("add_skill",
			mcp.WithDescription("Add one skill to the stored profile."),
			mcp.WithString("name", mcp.Description("Skill name"), mcp.Required()),
		),
		mcpAddSkill(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"catalog://occupations",
			"Occupation Catalog",
			mcp.WithResourceDescription("All occupation profiles with requirement categories, salary ranges and growth rates"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceOccupations(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"user://profile",
			"User Profile",
			mcp.WithResourceDescription("Stored skills and job preference as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	return s
}

func mcpExtractSkills(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}
		save := req.GetBool("save", false)

		owned, err := deps.Profile.SkillNames()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}

		skills := deps.Extractor.Extract(text, owned)
		if save {
			if _, err := deps.Profile.AddSkills(skills); err != nil {
				return mcpError(fmt.Sprintf("failed to update profile: %v", err)), nil
			}
		}

		b, err := json.Marshal(skills)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal skills: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpMatchOccupations(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skills, err := toolSkills(deps, req)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		if len(skills) == 0 {
			return mcpError("no skills given and the profile is empty"), nil
		}

		matches := deps.Matcher.Match(skills)
		b, err := json.Marshal(matches)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal matches: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSkillGap(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		occupationID, err := req.RequireString("occupation_id")
		if err != nil {
			return mcpError("occupation_id is required"), nil
		}
		skills, err := toolSkills(deps, req)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		gap, err := deps.Matcher.Gap(occupationID, skills)
		if err != nil {
			return mcpError(fmt.Sprintf("skill gap failed: %v", err)), nil
		}

		missing := append([]string{}, gap.MissingSkills.Skills...)
		missing = append(missing, gap.MissingSkills.TechnologySkills...)
		courses := deps.Courses.Recommend(missing)

		b, err := json.Marshal(map[string]any{
			"skill_gap":           gap,
			"recommended_courses": courses,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal gap: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRecommendCourses(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skills := req.GetStringSlice("skills", nil)
		if len(skills) == 0 {
			return mcpError("skills is required"), nil
		}

		courses := deps.Courses.Recommend(skills)
		b, err := json.Marshal(courses)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal courses: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSuggestSkills(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		owned, err := deps.Profile.SkillNames()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}

		suggestions := deps.Taxonomy.Suggest(query, owned, 8)
		b, err := json.Marshal(suggestions)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal suggestions: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddSkill(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}

		skill := extract.Skill{Name: name, Confidence: 1}
		if c, ok := deps.Taxonomy.CategoryOf(name); ok {
			skill.Category = c
		}
		if err := deps.Profile.AddSkill(skill); err != nil {
			return mcpError(fmt.Sprintf("failed to add skill: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Added %s to the profile", name)), nil
	}
}

// toolSkills resolves the optional "skills" argument, falling back to
// the stored profile when it is absent.
func toolSkills(deps MCPDeps, req mcp.CallToolRequest) ([]string, error) {
	skills := req.GetStringSlice("skills", nil)
	if len(skills) > 0 {
		return skills, nil
	}
	names, err := deps.Profile.SkillNames()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return names, nil
}

func mcpResourceOccupations(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Matcher.Occupations())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal occupations: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		skills, err := deps.Profile.Skills()
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		pref, err := deps.Profile.JobPreference()
		if err != nil {
			return nil, fmt.Errorf("failed to get job preference: %w", err)
		}

		b, err := json.Marshal(map[string]any{
			"skills":         skills,
			"job_preference": pref,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
