package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common progress reviews.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("daily_checkin").
		Description("End-of-day check-in: what was logged, how far from the goal, what would keep the streak alive.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Daily Check-in", `Let's close out my day. Please:

1. Read momentum://dashboard for today's points, goal progress and streaks
2. Read momentum://activities/recent to see what I logged

Then tell me:
- How close I am to my daily goal, in points
- Whether my current streak is safe for today
- One small activity that would close the gap, with its category and intensity
- Any new achievements, and mark them seen with achievement.view once I've read them

Log anything I mention doing with activity.log.`), nil
		})

	srv.Prompt("weekly_review").
		Description("Weekly review of consistency, category balance and habit streaks.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly Review", `Let's review my week. Please:

1. Read momentum://stats/week for the habit matrix
2. Read momentum://stats/month for the trailing analytics

Help me analyze:

**Consistency:**
- Completion, stability and recovery scores, and what drives each
- Which habits kept their streak and which broke

**Balance:**
- Which categories dominate my points and which I neglect
- My best weekday and the hours I'm most active

**Next week:**
- Two habits to protect and one to restart
- Whether my daily goal is too easy or too hard; suggest a value for goal.set`), nil
		})

	srv.Prompt("streak_recovery").
		Description("Plan to restart after a missed day without losing momentum.").
		Argument("habit_name", "Activity name whose streak broke", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			habit := args["habit_name"]
			if habit == "" {
				habit = "whichever habit broke most recently"
			}
			return userPrompt("Streak Recovery", fmt.Sprintf(`I broke a streak. Habit: %s

1. Check the habit matrix with stats.habit_matrix
2. Check my recovery rate with stats.analytics

Help me:
- See how long the streak was and my best streak for it
- Pick a light-intensity version I can log today to restart
- Plan the next three days so I get back on track`, habit)), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
