package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/sqlkit/internal/cli/config"
	"github.com/leapstack-labs/sqlkit/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useProject loads the test project's sqlkit.yaml from its directory.
func useProject(t *testing.T) string {
	t.Helper()

	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	return dir
}

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name      string
		checks    []HealthCheck
		fileCount int
		minScore  int
		maxScore  int
	}{
		{
			name:      "no checks returns 100",
			checks:    nil,
			fileCount: 10,
			minScore:  100,
			maxScore:  100,
		},
		{
			name: "all passing returns 100",
			checks: []HealthCheck{
				{RuleID: "SQ01", Status: statusPass},
				{RuleID: "SQ02", Status: statusPass},
			},
			fileCount: 10,
			minScore:  100,
			maxScore:  100,
		},
		{
			name: "warnings reduce score",
			checks: []HealthCheck{
				{RuleID: "SQ01", Status: statusPass},
				{RuleID: "SQ07", Status: statusWarn, IssueCount: 2},
			},
			fileCount: 10,
			minScore:  90,
			maxScore:  90,
		},
		{
			name: "errors count double",
			checks: []HealthCheck{
				{RuleID: "SQ02", Status: statusError, IssueCount: 2},
			},
			fileCount: 10,
			minScore:  80,
			maxScore:  80,
		},
		{
			name: "disabled rules do not count",
			checks: []HealthCheck{
				{RuleID: "SQ04", Status: statusOff, IssueCount: 0},
			},
			fileCount: 10,
			minScore:  100,
			maxScore:  100,
		},
		{
			name: "more files means less impact per issue",
			checks: []HealthCheck{
				{RuleID: "SQ07", Status: statusWarn, IssueCount: 5},
			},
			fileCount: 200,
			minScore:  95,
			maxScore:  95,
		},
		{
			name: "many issues can reduce to 0",
			checks: []HealthCheck{
				{RuleID: "SQ02", Status: statusError, IssueCount: 20},
				{RuleID: "SQ03", Status: statusError, IssueCount: 20},
			},
			fileCount: 5,
			minScore:  0,
			maxScore:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := calculateHealthScore(tt.checks, tt.fileCount)
			assert.GreaterOrEqual(t, score, tt.minScore, "score should be >= %d", tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore, "score should be <= %d", tt.maxScore)
		})
	}
}

func TestGetRecommendation(t *testing.T) {
	for _, id := range []string{"SQ01", "SQ02", "SQ03", "SQ04", "SQ05", "SQ06", "SQ07"} {
		assert.NotEmpty(t, getRecommendation(id), "expected recommendation for %s", id)
	}
	assert.Empty(t, getRecommendation("UNKNOWN"))
}

func TestGenerateRecommendations(t *testing.T) {
	checks := []HealthCheck{
		{RuleID: "SQ02", Status: statusError, IssueCount: 1},
		{RuleID: "SQ07", Status: statusWarn, IssueCount: 2},
		{RuleID: "SQ03", Status: statusPass},
	}

	recommendations := generateRecommendations(checks, []string{"region", "since"})

	require.Len(t, recommendations, 3)
	assert.Contains(t, recommendations[0], "parentheses")
	assert.Contains(t, recommendations[1], "WHERE")
	assert.Contains(t, recommendations[2], "region, since")
}

func TestGenerateRecommendations_LimitTo5(t *testing.T) {
	var checks []HealthCheck
	for _, id := range []string{"SQ01", "SQ02", "SQ03", "SQ04", "SQ05", "SQ06", "SQ07"} {
		checks = append(checks, HealthCheck{RuleID: id, Status: statusWarn, IssueCount: 1})
	}

	assert.Len(t, generateRecommendations(checks, []string{"x"}), 5)
}

func TestAnalyzeProject(t *testing.T) {
	dir := useProject(t)
	extra := testutil.WriteFile(t, dir, "queries/cleanup.sql", "DELETE FROM sessions WHERE created_at < {{cutoff}};\n")

	files := []string{
		"queries/active_users.sql",
		"queries/broken.sql",
		extra,
		"queries/report/orders.sql",
	}
	out, err := analyzeProject(files, config.GetCurrentConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, out.Summary.Files)
	assert.Equal(t, 1, out.Summary.Invalid)
	assert.Equal(t, map[string]int{"SELECT": 3, "DELETE": 1}, out.Summary.Types)
	assert.Equal(t, 4, out.Summary.Tables)
	assert.Equal(t, []string{"cutoff", "min_id", "status"}, out.Summary.Variables)
	assert.Equal(t, []string{"cutoff"}, out.Summary.Unbound)

	byID := make(map[string]HealthCheck)
	for _, c := range out.HealthChecks {
		byID[c.RuleID] = c
	}
	require.Contains(t, byID, "SQ02")
	assert.Equal(t, statusError, byID["SQ02"].Status)
	assert.Equal(t, 1, byID["SQ02"].IssueCount)
	assert.Contains(t, byID["SQ02"].Details[0], "queries/broken.sql:1:")
	assert.Equal(t, statusPass, byID["SQ07"].Status, "DELETE has a WHERE clause")
	assert.Less(t, out.Score, 100)
	assert.NotEmpty(t, out.Recommendations)
}

func TestDoctorCommand(t *testing.T) {
	useProject(t)

	t.Run("text", func(t *testing.T) {
		out, _, err := execute(t, NewDoctorCommand(), "", "--format", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "sqlkit Project Health Report")
		assert.Contains(t, out, "Files: 3 | Invalid: 1 | Tables: 3")
		assert.Contains(t, out, "Statements: SELECT: 3")
		assert.Contains(t, out, "config: ")
		assert.Contains(t, out, "sqlite")
		assert.Contains(t, out, "reachable")
		assert.Contains(t, out, "no queries recorded yet")
		assert.Contains(t, out, "SQ02")
		assert.Contains(t, out, "Health Score:")
		testutil.AssertNoANSI(t, out)
	})

	t.Run("markdown", func(t *testing.T) {
		out, _, err := execute(t, NewDoctorCommand(), "", "--format", "markdown", "--offline")
		require.NoError(t, err)
		assert.Contains(t, out, "# sqlkit Project Health Report")
		assert.Contains(t, out, "## Environment")
		assert.Contains(t, out, "- **[OFF]** target: sqlite")
		assert.Contains(t, out, "- **[ERROR]** SQ02")
		testutil.AssertValidMarkdown(t, out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, NewDoctorCommand(), "", "--format", "json", "--offline", "queries/report")
		require.NoError(t, err)

		var got DoctorOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, 1, got.Summary.Files)
		assert.Equal(t, 100, got.Score)
		assert.Equal(t, 0, got.IssueCount)
		require.Len(t, got.Environment, 3)
		assert.Equal(t, "config", got.Environment[0].Name)
		assert.Equal(t, statusPass, got.Environment[0].Status)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, _, err := execute(t, NewDoctorCommand(), "", "--format", "yaml")
		require.Error(t, err)
	})

	t.Run("missing path", func(t *testing.T) {
		_, _, err := execute(t, NewDoctorCommand(), "", "nope")
		require.Error(t, err)
	})
}

func TestDoctorCommand_HistoryAndTarget(t *testing.T) {
	cfg := useSQLiteTarget(t, "json")
	_, _, err := execute(t, NewRunCommand(), "", "SELECT 1")
	require.NoError(t, err)

	out, _, err := execute(t, NewDoctorCommand(), "")
	require.NoError(t, err)

	var got DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Environment, 3)
	assert.Equal(t, statusWarn, got.Environment[0].Status, "no config file")
	assert.Equal(t, statusPass, got.Environment[1].Status)
	assert.Contains(t, got.Environment[2].Detail, "1 queries recorded")
	assert.Equal(t, 0, got.Summary.Files)

	cfg.Target = nil
	out, _, err = execute(t, NewDoctorCommand(), "")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, statusError, got.Environment[1].Status)
}
