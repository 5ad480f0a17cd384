package backend

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExportFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "名前空は既定名を補完", in: "", want: "repo-analysis.json"},
		{name: "空白のみも既定名", in: "   ", want: "repo-analysis.json"},
		{name: "拡張子を追加", in: "hello-world", want: "hello-world.json"},
		{name: "owner/repo の区切りを置き換える", in: "octocat/hello-world", want: "octocat-hello-world.json"},
		{name: "拡張子は大文字小文字を区別せず重複しない", in: "report.JSON", want: "report.JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildExportFileName(tt.in))
		})
	}
}

func TestExportResults(t *testing.T) {
	service := NewExportService(&Context{})
	path := filepath.Join(t.TempDir(), "out", "results.json")

	results := []RepoResult{Summarize("octocat/hello-world", sampleRepoData())}
	require.NoError(t, service.ExportResults(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []RepoResult
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "hello-world", got[0].RepoName)
	assert.Equal(t, 4, got[0].Contributors)
	assert.Len(t, got[0].Data.Commits["alice"], 2)
}

func TestExportResults_EmptyPath(t *testing.T) {
	service := NewExportService(&Context{})
	assert.Error(t, service.ExportResults("  ", nil))
}

func TestRepositoryPageURL(t *testing.T) {
	info, err := ParseRepoURL("octocat/hello-world.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octocat/hello-world", repositoryPageURL(info))
}
