package backend

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const defaultExportName = "repo-analysis"

// exportService は解析結果の書き出しと外部ブラウザ連携を担当する
type exportService struct {
	ctx *Context
}

// NewExportService は新しいexportServiceインスタンスを作成します
func NewExportService(ctx *Context) *exportService {
	return &exportService{
		ctx: ctx,
	}
}

// SelectExportPath は保存ダイアログを表示し、選択された保存先のパスを返します
// キャンセルされた場合は空文字を返します
func (s *exportService) SelectExportPath(name string) (string, error) {
	return wailsRuntime.SaveFileDialog(s.ctx.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Please select export file path.",
		DefaultFilename: buildExportFileName(name),
		Filters: []wailsRuntime.FileFilter{
			{
				DisplayName: "JSON (*.json)",
				Pattern:     "*.json",
			},
		},
	})
}

// buildExportFileName は保存ダイアログ用の既定ファイル名を組み立てる
// owner/repo のような名前はファイル名に使えるよう区切りを置き換える
func buildExportFileName(name string) string {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.NewReplacer("/", "-", "\\", "-").Replace(trimmed)
	if trimmed == "" {
		trimmed = defaultExportName
	}
	if strings.HasSuffix(strings.ToLower(trimmed), ".json") {
		return trimmed
	}
	return trimmed + ".json"
}

// ExportResults は解析結果を整形済みJSONとして保存します
func (s *exportService) ExportResults(filePath string, results []RepoResult) error {
	if strings.TrimSpace(filePath) == "" {
		return errors.New("export path is empty")
	}
	if results == nil {
		results = []RepoResult{}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// OpenRepository はリポジトリのページをブラウザで開きます
func (s *exportService) OpenRepository(repoURL string) error {
	info, err := ParseRepoURL(repoURL)
	if err != nil {
		return err
	}
	wailsRuntime.BrowserOpenURL(s.ctx.ctx, repositoryPageURL(info))
	return nil
}

func repositoryPageURL(info RepoInfo) string {
	return "https://github.com/" + info.Owner + "/" + info.Repo
}
