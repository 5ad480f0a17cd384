package backend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMissingToken     = errors.New("please enter a GitHub token")
	ErrNoRepositoryURLs = errors.New("please enter at least one valid GitHub repository URL")
	ErrNothingAnalyzed  = errors.New("failed to analyze any repositories, please check your input or token")
)

// Analyzer はリポジトリを順番に解析し、進捗を通知する
type Analyzer struct {
	fetcher    RepositoryFetcher
	onProgress func(AnalysisProgress)
	newID      func() string
}

// NewAnalyzer は新しいAnalyzerを作成します
func NewAnalyzer(fetcher RepositoryFetcher, onProgress func(AnalysisProgress)) *Analyzer {
	if onProgress == nil {
		onProgress = func(AnalysisProgress) {}
	}
	return &Analyzer{
		fetcher:    fetcher,
		onProgress: onProgress,
		newID:      func() string { return uuid.New().String() },
	}
}

// Summarize はRepoDataから件数と貢献者数を集計します
func Summarize(repoURL string, data *RepoData) RepoResult {
	result := RepoResult{RepoURL: repoURL, Data: data}

	if info, err := ParseRepoURL(repoURL); err == nil {
		result.RepoName = info.Repo
	} else {
		result.RepoName = repoURL[strings.LastIndex(repoURL, "/")+1:]
		if result.RepoName == "" {
			result.RepoName = repoURL
		}
	}
	if data == nil {
		return result
	}

	contributors := make(map[string]struct{})
	for user, commits := range data.Commits {
		result.Commits += len(commits)
		contributors[user] = struct{}{}
	}
	for user, issues := range data.Issues {
		result.Issues += len(issues)
		contributors[user] = struct{}{}
	}
	for user, prs := range data.PullRequests {
		result.PullRequests += len(prs)
		contributors[user] = struct{}{}
	}
	result.Contributors = len(contributors)

	return result
}

// PrepareBatch は改行区切りのURLを検証し、処理対象と警告を返します
func (a *Analyzer) PrepareBatch(input string) ([]RepoListItem, []string, error) {
	var items []RepoListItem
	var warnings []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if _, err := ParseRepoURL(trimmed); err != nil {
			warnings = append(warnings, "Invalid repository URL format: "+trimmed)
			continue
		}

		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			warnings = append(warnings, "Duplicate repository URL: "+trimmed)
			continue
		}
		seen[key] = struct{}{}

		items = append(items, RepoListItem{
			ID:     a.newID(),
			URL:    trimmed,
			Status: RepoStatusPending,
		})
	}

	if len(items) == 0 {
		if len(warnings) > 0 {
			return nil, warnings, fmt.Errorf("%w: %s", ErrNoRepositoryURLs, strings.Join(warnings, "; "))
		}
		return nil, nil, ErrNoRepositoryURLs
	}
	return items, warnings, nil
}

// AnalyzeBatch は入力されたリポジトリを1件ずつ解析します
// 個々の失敗は項目のエラーとして記録し、全件失敗した場合のみエラーを返します
func (a *Analyzer) AnalyzeBatch(ctx context.Context, input string, opts FetchOptions) (*BatchResult, error) {
	items, warnings, err := a.PrepareBatch(input)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		ID:       a.newID(),
		Items:    items,
		Results:  []RepoResult{},
		Warnings: warnings,
	}
	total := len(items)

	for i := range batch.Items {
		if err := ctx.Err(); err != nil {
			return batch, fmt.Errorf("analysis cancelled: %w", err)
		}

		item := &batch.Items[i]
		item.Status = RepoStatusProcessing
		a.notify(batch.ID, i, total, percent(i, total), *item)

		data, err := a.fetcher.FetchRepositoryData(ctx, item.URL, opts)
		if err != nil {
			item.Status = RepoStatusError
			item.Error = "Failed to analyze: " + err.Error()
			a.notify(batch.ID, i, total, percent(i+1, total), *item)
			continue
		}

		result := Summarize(item.URL, data)
		item.Status = RepoStatusCompleted
		item.Result = &result
		batch.Results = append(batch.Results, result)
		a.notify(batch.ID, i, total, percent(i+1, total), *item)
	}

	if len(batch.Results) == 0 {
		return batch, ErrNothingAnalyzed
	}
	return batch, nil
}

func (a *Analyzer) notify(batchID string, index int, total int, progress int, item RepoListItem) {
	a.onProgress(AnalysisProgress{
		BatchID:      batchID,
		CurrentIndex: index,
		Total:        total,
		Progress:     progress,
		Item:         item,
	})
}

func percent(done int, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
