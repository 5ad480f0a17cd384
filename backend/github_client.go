package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const (
	githubPageSize  = 100       // 1リクエストで取得するノード数
	maxItemsPerUser = 50        // ユーザーごとに保持する最大件数
	unknownAuthor   = "Unknown" // 作者を特定できない場合のキー
)

// RepositoryFetcher はリポジトリデータの取得元
type RepositoryFetcher interface {
	FetchRepositoryData(ctx context.Context, repoURL string, opts FetchOptions) (*RepoData, error)
}

// GitHubClient はGitHub GraphQL APIのクライアント
type GitHubClient struct {
	gql *githubv4.Client
}

// NewGitHubClient はトークンで認証するGitHubClientを作成します
func NewGitHubClient(ctx context.Context, token string) *GitHubClient {
	return &GitHubClient{gql: githubv4.NewClient(newTokenHTTPClient(ctx, token))}
}

// NewEnterpriseGitHubClient は任意のGraphQLエンドポイントを使うGitHubClientを作成します
func NewEnterpriseGitHubClient(ctx context.Context, endpoint string, token string) *GitHubClient {
	return &GitHubClient{gql: githubv4.NewEnterpriseClient(endpoint, newTokenHTTPClient(ctx, token))}
}

// newTokenHTTPClient はBearerトークンを付与するHTTPクライアントを返す
func newTokenHTTPClient(ctx context.Context, token string) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

type pageInfo struct {
	HasNextPage githubv4.Boolean
	EndCursor   githubv4.String
}

type actor struct {
	Login githubv4.String
}

type commitHistoryQuery struct {
	Repository struct {
		DefaultBranchRef struct {
			Target struct {
				Commit struct {
					History struct {
						PageInfo pageInfo
						Nodes    []struct {
							Oid           githubv4.String
							Message       githubv4.String
							CommittedDate githubv4.DateTime
							Author        struct {
								Name githubv4.String
								User actor
							}
						}
					} `graphql:"history(first: $first, after: $cursor)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type issuesQuery struct {
	Repository struct {
		Issues struct {
			PageInfo pageInfo
			Nodes    []struct {
				ID        githubv4.String
				Title     githubv4.String
				Body      githubv4.String
				URL       githubv4.String
				CreatedAt githubv4.DateTime
				Author    actor
				Comments  struct {
					Nodes []struct {
						Author actor
					}
				} `graphql:"comments(first: 30)"`
			}
		} `graphql:"issues(first: $first, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type pullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo pageInfo
			Nodes    []struct {
				Title     githubv4.String
				Body      githubv4.String
				URL       githubv4.String
				CreatedAt githubv4.DateTime
				Author    actor
				Reviews   struct {
					Nodes []struct {
						Author actor
					}
				} `graphql:"reviews(first: 30)"`
			}
		} `graphql:"pullRequests(first: $first, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func repoVariables(owner string, name string) map[string]interface{} {
	return map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"first":  githubv4.Int(githubPageSize),
		"cursor": (*githubv4.String)(nil),
	}
}

// FetchCommits はデフォルトブランチのコミットを作者ごとにまとめて返します
func (c *GitHubClient) FetchCommits(ctx context.Context, owner string, name string, opts FetchOptions) (map[string][]Commit, error) {
	commitsByUser := make(map[string][]Commit)
	variables := repoVariables(owner, name)

	for {
		var q commitHistoryQuery
		if err := c.gql.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to fetch commit history: %w", err)
		}

		history := q.Repository.DefaultBranchRef.Target.Commit.History
		for _, node := range history.Nodes {
			message := string(node.Message)
			if opts.HideMergeCommits && isMergeCommit(message) {
				continue
			}

			author := resolveAuthor(string(node.Author.User.Login), string(node.Author.Name))
			if len(commitsByUser[author]) >= maxItemsPerUser {
				continue
			}
			commitsByUser[author] = append(commitsByUser[author], Commit{
				ID:         string(node.Oid),
				Message:    message,
				CommitDate: formatCommitDate(node.CommittedDate),
			})
		}

		if !bool(history.PageInfo.HasNextPage) || allUsersFull(commitsByUser) {
			break
		}
		variables["cursor"] = githubv4.NewString(history.PageInfo.EndCursor)
	}

	return commitsByUser, nil
}

// FetchIssues はIssueを作者ごとにまとめ、他人のIssueにコメントした件数を集計します
func (c *GitHubClient) FetchIssues(ctx context.Context, owner string, name string) (map[string][]Issue, map[string]int, error) {
	issuesByUser := make(map[string][]Issue)
	commentsByUser := make(map[string]int)
	// ユーザーごとのコメント済みIssue（同じIssueへの複数コメントは1回と数える）
	commented := make(map[string]map[string]struct{})
	variables := repoVariables(owner, name)

	for {
		var q issuesQuery
		if err := c.gql.Query(ctx, &q, variables); err != nil {
			return nil, nil, fmt.Errorf("failed to fetch issues list: %w", err)
		}

		issues := q.Repository.Issues
		for _, node := range issues.Nodes {
			issueID := string(node.ID)
			author := resolveAuthor(string(node.Author.Login), "")

			if len(issuesByUser[author]) < maxItemsPerUser {
				issuesByUser[author] = append(issuesByUser[author], Issue{
					Title: string(node.Title),
					Body:  string(node.Body),
					URL:   string(node.URL),
					Date:  formatDisplayDate(node.CreatedAt),
				})
			}

			for _, comment := range node.Comments.Nodes {
				commenter := resolveAuthor(string(comment.Author.Login), "")
				if commenter == author {
					continue
				}
				if commented[commenter] == nil {
					commented[commenter] = make(map[string]struct{})
				}
				if _, seen := commented[commenter][issueID]; seen {
					continue
				}
				commented[commenter][issueID] = struct{}{}
				commentsByUser[commenter]++
			}
		}

		if !bool(issues.PageInfo.HasNextPage) || allUsersFull(issuesByUser) {
			break
		}
		variables["cursor"] = githubv4.NewString(issues.PageInfo.EndCursor)
	}

	return issuesByUser, commentsByUser, nil
}

// FetchPullRequests はPRを作者ごとにまとめ、他人のPRへのレビュー数を集計します
func (c *GitHubClient) FetchPullRequests(ctx context.Context, owner string, name string) (map[string][]PullRequest, map[string]int, error) {
	prsByUser := make(map[string][]PullRequest)
	reviewsByUser := make(map[string]int)
	variables := repoVariables(owner, name)

	for {
		var q pullRequestsQuery
		if err := c.gql.Query(ctx, &q, variables); err != nil {
			return nil, nil, fmt.Errorf("failed to fetch PR list: %w", err)
		}

		prs := q.Repository.PullRequests
		for _, node := range prs.Nodes {
			author := resolveAuthor(string(node.Author.Login), "")

			if len(prsByUser[author]) < maxItemsPerUser {
				prsByUser[author] = append(prsByUser[author], PullRequest{
					Title: string(node.Title),
					Body:  string(node.Body),
					URL:   string(node.URL),
					Date:  formatDisplayDate(node.CreatedAt),
				})
			}

			for _, review := range node.Reviews.Nodes {
				reviewer := resolveAuthor(string(review.Author.Login), "")
				if reviewer != author {
					reviewsByUser[reviewer]++
				}
			}
		}

		if !bool(prs.PageInfo.HasNextPage) || allUsersFull(prsByUser) {
			break
		}
		variables["cursor"] = githubv4.NewString(prs.PageInfo.EndCursor)
	}

	return prsByUser, reviewsByUser, nil
}

// FetchRepositoryData はコミット、Issue、PRの順に取得してRepoDataを組み立てます
func (c *GitHubClient) FetchRepositoryData(ctx context.Context, repoURL string, opts FetchOptions) (*RepoData, error) {
	info, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	commits, err := c.FetchCommits(ctx, info.Owner, info.Repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository data for %s: %w", info, err)
	}

	issues, issueComments, err := c.FetchIssues(ctx, info.Owner, info.Repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository data for %s: %w", info, err)
	}

	prs, prReviews, err := c.FetchPullRequests(ctx, info.Owner, info.Repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository data for %s: %w", info, err)
	}

	return &RepoData{
		Commits:      commits,
		Issues:       issues,
		PullRequests: prs,
		Teamwork: TeamworkData{
			IssueComments: issueComments,
			PRReviews:     prReviews,
		},
	}, nil
}

func isMergeCommit(message string) bool {
	return strings.HasPrefix(strings.ToLower(message), "merge ")
}

// resolveAuthor はログイン名、表示名、Unknownの順で作者キーを決める
func resolveAuthor(login string, name string) string {
	if login != "" {
		return login
	}
	if name != "" {
		return name
	}
	return unknownAuthor
}

// allUsersFull は既知の全ユーザーが上限に達したかを返す（ユーザーが居なければfalse）
func allUsersFull[T any](byUser map[string][]T) bool {
	if len(byUser) == 0 {
		return false
	}
	for _, items := range byUser {
		if len(items) < maxItemsPerUser {
			return false
		}
	}
	return true
}

func formatCommitDate(t githubv4.DateTime) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDisplayDate(t githubv4.DateTime) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006/01/02 15:04:05")
}
