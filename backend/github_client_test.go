package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// fakeGitHub はGraphQLリクエストを記録し、handlerの返す data を応答する
type fakeGitHub struct {
	mu       sync.Mutex
	requests []graphqlRequest
	auth     []string
	handler  func(req graphqlRequest) (interface{}, int)
}

func newFakeGitHub(t *testing.T, handler func(req graphqlRequest) (interface{}, int)) (*fakeGitHub, *GitHubClient) {
	t.Helper()
	fake := &fakeGitHub{handler: handler}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fake.mu.Lock()
		fake.requests = append(fake.requests, req)
		fake.auth = append(fake.auth, r.Header.Get("Authorization"))
		fake.mu.Unlock()

		data, status := fake.handler(req)
		if status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
	t.Cleanup(server.Close)

	return fake, NewEnterpriseGitHubClient(context.Background(), server.URL, "test-token")
}

func (f *fakeGitHub) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		if queryKind(req) == kind {
			n++
		}
	}
	return n
}

func queryKind(req graphqlRequest) string {
	switch {
	case strings.Contains(req.Query, "history("):
		return "commits"
	case strings.Contains(req.Query, "pullRequests("):
		return "prs"
	case strings.Contains(req.Query, "issues("):
		return "issues"
	}
	return ""
}

func cursorOf(req graphqlRequest) string {
	if c, ok := req.Variables["cursor"].(string); ok {
		return c
	}
	return ""
}

func page(hasNext bool, cursor string) map[string]interface{} {
	return map[string]interface{}{"hasNextPage": hasNext, "endCursor": cursor}
}

func commitNode(oid string, message string, login string, name string) map[string]interface{} {
	var user interface{}
	if login != "" {
		user = map[string]interface{}{"login": login}
	}
	return map[string]interface{}{
		"oid":           oid,
		"message":       message,
		"committedDate": "2024-03-01T10:00:00Z",
		"author":        map[string]interface{}{"name": name, "user": user},
	}
}

func historyData(nodes []interface{}, info map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"repository": map[string]interface{}{
			"defaultBranchRef": map[string]interface{}{
				"target": map[string]interface{}{
					"history": map[string]interface{}{"pageInfo": info, "nodes": nodes},
				},
			},
		},
	}
}

func withAuthors(logins ...string) []interface{} {
	nodes := make([]interface{}, 0, len(logins))
	for _, login := range logins {
		nodes = append(nodes, map[string]interface{}{"author": map[string]interface{}{"login": login}})
	}
	return nodes
}

func issueNode(id string, author string, commenters ...string) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"title":     "issue " + id,
		"body":      "body " + id,
		"url":       "https://github.com/octocat/hello-world/issues/" + id,
		"createdAt": "2024-03-01T10:00:00Z",
		"author":    map[string]interface{}{"login": author},
		"comments":  map[string]interface{}{"nodes": withAuthors(commenters...)},
	}
}

func prNode(title string, author string, reviewers ...string) map[string]interface{} {
	return map[string]interface{}{
		"title":     title,
		"body":      "",
		"url":       "https://github.com/octocat/hello-world/pull/1",
		"createdAt": "2024-03-01T10:00:00Z",
		"author":    map[string]interface{}{"login": author},
		"reviews":   map[string]interface{}{"nodes": withAuthors(reviewers...)},
	}
}

func TestFetchCommits_PaginatesAndGroupsByAuthor(t *testing.T) {
	fake, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		assert.Equal(t, "octocat", req.Variables["owner"])
		assert.Equal(t, "hello-world", req.Variables["name"])

		if cursorOf(req) == "" {
			return historyData([]interface{}{
				commitNode("a1", "Add feature", "alice", "Alice A"),
				commitNode("a2", "Merge pull request #1 from bob/fix", "alice", "Alice A"),
				commitNode("n1", "Fix typo", "", "Nameless Dev"),
			}, page(true, "cursor-1")), http.StatusOK
		}
		assert.Equal(t, "cursor-1", cursorOf(req))
		return historyData([]interface{}{
			commitNode("u1", "Initial commit", "", ""),
			commitNode("b1", "merge branch main", "bob", ""),
		}, page(false, "")), http.StatusOK
	})

	commits, err := client.FetchCommits(context.Background(), "octocat", "hello-world", FetchOptions{HideMergeCommits: true})
	require.NoError(t, err)

	assert.Equal(t, 2, fake.count("commits"))
	require.Len(t, commits["alice"], 1)
	assert.Equal(t, Commit{ID: "a1", Message: "Add feature", CommitDate: "2024-03-01T10:00:00Z"}, commits["alice"][0])
	assert.Len(t, commits["Nameless Dev"], 1)
	assert.Len(t, commits[unknownAuthor], 1)
	assert.NotContains(t, commits, "bob")
	assert.Equal(t, "Bearer test-token", fake.auth[0])
}

func TestFetchCommits_KeepsMergeCommitsByDefault(t *testing.T) {
	_, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		return historyData([]interface{}{
			commitNode("m1", "Merge pull request #2", "alice", ""),
		}, page(false, "")), http.StatusOK
	})

	commits, err := client.FetchCommits(context.Background(), "octocat", "hello-world", FetchOptions{})
	require.NoError(t, err)
	assert.Len(t, commits["alice"], 1)
}

func TestFetchCommits_StopsWhenEveryAuthorIsFull(t *testing.T) {
	fake, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		nodes := make([]interface{}, 0, 60)
		for i := 0; i < 60; i++ {
			nodes = append(nodes, commitNode(fmt.Sprintf("c%d", i), "work", "alice", ""))
		}
		return historyData(nodes, page(true, "next")), http.StatusOK
	})

	commits, err := client.FetchCommits(context.Background(), "octocat", "hello-world", FetchOptions{})
	require.NoError(t, err)
	assert.Len(t, commits["alice"], maxItemsPerUser)
	assert.Equal(t, 1, fake.count("commits"))
}

func TestFetchCommits_NoDefaultBranch(t *testing.T) {
	_, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		return map[string]interface{}{
			"repository": map[string]interface{}{"defaultBranchRef": nil},
		}, http.StatusOK
	})

	commits, err := client.FetchCommits(context.Background(), "octocat", "empty", FetchOptions{})
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestFetchIssues_CountsDistinctIssuesCommentedByOthers(t *testing.T) {
	_, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		return map[string]interface{}{
			"repository": map[string]interface{}{
				"issues": map[string]interface{}{
					"pageInfo": page(false, ""),
					"nodes": []interface{}{
						issueNode("1", "alice", "bob", "bob", "alice", "carol"),
						issueNode("2", "bob", "bob", "alice"),
						issueNode("3", "alice", "bob"),
					},
				},
			},
		}, http.StatusOK
	})

	issues, comments, err := client.FetchIssues(context.Background(), "octocat", "hello-world")
	require.NoError(t, err)

	assert.Len(t, issues["alice"], 2)
	assert.Len(t, issues["bob"], 1)
	assert.Equal(t, "issue 1", issues["alice"][0].Title)
	assert.NotEmpty(t, issues["alice"][0].Date)
	assert.Equal(t, map[string]int{"bob": 2, "alice": 1, "carol": 1}, comments)
}

func TestFetchPullRequests_CountsReviewsOnOthersPRs(t *testing.T) {
	_, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		return map[string]interface{}{
			"repository": map[string]interface{}{
				"pullRequests": map[string]interface{}{
					"pageInfo": page(false, ""),
					"nodes": []interface{}{
						prNode("feat", "alice", "bob", "bob", "alice"),
						prNode("fix", "bob", "alice"),
					},
				},
			},
		}, http.StatusOK
	})

	prs, reviews, err := client.FetchPullRequests(context.Background(), "octocat", "hello-world")
	require.NoError(t, err)

	assert.Len(t, prs["alice"], 1)
	assert.Len(t, prs["bob"], 1)
	assert.Equal(t, map[string]int{"bob": 2, "alice": 1}, reviews)
}

func TestFetchRepositoryData(t *testing.T) {
	fake, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		switch queryKind(req) {
		case "commits":
			return historyData([]interface{}{commitNode("a1", "Add", "alice", "")}, page(false, "")), http.StatusOK
		case "issues":
			return map[string]interface{}{"repository": map[string]interface{}{"issues": map[string]interface{}{
				"pageInfo": page(false, ""),
				"nodes":    []interface{}{issueNode("1", "bob", "alice")},
			}}}, http.StatusOK
		default:
			return map[string]interface{}{"repository": map[string]interface{}{"pullRequests": map[string]interface{}{
				"pageInfo": page(false, ""),
				"nodes":    []interface{}{prNode("feat", "carol", "alice")},
			}}}, http.StatusOK
		}
	})

	data, err := client.FetchRepositoryData(context.Background(), "https://github.com/octocat/hello-world", FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, fake.count("commits"))
	assert.Equal(t, 1, fake.count("issues"))
	assert.Equal(t, 1, fake.count("prs"))
	assert.Len(t, data.Commits["alice"], 1)
	assert.Len(t, data.Issues["bob"], 1)
	assert.Len(t, data.PullRequests["carol"], 1)
	assert.Equal(t, map[string]int{"alice": 1}, data.Teamwork.IssueComments)
	assert.Equal(t, map[string]int{"alice": 1}, data.Teamwork.PRReviews)
}

func TestFetchRepositoryData_Errors(t *testing.T) {
	fake, client := newFakeGitHub(t, func(req graphqlRequest) (interface{}, int) {
		return nil, http.StatusInternalServerError
	})

	_, err := client.FetchRepositoryData(context.Background(), "not a repo", FetchOptions{})
	assert.ErrorIs(t, err, ErrInvalidRepoURL)
	assert.Equal(t, 0, fake.count("commits"))

	_, err = client.FetchRepositoryData(context.Background(), "octocat/hello-world", FetchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "octocat/hello-world")
	assert.Contains(t, err.Error(), "commit history")
}
