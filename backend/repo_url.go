package backend

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidRepoURL はリポジトリURLを解釈できないことを示す
var ErrInvalidRepoURL = errors.New("invalid repository URL format, use https://github.com/owner/repo or owner/repo")

// ParseRepoURL はリポジトリURL（またはowner/repo形式）からオーナーとリポジトリ名を取り出す
func ParseRepoURL(raw string) (RepoInfo, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "@")
	if strings.HasSuffix(strings.ToLower(clean), ".git") {
		clean = clean[:len(clean)-len(".git")]
	}
	if clean == "" {
		return RepoInfo{}, ErrInvalidRepoURL
	}

	if strings.Contains(strings.ToLower(clean), "github.com") {
		if info, ok := parseGitHubURL(clean); ok {
			return info, nil
		}
		return RepoInfo{}, fmt.Errorf("%w: %s", ErrInvalidRepoURL, raw)
	}

	// owner/repo 形式
	parts := strings.Split(clean, "/")
	if len(parts) >= 2 {
		owner := strings.TrimSpace(parts[0])
		repo := strings.TrimSpace(parts[1])
		if owner != "" && repo != "" {
			return RepoInfo{Owner: owner, Repo: repo}, nil
		}
	}

	return RepoInfo{}, fmt.Errorf("%w: %s", ErrInvalidRepoURL, raw)
}

// parseGitHubURL はスキームの有無にかかわらずgithub.comのURLを解釈する
func parseGitHubURL(raw string) (RepoInfo, bool) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return RepoInfo{}, false
	}

	var segments []string
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) < 2 {
		return RepoInfo{}, false
	}

	return RepoInfo{Owner: segments[0], Repo: strings.TrimSuffix(segments[1], ".git")}, true
}
