package backend

import (
	"context"
	"sync"
)

// アプリケーションのメインの構造体
type App struct {
	ctx             *Context                                                  // アプリケーションのコンテキスト
	appDataDir      string                                                    // アプリケーションデータディレクトリのパス
	windows         *WindowRegistry                                           // ウィンドウレジストリ
	chrome          ChromeCustomizer                                          // ネイティブクロームのカスタマイザ
	settingsService *settingsService                                          // 設定操作サービス
	tokenStore      *tokenStore                                               // GitHubトークンの保存先
	exportService   *exportService                                            // 解析結果のエクスポート
	logger          AppLogger                                                 // アプリケーションのロガー
	newFetcher      func(ctx context.Context, token string) RepositoryFetcher // GitHubクライアントの生成
	fatal           func(err error)                                           // 起動を中断する致命的エラー処理
	showWindow      func(ctx context.Context)                                 // 起動完了後にウィンドウを表示する
	analysisMu      sync.Mutex                                                // 実行中の解析を保護
	cancelAnalysis  context.CancelFunc                                        // 実行中の解析のキャンセル
	analysisSeq     uint64                                                    // 解析の世代番号
}

// アプリケーションのコンテキストを管理
type Context struct {
	ctx context.Context
}

// 設定
type Settings struct {
	HideMergeCommits bool   `json:"hideMergeCommits"` // マージコミットを除外するか
	LogLevel         string `json:"logLevel"`         // debug / info / warn / error
	WindowWidth      int    `json:"windowWidth"`
	WindowHeight     int    `json:"windowHeight"`
	WindowX          int    `json:"windowX"`
	WindowY          int    `json:"windowY"`
	IsMaximized      bool   `json:"isMaximized"`
	IsDebug          bool   `json:"isDebug"`
}

// URLから取り出したリポジトリ情報
type RepoInfo struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (r RepoInfo) String() string {
	return r.Owner + "/" + r.Repo
}

// データ取得時のオプション
type FetchOptions struct {
	HideMergeCommits bool `json:"hideMergeCommits"`
}

type Commit struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	CommitDate string `json:"commitDate"`
	URL        string `json:"url,omitempty"`
}

type Issue struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Date  string `json:"date,omitempty"`
	URL   string `json:"url,omitempty"`
}

type PullRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Date  string `json:"date,omitempty"`
	URL   string `json:"url,omitempty"`
}

// チームワーク統計（他人のIssueへのコメント数、他人のPRへのレビュー数）
type TeamworkData struct {
	IssueComments map[string]int `json:"issueComments"`
	PRReviews     map[string]int `json:"prReviews"`
}

// リポジトリ全体のデータ（キーはユーザー名）
type RepoData struct {
	Commits      map[string][]Commit      `json:"commits"`
	Issues       map[string][]Issue       `json:"issues"`
	PullRequests map[string][]PullRequest `json:"prs"`
	Teamwork     TeamworkData             `json:"teamwork"`
}

// リポジトリ単位の解析結果
type RepoResult struct {
	RepoURL      string    `json:"repoUrl"`
	RepoName     string    `json:"repoName"`
	Commits      int       `json:"commits"`
	Issues       int       `json:"issues"`
	PullRequests int       `json:"prs"`
	Contributors int       `json:"contributors"`
	Data         *RepoData `json:"data"`
}

// バッチ内のリポジトリの処理状態
type RepoStatus string

const (
	RepoStatusPending    RepoStatus = "pending"
	RepoStatusProcessing RepoStatus = "processing"
	RepoStatusCompleted  RepoStatus = "completed"
	RepoStatusError      RepoStatus = "error"
)

type RepoListItem struct {
	ID     string      `json:"id"`
	URL    string      `json:"url"`
	Status RepoStatus  `json:"status"`
	Result *RepoResult `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// バッチ解析の結果
type BatchResult struct {
	ID       string         `json:"id"`
	Items    []RepoListItem `json:"items"`
	Results  []RepoResult   `json:"results"`
	Warnings []string       `json:"warnings,omitempty"`
}

// フロントエンドに送る進捗
type AnalysisProgress struct {
	BatchID      string       `json:"batchId"`
	CurrentIndex int          `json:"currentIndex"`
	Total        int          `json:"total"`
	Progress     int          `json:"progress"` // 0-100
	Item         RepoListItem `json:"item"`
}

// トークンの保存状況
type TokenStatus struct {
	HasSavedToken  bool `json:"hasSavedToken"`
	HasPresetToken bool `json:"hasPresetToken"`
}
