package backend

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tokenFileName = "github_token"

// 事前設定トークンを探す環境変数（先頭優先）
var presetTokenEnvKeys = []string{"GITHUB_API_TOKEN", "GITHUB_TOKEN"}

var ErrEmptyToken = errors.New("please enter a token to save")

// tokenStore はGitHubトークンをアプリデータディレクトリに保存する
type tokenStore struct {
	appDataDir string
}

func newTokenStore(appDataDir string) *tokenStore {
	return &tokenStore{appDataDir: appDataDir}
}

func (s *tokenStore) path() string {
	return filepath.Join(s.appDataDir, tokenFileName)
}

// Status は保存済みトークンと事前設定トークンの有無を返す
func (s *tokenStore) Status() TokenStatus {
	return TokenStatus{
		HasSavedToken:  s.savedToken() != "",
		HasPresetToken: presetToken() != "",
	}
}

// Save はトークンを保存する。空白のみのトークンは保存しない
func (s *tokenStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := os.MkdirAll(s.appDataDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path(), []byte(token), 0600)
}

// Delete は保存済みトークンを削除する。存在しなくてもエラーにしない
func (s *tokenStore) Delete() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Resolve は保存済みトークン、事前設定トークンの順に返す
func (s *tokenStore) Resolve() string {
	if token := s.savedToken(); token != "" {
		return token
	}
	return presetToken()
}

func (s *tokenStore) savedToken() string {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func presetToken() string {
	for _, key := range presetTokenEnvKeys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}
