package backend

import (
	"fmt"
	"sync"
)

// WindowRef はフレームワークが所有するウィンドウへの非所有参照
// ネイティブウィンドウはタイトルで特定する
type WindowRef struct {
	Name  string // 論理名（例: "main"）
	Title string // ネイティブウィンドウのタイトル
}

// WindowRegistry は論理名からウィンドウ参照を引くためのテーブル
// ウィンドウ宣言時（wails.Run の前）に登録され、起動時フックから参照される
type WindowRegistry struct {
	mu      sync.RWMutex
	windows map[string]WindowRef
}

// NewWindowRegistry は空のWindowRegistryを作成します
func NewWindowRegistry() *WindowRegistry {
	return &WindowRegistry{
		windows: make(map[string]WindowRef),
	}
}

// Register はウィンドウを論理名で登録します。同名の登録は上書きされます
func (r *WindowRegistry) Register(name string, title string) WindowRef {
	ref := WindowRef{Name: name, Title: title}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows[name] = ref
	return ref
}

// Lookup は論理名に対応するウィンドウ参照を返します
// 未登録の場合は ErrWindowNotFound を返します
func (r *WindowRegistry) Lookup(name string) (WindowRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, ok := r.windows[name]
	if !ok {
		return WindowRef{}, fmt.Errorf("%w: %q", ErrWindowNotFound, name)
	}
	return ref, nil
}
