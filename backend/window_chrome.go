package backend

import (
	"errors"
	"fmt"
)

// MainWindowName はメインウィンドウの論理名
const MainWindowName = "main"

var (
	// ErrWindowNotFound はレジストリに該当ウィンドウが無いことを示す（起動時フックでは握りつぶす）
	ErrWindowNotFound = errors.New("window not found")
	// ErrNativeHandleUnavailable は登録済みウィンドウのネイティブハンドルが取得できないことを示す（致命的）
	ErrNativeHandleUnavailable = errors.New("native window handle unavailable")
)

// TitleVisibility はタイトル文字列の表示状態
type TitleVisibility int

const (
	TitleVisible TitleVisibility = iota
	TitleHidden
)

func (v TitleVisibility) String() string {
	if v == TitleHidden {
		return "hidden"
	}
	return "visible"
}

// ChromeStyle はネイティブのタイトルバーに適用する属性の組
type ChromeStyle struct {
	TitleVisibility     TitleVisibility
	TitlebarTransparent bool
}

// TransparentTitlebar はタイトル文字列を隠し、信号機ボタンを残したままタイトルバーを透過させる
var TransparentTitlebar = ChromeStyle{
	TitleVisibility:     TitleHidden,
	TitlebarTransparent: true,
}

// NativeWindow はOSネイティブのウィンドウ
// ApplyChrome はタイトル表示、透過の順に両方の属性を一度に設定する。値は絶対値で設定されるため何度呼んでも同じ状態になる
type NativeWindow interface {
	ApplyChrome(style ChromeStyle)
}

// ChromeCustomizer はウィンドウのネイティブクロームを変更する
// 実体はビルド対象OSで決まる（darwin: nativeChromeCustomizer、それ以外: noOpChromeCustomizer）
type ChromeCustomizer interface {
	Customize(ref WindowRef) error
}

// nativeChromeCustomizer はネイティブハンドルを解決して透過タイトルバーを適用する
type nativeChromeCustomizer struct {
	resolve func(ref WindowRef) (NativeWindow, error)
}

func (c *nativeChromeCustomizer) Customize(ref WindowRef) error {
	native, err := c.resolve(ref)
	if err != nil {
		return fmt.Errorf("%w: window %q: %v", ErrNativeHandleUnavailable, ref.Name, err)
	}
	if native == nil {
		return fmt.Errorf("%w: window %q", ErrNativeHandleUnavailable, ref.Name)
	}

	native.ApplyChrome(TransparentTitlebar)
	return nil
}

// noOpChromeCustomizer はネイティブクロームに一切触れない
type noOpChromeCustomizer struct{}

func (noOpChromeCustomizer) Customize(WindowRef) error {
	return nil
}

// StartupHook は起動時に一度だけ実行され、メインウィンドウのクロームを整える
type StartupHook struct {
	windows    *WindowRegistry
	customizer ChromeCustomizer
	logger     AppLogger
}

// NewStartupHook は新しいStartupHookを作成します
func NewStartupHook(windows *WindowRegistry, customizer ChromeCustomizer, logger AppLogger) *StartupHook {
	return &StartupHook{
		windows:    windows,
		customizer: customizer,
		logger:     logger,
	}
}

// Run はメインウィンドウを探し、見つかればクロームを変更します
// ウィンドウが無い場合は何もせず成功、ネイティブハンドルが取れない場合のみエラーを返します
func (h *StartupHook) Run() error {
	ref, err := h.windows.Lookup(MainWindowName)
	if errors.Is(err, ErrWindowNotFound) {
		h.logger.Debug("startup hook: %v, skipping chrome customization", err)
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.customizer.Customize(ref); err != nil {
		return err
	}

	h.logger.Debug("startup hook: chrome customized for window %q", ref.Name)
	return nil
}
