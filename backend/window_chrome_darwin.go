//go:build darwin

package backend

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#include <stdlib.h>
#include <dispatch/dispatch.h>
#import <Cocoa/Cocoa.h>

static void RunOnMainThread(void (^work)(void)) {
	if ([NSThread isMainThread]) {
		work();
	} else {
		dispatch_sync(dispatch_get_main_queue(), work);
	}
}

static void* FindWindowByTitle(const char *titleC) {
	__block void *found = NULL;
	@autoreleasepool {
		NSString *title = titleC ? [NSString stringWithUTF8String:titleC] : @"";
		RunOnMainThread(^{
			if (NSApp == nil) {
				return;
			}
			for (NSWindow *window in [NSApp windows]) {
				if ([[window title] isEqualToString:title]) {
					found = (void *)window;
					return;
				}
			}
		});
	}
	return found;
}

// 2つの属性は同じメインスレッドブロック内で続けて設定し、途中のフレームを見せない
static void ApplyTitlebarStyle(void *ptr, int hideTitle, int transparent) {
	NSWindow *window = (NSWindow *)ptr;
	RunOnMainThread(^{
		[window setTitleVisibility:(hideTitle ? NSWindowTitleHidden : NSWindowTitleVisible)];
		[window setTitlebarAppearsTransparent:(transparent ? YES : NO)];
	});
}
*/
import "C"

import (
	"errors"
	"unsafe"
)

// nsWindow はNSWindowへの非所有参照。フック実行中のみ使用し、保持しない
type nsWindow struct {
	handle unsafe.Pointer
}

func (w nsWindow) ApplyChrome(style ChromeStyle) {
	hideTitle := 0
	if style.TitleVisibility == TitleHidden {
		hideTitle = 1
	}
	transparent := 0
	if style.TitlebarTransparent {
		transparent = 1
	}
	C.ApplyTitlebarStyle(w.handle, C.int(hideTitle), C.int(transparent))
}

// asNativeWindow はウィンドウ参照をNSWindowに変換する
// 生ポインタを扱うのはこの関数だけ
func asNativeWindow(ref WindowRef) (NativeWindow, error) {
	cTitle := C.CString(ref.Title)
	defer C.free(unsafe.Pointer(cTitle))

	handle := C.FindWindowByTitle(cTitle)
	if handle == nil {
		return nil, errors.New("no NSWindow with title " + ref.Title)
	}
	return nsWindow{handle: handle}, nil
}

// newPlatformChromeCustomizer はmacOSでネイティブクロームを変更するカスタマイザを返す
func newPlatformChromeCustomizer() ChromeCustomizer {
	return &nativeChromeCustomizer{resolve: asNativeWindow}
}
