//go:build !darwin

package backend

// newPlatformChromeCustomizer はmacOS以外では何もしないカスタマイザを返す
func newPlatformChromeCustomizer() ChromeCustomizer {
	return noOpChromeCustomizer{}
}
