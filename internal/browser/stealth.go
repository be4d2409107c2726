package browser

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// hideWebdriverScript runs before any page script on every new document.
const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined
});`

// installStealth registers the automation-hiding script for all future documents.
func installStealth() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx)
		return err
	})
}
