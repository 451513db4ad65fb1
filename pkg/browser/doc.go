// Package browser provides the Playwright tab backend and the backend
// selector used by the binaries.
//
// Launch starts the Playwright driver and one Chromium window. The returned
// Session satisfies tab.Conn and always addresses the page the user is on:
// a popup or new tab becomes current, and closing it returns to the page
// before.
//
// # Example Usage
//
//	session, err := browser.Launch(browser.LaunchOptions{Headless: true})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	client := tab.NewClient(session)
//	err = client.Navigate(ctx, "https://example.com/")
//
// Open picks a backend (playwright, chrome or static) from the browser
// settings and returns a ready tab.
package browser
