// Package browser implements the tools the agent uses to work with the
// current browser tab:
//
//   - goto_website navigates the tab and returns a text preview
//   - summarize_page asks the model for a summary of the page text
//   - fill_form fills form controls and, once confirmed, submits the form
//
// Tools talk to the tab through a PageTab (normally a *tab.Client) and never
// fail across the tool boundary for expected conditions: bad input, an
// unreachable tab or a declined submission are reported inside the result.
package browser
