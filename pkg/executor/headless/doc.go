// Package headless implements the headless executor, which runs one
// PagePilot task without a terminal.
//
// A task file names the request, the page to start on and the pages on
// which the agent may submit forms:
//
//	task: "Subscribe to the newsletter with ops@example.com"
//	start_url: "https://example.com/newsletter"
//	constraints:
//	  allowed_urls: ["https://example.com/**"]
//	  denied_urls: ["https://example.com/admin/**"]
//	  max_tokens: 20000
//	  timeout: 2m
//	artifacts:
//	  enabled: true
//	  output_dir: ".pagepilot/artifacts"
//
// The executor opens the start URL, sends the task to the agent and answers
// every submission request itself: denied patterns win, and a page must
// match an allowed pattern to be submitted. Without allowed patterns no
// form is ever submitted.
//
// Example usage:
//
//	config, _ := headless.LoadConfig("task.yaml")
//	executor, _ := headless.NewExecutor(ag, config, headless.WithNavigator(client))
//	if err := executor.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Artifacts:
//
// The artifact writer generates execution reports:
// - execution.json: Full execution summary
// - summary.md: Human-readable markdown summary
// - metrics.json: Execution metrics
package headless
