// Package page holds the DOM-side logic of pagepilot: rendering a page to
// plain text and matching caller-supplied form fields onto controls.
//
// Both work on a snapshot of the page's HTML parsed with goquery. Controls,
// submit buttons and forms are addressed by their index in document order
// so a Driver can repeat each change against the live page:
//
//	controls:       input, textarea, select
//	submit buttons: button[type="submit"], input[type="submit"]
//	forms:          form
package page
