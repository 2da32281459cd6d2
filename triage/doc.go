// Package triage holds the view state behind the email triage screens: the
// list page with its selection set, the reply page state machine, and the
// presentational helpers used to render an email card. It knows nothing about
// terminals; the tui and classic frontends both drive these types.
package triage
