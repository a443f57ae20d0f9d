// Package ui implements an interactive terminal browser for the catalog using bubbletea's Elm architecture.
//
// The TUI has three tabs:
//  1. [BooksView] : Page through books with search, sort and page size controls
//  2. [ReadersView] : The same controls over readers and what they are reading
//  3. [StatsView] : Totals and items created today, loaded with live progress
//
// Each list tab owns its own listview model, so switching away and back keeps
// the page, sort and search it was left with. Every fetch carries a sequence
// number and responses to superseded requests are dropped.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// View state is handed to a [StateSaver] on tab switches and on quit.
package ui
