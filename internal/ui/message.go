package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/libcat/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFetched MsgKind = iota
	MsgProgressUpdate
	MsgStatsComplete
	MsgStateSaved
)

// fetchResult carries one completed collection request. seq identifies the
// request so that responses to superseded requests can be dropped.
type fetchResult struct {
	collection string
	seq        int
	items      any
	err        error
}

// fetchedMsg is the constructor for [MsgFetched]
func fetchedMsg(collection string, seq int, items any, err error) Msg {
	return Msg{kind: MsgFetched, data: fetchResult{collection, seq, items, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// statsCompleteMsg is the constructor for [MsgStatsComplete]
func statsCompleteMsg(stats *tasks.Stats, err error) Msg {
	return Msg{
		kind: MsgStatsComplete,
		data: struct {
			stats *tasks.Stats
			err   error
		}{stats, err},
	}
}

// stateSavedMsg is the constructor for [MsgStateSaved]
func stateSavedMsg(err error) Msg {
	return Msg{kind: MsgStateSaved, data: err}
}
