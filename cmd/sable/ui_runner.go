package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sable/internal/driver"
	"sable/internal/ui"
)

type checkOutcome struct {
	results []*driver.Result
	err     error
}

// checkAllWithUI runs driver.CheckAll while a progress view follows its
// events. The view exits when the last program finishes.
func checkAllWithUI(ctx context.Context, paths []string, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		withSink := opts
		withSink.Progress = driver.ChannelSink{Ch: events}
		results, err := driver.CheckAll(ctx, paths, withSink)
		close(events)
		outcomeCh <- checkOutcome{results: results, err: err}
	}()

	title := fmt.Sprintf("checking %d program(s)", len(paths))
	program := tea.NewProgram(ui.NewProgressModel(title, paths, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// the view is gone; keep the workers from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
