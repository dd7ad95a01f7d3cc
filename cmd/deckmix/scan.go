package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/deckmix/internal/config"
	"github.com/satindergrewal/deckmix/internal/decode"
	"github.com/satindergrewal/deckmix/internal/library"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.Faint)
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "List the tracks deckmix would load from a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		paths, err := library.ScanDir(args[0], decode.IsAudioFile)
		if err != nil {
			return err
		}
		return printScan(cmd, newDecoder(cfg), paths)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func printScan(cmd *cobra.Command, prober library.Prober, paths []string) error {
	out := cmd.OutOrStdout()
	var total time.Duration
	var failed int
	for i, p := range paths {
		title := library.TitleFromPath(p)
		dur, err := prober.Probe(p)
		if err != nil {
			failed++
			yellow.Fprintf(out, "%4d  %-40s  unreadable: %v\n", i, title, err)
			continue
		}
		total += dur
		green.Fprintf(out, "%4d  %-40s  %s\n", i, title, formatDuration(dur))
	}
	faint.Fprintf(out, "%d tracks, %d unreadable, %s total\n", len(paths), failed, formatDuration(total))
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
