package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panorama/internal/httpc"
)

var serverURL string

var sessionsCmd = &cobra.Command{
	Use:   "sessions [id]",
	Short: "List connected players, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listSessions,
}

var controlCmd = &cobra.Command{
	Use:   "control <id> <action> [value]",
	Short: "Send a transport control to a connected player",
	Long: `Actions: play, pause, toggle-play, fullscreen, load, set-url, clear-url, skip.

  vrplayer control demo set-url https://example.com/pano.mp4
  vrplayer control demo skip`,
	Args: cobra.RangeArgs(2, 3),
	RunE: sendControl,
}

func init() {
	rootCmd.AddCommand(sessionsCmd, controlCmd)

	for _, c := range []*cobra.Command{sessionsCmd, controlCmd} {
		c.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "player server base URL")
	}
}

func listSessions(cmd *cobra.Command, args []string) error {
	api := httpc.New(serverURL)

	if len(args) == 1 {
		info, err := api.Session(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	list, err := api.Sessions(cmd.Context())
	if err != nil {
		return err
	}
	if list.Count == 0 {
		fmt.Println("No players connected")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tPOSITION\tYAW\tPITCH\tURL")
	for _, s := range list.Sessions {
		state := "playing"
		if s.UI.PlayVisible() {
			state = "paused"
		}
		fmt.Fprintf(w, "%s\t%s\t%s/%s\t%.1f\t%.1f\t%s\n",
			s.ID, state, s.UI.Elapsed, s.UI.DurationLabel,
			s.Orientation.Yaw, s.Orientation.Pitch, s.UI.URL)
	}
	return w.Flush()
}

func sendControl(cmd *cobra.Command, args []string) error {
	var value string
	if len(args) == 3 {
		value = args[2]
	}
	if err := httpc.New(serverURL).Control(cmd.Context(), args[0], args[1], value); err != nil {
		return err
	}
	fmt.Printf("sent %s to %s\n", args[1], args[0])
	return nil
}
