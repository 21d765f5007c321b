package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panorama/internal/log"
	"github.com/teslashibe/go-panorama/pkg/remote"
)

var (
	replaySettle  time.Duration
	replayVerbose bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <ws-url> <script.yaml>",
	Short: "Play a scripted session against a running server",
	Long: `Connects to a player endpoint such as ws://localhost:8080/ws/player/demo
as a simulated page, performs every step in the script and prints the final
controls state.`,
	Args: cobra.ExactArgs(2),
	RunE: replay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().DurationVar(&replaySettle, "settle", 500*time.Millisecond, "time to wait for responses after the last step")
	replayCmd.Flags().BoolVarP(&replayVerbose, "verbose", "v", false, "print each step as it is sent")
}

func replay(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	script, err := remote.LoadScript(args[1])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := remote.Dial(ctx, args[0])
	if err != nil {
		return err
	}
	defer client.Close()

	page := remote.NewPage(client, script.Duration)
	go func() {
		if err := client.Run(ctx); err != nil && ctx.Err() == nil {
			log.Warn("connection ended", "error", err)
		}
	}()

	runner := remote.NewRunner(page)
	if replayVerbose {
		runner.OnStep = func(i int, step remote.Step) {
			data, _ := json.Marshal(step)
			fmt.Printf("step %d: %s\n", i, data)
		}
	}
	if err := runner.Run(ctx, script); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(replaySettle):
	}

	out, err := json.MarshalIndent(struct {
		Session  string `json:"session"`
		UI       any    `json:"ui"`
		Rotation any    `json:"rotation"`
		Media    any    `json:"media"`
	}{page.SessionID(), page.UI(), page.Rotation(), page.Media()}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
