package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-whack/internal/games/whack"
	"github.com/vovakirdan/tui-whack/internal/platform/tui"
	"github.com/vovakirdan/tui-whack/internal/storage"
)

var (
	flagScoresLimit int
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top high scores, the most recent rounds, and overall stats.

Examples:
  whack scores
  whack scores --limit 20
  whack scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive scoreboard",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores and rounds to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all scores and round history")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearScores(whack.GameID); err != nil {
			return err
		}
		fmt.Println("Scores cleared.")
		return nil
	}

	scores, err := store.TopScores(whack.GameID, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Println("High Scores - Whack-a-Mole")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'whack play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	rounds, err := store.RecentRounds(flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving rounds: %w", err)
	}
	if len(rounds) > 0 {
		fmt.Println()
		fmt.Println("Recent Rounds")
		fmt.Println()
		fmt.Printf("  %-16s  %-6s  %-6s  %-8s  %s\n", "Started", "Score", "Misses", "Time", "Result")
		for _, r := range rounds {
			result := "completed"
			if r.Interrupted {
				result = "interrupted"
			}
			fmt.Printf("  %-16s  %-6d  %-6d  %-8s  %s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.Score, r.Misses(),
				r.Elapsed.Round(100*time.Millisecond),
				result,
			)
		}
	}

	if stats, err := store.GetGameStats(whack.GameID); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d   Average: %.1f   Rounds: %d (%d interrupted)   Accuracy: %.0f%%\n",
			stats.HighScore, stats.AvgScore, stats.Rounds, stats.Interrupted, stats.Accuracy()*100)
	}
	return nil
}

func runBoard(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	return tui.RunScoreboard(store, width, height)
}
