package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/screens/missed"
)

var missedCmd = &cobra.Command{
	Use:   "missed",
	Short: "List or clear the questions you got wrong",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMissedList(cmd)
	},
}

var missedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List missed questions grouped by section",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMissedList(cmd)
	},
}

var missedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every missed question",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		rt, l, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if !yes {
			fmt.Printf("Clear all missed questions for %s? [y/N] ", l.Identity())
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if !strings.EqualFold(strings.TrimSpace(line), "y") {
				fmt.Println("Nothing removed.")
				return nil
			}
		}
		if err := l.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Missed questions cleared.")
		return nil
	},
}

var missedUsersCmd = &cobra.Command{
	Use:   "identities",
	Short: "List identities that have missed questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		ids, err := rt.store.Ledger().Identities(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No missed questions recorded.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	missedClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	missedCmd.AddCommand(missedListCmd)
	missedCmd.AddCommand(missedClearCmd)
	missedCmd.AddCommand(missedUsersCmd)
}

// openLedger opens the ledger of the signed-in user, or the guest ledger.
func openLedger(cmd *cobra.Command) (*runtime, *ledger.Store, error) {
	rt, err := openRuntime(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	provider, err := rt.signIn(cmd)
	if err != nil {
		rt.Close()
		return nil, nil, err
	}
	key, _ := auth.Resolve(provider, ledger.AnonymousIdentity)
	return rt, ledger.New(rt.store.Ledger(), key), nil
}

func runMissedList(cmd *cobra.Command) error {
	rt, l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	all, err := l.ListAll(cmd.Context())
	if err != nil {
		return err
	}
	printMissed(os.Stdout, missed.Groups(all))
	return nil
}

func printMissed(w io.Writer, groups []missed.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No missed questions. Great job! 🎉")
		return
	}
	sep := strings.Repeat("─", 60)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", g.Title(), len(g.Entries))
		fmt.Fprintln(w, sep)
		for _, e := range g.Entries {
			fmt.Fprintf(w, "• %s\n", e.Prompt)
			if e.CorrectAnswer != "" {
				fmt.Fprintf(w, "  Answer: %s\n", e.CorrectAnswer)
			}
		}
	}
}
