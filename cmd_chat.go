package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"money-dog-go-be/controller"
	"money-dog-go-be/models"
)

var chatUser string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to Money in the terminal",
	Long: `Starts an interactive session with Money.

Commands:
  /goal <title> <amount> [deadline]   add a dream; the title runs up to the
                                      first number, or quote it: /goal "Trip 2027" 600
  /deposit <n> <amount>               save money toward dream n
  /goals                              list dreams
  /diary <text>                       write a success diary entry
  /diary-list                         show the diary
  /quit                               leave
Anything else is said to Money.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatUser, "user", "u", "", "user id (a UUID); a new one is generated when empty")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	userID := uuid.New()
	if chatUser != "" {
		if userID, err = uuid.Parse(chatUser); err != nil {
			return fmt.Errorf("invalid user id %q: %w", chatUser, err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctl, err := a.services.Factory()(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user: %s\n", userID)
	return runREPL(ctx, ctl, cmd.InOrStdin(), cmd.OutOrStdout(), a.requestTimeout())
}

// runREPL reads one line at a time until EOF or /quit.
func runREPL(ctx context.Context, ctl *controller.Controller, in io.Reader, out io.Writer, timeout time.Duration) error {
	for _, msg := range ctl.Messages() {
		fmt.Fprintf(out, "%s: %s\n", speaker(msg.Role), msg.Text)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return nil
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		err := dispatch(callCtx, ctl, line, out)
		cancel()
		if err != nil {
			fmt.Fprintf(out, "! %s\n", describe(err))
		}
	}
}

func dispatch(ctx context.Context, ctl *controller.Controller, line string, out io.Writer) error {
	if !strings.HasPrefix(line, "/") {
		reply, err := ctl.PostUserMessage(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s [%s]: %s\n", speaker(reply.Role), reply.Mood, reply.Text)
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	fields := strings.Fields(rest)
	switch name {
	case "/goal":
		title, amount, deadline, err := parseGoalArgs(rest)
		if err != nil {
			return err
		}
		goal, err := ctl.CreateGoal(ctx, title, amount, deadline)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "dream added: %s (target %s, deadline %s)\n", goal.Title, goal.TargetAmount, goal.Deadline)

	case "/deposit":
		if len(fields) != 2 {
			return errors.New("usage: /deposit <n> <amount>")
		}
		goals := ctl.Goals()
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 1 || n > len(goals) {
			return controller.ErrGoalNotFound
		}
		result, err := ctl.Deposit(ctx, goals[n-1].ID, fields[1])
		if err != nil {
			return err
		}
		g := result.Goal
		fmt.Fprintf(out, "%s: %s / %s (%s%%)\n", g.Title, g.CurrentAmount, g.TargetAmount, g.Progress())
		if result.Completed {
			fmt.Fprintln(out, "*** 梦想达成！汪！ ***")
		}

	case "/goals":
		goals := ctl.Goals()
		if len(goals) == 0 {
			fmt.Fprintln(out, "no dreams yet")
		}
		for i, g := range goals {
			fmt.Fprintf(out, "%d. %s %s / %s (%s%%) %s\n", i+1, g.Title, g.CurrentAmount, g.TargetAmount, g.Progress(), g.Deadline)
		}

	case "/diary":
		if rest == "" {
			return fmt.Errorf("usage: /diary <text>, e.g. %s", controller.DiarySuggestions[0])
		}
		entry, err := ctl.SaveDiaryEntry(ctx, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", speaker(models.RoleAssistant), entry.AIComment)

	case "/diary-list":
		entries := ctl.DiaryEntries()
		if len(entries) == 0 {
			fmt.Fprintln(out, "the diary is empty")
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %s\n    %s\n", e.CreatedAt.Format("2006-01-02"), e.Content, e.AIComment)
		}

	default:
		return fmt.Errorf("unknown command %s", name)
	}
	return nil
}

var errGoalUsage = errors.New(`usage: /goal <title> <amount> [deadline] or /goal "<title>" <amount> [deadline]`)

// parseGoalArgs splits the arguments of /goal. A quoted title may contain
// anything; an unquoted one ends at the first word that reads as a number.
func parseGoalArgs(rest string) (title, amount, deadline string, err error) {
	rest = strings.TrimSpace(rest)
	var fields []string
	if strings.HasPrefix(rest, `"`) {
		end := strings.Index(rest[1:], `"`)
		if end < 0 {
			return "", "", "", errGoalUsage
		}
		title = rest[1 : end+1]
		fields = strings.Fields(rest[end+2:])
	} else {
		words := strings.Fields(rest)
		i := 1
		for ; i < len(words); i++ {
			if _, err := decimal.NewFromString(words[i]); err == nil {
				break
			}
		}
		if len(words) == 0 || i == len(words) {
			return "", "", "", errGoalUsage
		}
		title = strings.Join(words[:i], " ")
		fields = words[i:]
	}
	if len(fields) == 0 {
		return "", "", "", errGoalUsage
	}
	return title, fields[0], strings.Join(fields[1:], " "), nil
}

func speaker(role models.Role) string {
	if role == models.RoleAssistant {
		return "Money"
	}
	return "you"
}

func describe(err error) string {
	switch {
	case errors.Is(err, controller.ErrInvalidAmount):
		return "please enter a positive amount"
	case errors.Is(err, controller.ErrGoalNotFound):
		return "no such dream, see /goals"
	default:
		return err.Error()
	}
}
