package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"habline/internal/app"
	"habline/internal/engine"
	"habline/internal/logging"
	"habline/internal/render"
	"habline/internal/repo"
	habiticasdk "habline/sdk/go"
)

var version = "dev"

var stdout io.Writer = os.Stdout

var rootCmd = &cobra.Command{
	Use:     "hab",
	Short:   "Habitica command-line interface",
	Version: version,
	Long: `hab lists and updates your Habitica habits, dailies and todos and shows your status.

Commands that take <task-id> accept one or more ids as comma-separated lists,
ranges, or both, e.g. "hab todos done 1,3,6-9 11". Ids are the numbers shown
by the list commands.

Credentials are read from auth.cfg in the workspace:

  [Habitica]
  url = https://habitica.com
  login = <user id>
  password = <api token>
  checklists = false`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(nil, logging.Level(viper.GetBool("verbose"), viper.GetBool("debug")))
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HABITICA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("workspace", "w", ".", "directory holding auth.cfg and local state")
	flags.Bool("json", false, "output JSON")
	flags.Bool("yaml", false, "output YAML")
	flags.Bool("verbose", false, "show some logging information")
	flags.Bool("debug", false, "show all logging information")
	flags.BoolP("checklists", "c", false, "toggle displaying checklists on or off")
	flags.String("difficulty", "easy", "difficulty of new todos (easy, medium, hard)")
	for _, name := range []string{"workspace", "json", "yaml", "verbose", "debug", "checklists", "difficulty"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(habitsCmd())
	rootCmd.AddCommand(habitNotesCmd())
	rootCmd.AddCommand(dailiesCmd())
	rootCmd.AddCommand(dailyNotesCmd())
	rootCmd.AddCommand(todosCmd())
	rootCmd.AddCommand(challengesCmd())
	rootCmd.AddCommand(logCmd())
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show HP, XP, GP, and more",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				report, err := s.Engine.Status(ctx)
				if err != nil {
					return err
				}
				return printOr(report, func() {
					render.Report(stdout, report.Title, report.Fields())
				})
			})
		},
	}
}

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Show status of the Habitica service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				up, err := s.Engine.ServerUp(ctx)
				if err != nil {
					return fmt.Errorf("cannot reach Habitica server: %w", err)
				}
				if !up {
					fmt.Fprintln(stdout, "Habitica server down")
					return nil
				}
				fmt.Fprintln(stdout, "Habitica server is up")
				return nil
			})
		},
	}
}

func habitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "List habit tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Habits, func(ctx context.Context, s *app.Session, habits []habiticasdk.Task) error {
				return printHabits(habits)
			})
		},
	}
	for _, dir := range []habiticasdk.Direction{habiticasdk.Up, habiticasdk.Down} {
		dir := dir
		sign := "+"
		if dir == habiticasdk.Down {
			sign = "-"
		}
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir) + " <task-id>...",
			Short: fmt.Sprintf("%s (%s) habit <task-id>", strings.ToUpper(string(dir[:1]))+string(dir[1:]), sign),
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTasks(cmd.Context(), habiticasdk.Habits, func(ctx context.Context, s *app.Session, habits []habiticasdk.Task) error {
					habits, err := s.Engine.ScoreHabits(ctx, habits, args, dir)
					if err != nil {
						return err
					}
					return printHabits(habits)
				})
			},
		})
	}
	return cmd
}

func habitNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hb [<task-id> to <pos>]",
		Short: "List habits with notes first, or move a habit to a position",
		Args:  moveToArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Habits, func(ctx context.Context, s *app.Session, habits []habiticasdk.Task) error {
				if len(args) > 0 {
					return moveTo(ctx, s, habiticasdk.Habits, habits, args)
				}
				return printOr(habits, func() { render.HabitNotes(stdout, habits) })
			})
		},
	}
	addReorderCmds(cmd, habiticasdk.Habits, "habit")
	return cmd
}

func dailiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dailies",
		Short: "List daily tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Dailies, func(ctx context.Context, s *app.Session, dailies []habiticasdk.Task) error {
				return printTasks(s, dailies, false)
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "done <task-id>...",
		Short: "Mark daily <task-id> complete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Dailies, func(ctx context.Context, s *app.Session, dailies []habiticasdk.Task) error {
				dailies, err := s.Engine.CompleteDailies(ctx, dailies, args)
				if err != nil {
					return err
				}
				return printTasks(s, dailies, false)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "undo <task-id>...",
		Short: "Mark daily <task-id> incomplete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Dailies, func(ctx context.Context, s *app.Session, dailies []habiticasdk.Task) error {
				dailies, err := s.Engine.UndoDailies(ctx, dailies, args)
				if err != nil {
					return err
				}
				return printTasks(s, dailies, false)
			})
		},
	})
	return cmd
}

func dailyNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dl [<task-id> to <pos>]",
		Short: "List dailies with notes first, or move a daily to a position",
		Args:  moveToArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Dailies, func(ctx context.Context, s *app.Session, dailies []habiticasdk.Task) error {
				if len(args) > 0 {
					return moveTo(ctx, s, habiticasdk.Dailies, dailies, args)
				}
				return printTasks(s, dailies, true)
			})
		},
	}
	addReorderCmds(cmd, habiticasdk.Dailies, "daily")
	return cmd
}

func todosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todos [<task-id> to <pos>]",
		Short: "List todo tasks, or move a todo to a position",
		Args:  moveToArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Todos, func(ctx context.Context, s *app.Session, todos []habiticasdk.Task) error {
				if len(args) > 0 {
					return moveTo(ctx, s, habiticasdk.Todos, todos, args)
				}
				return printTasks(s, todos, false)
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "done <task-id>...",
		Short: "Mark one or more todo <task-id> completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Todos, func(ctx context.Context, s *app.Session, todos []habiticasdk.Task) error {
				todos, err := s.Engine.CompleteTodos(ctx, todos, args)
				if err != nil {
					return err
				}
				return printTasks(s, todos, false)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <task>...",
		Short: "Add todo with description <task>",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Todos, func(ctx context.Context, s *app.Session, todos []habiticasdk.Task) error {
				todos, err := s.Engine.AddTodo(ctx, todos, strings.Join(args, " "), viper.GetString("difficulty"))
				if err != nil {
					return err
				}
				return printTasks(s, todos, false)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <task-id>...",
		Short: "Delete one or more todo <task-id>",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd.Context(), habiticasdk.Todos, func(ctx context.Context, s *app.Session, todos []habiticasdk.Task) error {
				todos, err := s.Engine.DeleteTodos(ctx, todos, args)
				if err != nil {
					return err
				}
				return printTasks(s, todos, false)
			})
		},
	})
	addReorderCmds(cmd, habiticasdk.Todos, "todo")
	return cmd
}

// addReorderCmds adds `top` and `tob` to a list command.
func addReorderCmds(parent *cobra.Command, taskType habiticasdk.TaskType, noun string) {
	for _, d := range []struct {
		use, short string
		dest       engine.Destination
	}{
		{"top", "Move %ss to the top of the list", engine.ToTop()},
		{"tob", "Move %ss to the bottom of the list", engine.ToBottom()},
	} {
		d := d
		parent.AddCommand(&cobra.Command{
			Use:   d.use + " <task-id>...",
			Short: fmt.Sprintf(d.short, noun),
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTasks(cmd.Context(), taskType, func(ctx context.Context, s *app.Session, tasks []habiticasdk.Task) error {
					return s.Engine.Move(ctx, taskType, tasks, args, d.dest)
				})
			},
		})
	}
}

// moveToArgs accepts either nothing or `<task-id> to <pos>`.
func moveToArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 3 || args[1] != "to" {
		return fmt.Errorf("expected `%s <task-id> to <pos>`", cmd.Name())
	}
	return nil
}

func moveTo(ctx context.Context, s *app.Session, taskType habiticasdk.TaskType, tasks []habiticasdk.Task, args []string) error {
	pos, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("position %q is not a number", args[2])
	}
	dest, err := engine.ToPosition(pos)
	if err != nil {
		return err
	}
	return s.Engine.Move(ctx, taskType, tasks, args[:1], dest)
}

func challengesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cs",
		Short: "List challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				items, err := s.Engine.Challenges(ctx)
				if err != nil {
					return err
				}
				return printOr(items, func() { render.Challenges(stdout, items) })
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "listbroken",
		Short: "List broken (closed) challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				return printBroken(ctx, s)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove tasks of broken challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				if _, err := s.Engine.CleanChallenges(ctx); err != nil {
					return err
				}
				return printBroken(ctx, s)
			})
		},
	})
	return cmd
}

func printBroken(ctx context.Context, s *app.Session) error {
	broken, err := s.Engine.BrokenChallenges(ctx)
	if err != nil {
		return err
	}
	return printOr(broken, func() {
		if len(broken) == 0 {
			fmt.Fprintln(stdout, "There are no broken challenges")
			return
		}
		fmt.Fprintln(stdout, "Broken challenges (already closed while have some tasks belong to them):")
		seen := map[string]bool{}
		for _, b := range broken {
			key := b.Reason + "|" + b.ShortName
			if seen[key] {
				continue
			}
			seen[key] = true
			fmt.Fprintf(stdout, "> %s: [%s]\n", b.Reason, b.ShortName)
		}
		fmt.Fprintln(stdout, "Tasks that have broken challenges:")
		for _, b := range broken {
			fmt.Fprintf(stdout, "> [%s]\t[%s]\t[%s]\n", b.TaskType, b.Notes, b.Text)
		}
	})
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Local log of changes sent to Habitica",
	}
	var n int
	var evtType string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.OpenState(cmd.Context(), viper.GetString("workspace"))
			if err != nil {
				return err
			}
			defer conn.Close()
			items, err := repo.Repo{DB: conn}.LatestEvents(cmd.Context(), n, evtType)
			if err != nil {
				return err
			}
			return printOr(items, func() { render.Events(stdout, items) })
		},
	}
	tail.Flags().IntVar(&n, "n", 20, "number of events")
	tail.Flags().StringVar(&evtType, "type", "", "event type filter")
	log.AddCommand(tail)
	return log
}

// --- helpers ---

func withSession(ctx context.Context, fn func(context.Context, *app.Session) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := app.Open(ctx, viper.GetString("workspace"), stdout)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func withTasks(ctx context.Context, taskType habiticasdk.TaskType, fn func(context.Context, *app.Session, []habiticasdk.Task) error) error {
	return withSession(ctx, func(ctx context.Context, s *app.Session) error {
		tasks, err := s.Engine.Tasks(ctx, taskType)
		if err != nil {
			return err
		}
		return fn(ctx, s, tasks)
	})
}

func renderOptions(s *app.Session, noteFirst bool) render.Options {
	return render.Options{
		Checklists: s.Config.Checklists != viper.GetBool("checklists"),
		NoteFirst:  noteFirst,
	}
}

func printTasks(s *app.Session, tasks []habiticasdk.Task, noteFirst bool) error {
	return printOr(tasks, func() { render.Tasks(stdout, tasks, renderOptions(s, noteFirst)) })
}

func printHabits(habits []habiticasdk.Task) error {
	return printOr(habits, func() { render.Habits(stdout, habits) })
}

// printOr writes v as JSON or YAML when requested, otherwise calls human.
func printOr(v any, human func()) error {
	switch {
	case viper.GetBool("json"):
		return printJSON(v)
	case viper.GetBool("yaml"):
		return printYAML(v)
	}
	human()
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
