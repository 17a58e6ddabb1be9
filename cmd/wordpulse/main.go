// Package main provides the CLI entrypoint for wordpulse.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wordpulse/wordpulse/internal/analytics"
	"github.com/wordpulse/wordpulse/internal/config"
	"github.com/wordpulse/wordpulse/internal/model"
	"github.com/wordpulse/wordpulse/internal/report"
	"github.com/wordpulse/wordpulse/internal/seed"
	"github.com/wordpulse/wordpulse/internal/srs"
	"github.com/wordpulse/wordpulse/internal/store"
	"github.com/wordpulse/wordpulse/internal/xlsx"
)

const (
	defaultUser        = "default"
	defaultPeriod      = "week"
	defaultCurveWindow = 5
	defaultPlotHeight  = 10
	defaultDueLimit    = 20
	defaultSeedDays    = 60
	defaultSeedValue   = 1
	defaultDailyGoal   = 20
)

var (
	reportUser     string
	reportPeriod   string
	reportChart    bool
	reportWeekly   bool
	reportSessions bool
	reportSince    string
	reportUntil    string
	reportLevels   []string
	reportTypes    []string
	reportWindow   int
	reportWidth    int
	reportHeight   int
	reportColor    bool

	reviewUser    string
	reviewCorrect bool
	reviewWrong   bool

	dueUser  string
	dueLimit int

	seedUser  string
	seedDays  int
	seedGoal  int
	seedValue int64

	importUser          string
	importFile          string
	importProgressSheet string
	importSessionsSheet string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordpulse",
		Short:         "Vocabulary learning analytics and review scheduling",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReportCmd,
	}
	addReportFlags(rootCmd)

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newDueCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportUser, "user", defaultUser, "user id")
	cmd.Flags().StringVar(&reportPeriod, "period", defaultPeriod, "analysis window: week, month, quarter, all")
	cmd.Flags().BoolVar(&reportChart, "chart", false, "plot deep-memory vs. minutes chart")
	cmd.Flags().BoolVar(&reportWeekly, "weekly", false, "show the ISO-week roll-up table")
	cmd.Flags().BoolVar(&reportSessions, "sessions", false, "plot session performance over time")
	cmd.Flags().StringVar(&reportSince, "since", "", "chart start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reportUntil, "until", "", "chart end date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&reportLevels, "level", nil, "session difficulty filter (A1..C1)")
	cmd.Flags().StringSliceVar(&reportTypes, "type", nil, "session type filter (flashcards, quiz, listening, writing)")
	cmd.Flags().IntVar(&reportWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&reportWidth, "width", 0, "plot width in columns (default: terminal width)")
	cmd.Flags().IntVar(&reportHeight, "height", defaultPlotHeight, "plot height in rows")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored plots")
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show learning analytics",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addReportFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &reportUser, fileCfg.User.ID)
	applyStringConfig(cmd, "period", &reportPeriod, fileCfg.Report.Period)
	applyBoolConfig(cmd, "chart", &reportChart, fileCfg.Report.Chart)
	applyBoolConfig(cmd, "weekly", &reportWeekly, fileCfg.Report.Weekly)

	period, err := model.ParsePeriod(reportPeriod)
	if err != nil {
		return fmt.Errorf("invalid --period value: %w", err)
	}
	opts := analyticsOptions(fileCfg.Analytics)
	timeRange, err := parseTimeRange(reportSince, reportUntil)
	if err != nil {
		return err
	}
	levels, err := parseLevels(reportLevels)
	if err != nil {
		return err
	}
	types, err := parseTypes(reportTypes)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	progress, err := st.ListProgress(ctx, reportUser)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	sessions, err := st.ListSessions(ctx, reportUser)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	result, err := analytics.Generate(reportUser, progress, sessions, period, opts)
	if err != nil {
		return err
	}
	if err := report.RenderAnalytics(out, result); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if reportChart {
		data, err := analytics.BuildChartData(progress)
		if err != nil {
			return err
		}
		data = analytics.FilterChartData(data, timeRange)
		if err := report.RenderChart(out, data, reportWidth, reportHeight, reportColor); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if reportWeekly {
		if err := report.RenderWeekly(out, analytics.WeeklyRollup(progress)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if reportSessions {
		series, err := analytics.BuildSessionSeries(sessions)
		if err != nil {
			return err
		}
		series = analytics.FilterSessionSeries(series, timeRange, levels, types)
		if err := report.RenderSessions(out, series, reportWindow, reportWidth, reportHeight, reportColor); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <word>",
		Short: "Record a review result and reschedule the word",
		Args:  cobra.ExactArgs(1),
		RunE:  runReviewCmd,
	}
	cmd.Flags().StringVar(&reviewUser, "user", defaultUser, "user id")
	cmd.Flags().BoolVar(&reviewCorrect, "correct", false, "the answer was correct")
	cmd.Flags().BoolVar(&reviewWrong, "incorrect", false, "the answer was incorrect")
	return cmd
}

func runReviewCmd(cmd *cobra.Command, args []string) error {
	if reviewCorrect == reviewWrong {
		return fmt.Errorf("exactly one of --correct or --incorrect is required")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &reviewUser, fileCfg.User.ID)

	scheduler, err := newScheduler(fileCfg.Scheduler)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	now := time.Now().UTC()
	wordID := strings.TrimSpace(args[0])

	word, err := st.GetWordStrength(ctx, reviewUser, wordID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		word = model.NewWordStrength(reviewUser, wordID, now)
	}

	updated, schedule, err := scheduler.Review(word, reviewCorrect, now)
	if err != nil {
		return err
	}
	if err := st.PutWordStrength(ctx, updated); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s: next review %s (%dd, %s priority, %.0f%% predicted recall)\n",
		wordID,
		schedule.NextReview.Format("2006-01-02"),
		schedule.IntervalDays,
		schedule.Priority,
		schedule.PredictedSuccessRate,
	); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List words due for review",
		Args:  cobra.NoArgs,
		RunE:  runDueCmd,
	}
	cmd.Flags().StringVar(&dueUser, "user", defaultUser, "user id")
	cmd.Flags().IntVar(&dueLimit, "limit", defaultDueLimit, "maximum words to list (0 = no limit)")
	return cmd
}

func runDueCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &dueUser, fileCfg.User.ID)

	scheduler, err := newScheduler(fileCfg.Scheduler)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	now := time.Now().UTC()
	words, err := st.ListWordStrengths(ctx, dueUser)
	if err != nil {
		return fmt.Errorf("failed to load word strengths: %w", err)
	}

	due := scheduler.DueWords(words, now, dueLimit)
	rows := make([]report.DueRow, 0, len(due))
	for _, w := range due {
		rows = append(rows, report.DueRow{
			WordID:        w.WordID,
			NextReview:    w.NextReview,
			IntervalDays:  w.IntervalDays,
			Priority:      scheduler.QueuePriority(w, now),
			PredictedRate: scheduler.PredictedSuccessRate(w, now),
		})
	}
	if err := report.RenderDue(cmd.OutOrStdout(), rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with synthetic history",
		Args:  cobra.NoArgs,
		RunE:  runSeedCmd,
	}
	cmd.Flags().StringVar(&seedUser, "user", defaultUser, "user id")
	cmd.Flags().IntVar(&seedDays, "days", defaultSeedDays, "days of history to generate")
	cmd.Flags().IntVar(&seedGoal, "goal", defaultDailyGoal, "daily goal in words")
	cmd.Flags().Int64Var(&seedValue, "seed", defaultSeedValue, "random seed")
	return cmd
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &seedUser, fileCfg.User.ID)
	applyIntConfig(cmd, "goal", &seedGoal, fileCfg.User.DailyGoal)

	history, err := seed.New(seedValue).Generate(seedUser, seedDays, seedGoal, time.Now().UTC())
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	for _, p := range history.Progress {
		if err := st.UpsertProgress(ctx, p); err != nil {
			return fmt.Errorf("failed to store progress: %w", err)
		}
	}
	for _, s := range history.Sessions {
		if _, err := st.InsertSession(ctx, s); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
	}
	for _, w := range history.Strengths {
		if err := st.PutWordStrength(ctx, w); err != nil {
			return fmt.Errorf("failed to store word strength: %w", err)
		}
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d days, %d sessions, %d words for %s\n",
		len(history.Progress), len(history.Sessions), len(history.Strengths), seedUser); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import progress and session logs from Excel or CSV",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importUser, "user", defaultUser, "user id")
	cmd.Flags().StringVar(&importFile, "file", "", "path to the .xlsx or .csv file")
	cmd.Flags().StringVar(&importProgressSheet, "progress-sheet", "Progress", "sheet holding daily progress rows")
	cmd.Flags().StringVar(&importSessionsSheet, "sessions-sheet", "Sessions", "sheet holding session rows")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	if importFile == "" {
		return fmt.Errorf("--file is required")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &importUser, fileCfg.User.ID)

	cfg := xlsx.DefaultImportConfig()
	cfg.Path = importFile
	cfg.UserID = importUser
	cfg.ProgressSheet = importProgressSheet
	cfg.SessionsSheet = importSessionsSheet

	progress, sessions, result, err := xlsx.Import(cfg)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	for _, p := range progress {
		if err := st.UpsertProgress(ctx, p); err != nil {
			return fmt.Errorf("failed to store progress: %w", err)
		}
	}
	for _, s := range sessions {
		if _, err := st.InsertSession(ctx, s); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Imported %d progress rows, %d sessions (%d skipped)\n",
		result.ProgressRows, result.SessionRows, result.Skipped); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, msg := range result.Errors {
		logErrln(msg)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func newScheduler(c config.SchedulerConfig) (*srs.Scheduler, error) {
	params := srs.DefaultParams()
	applyIntValue(&params.MinIntervalDays, c.MinIntervalDays)
	applyIntValue(&params.MaxIntervalDays, c.MaxIntervalDays)
	applyFloatValue(&params.MinEase, c.MinEase)
	applyFloatValue(&params.EaseBonus, c.EaseBonus)
	applyFloatValue(&params.EasePenalty, c.EasePenalty)
	applyFloatValue(&params.StreakDamping, c.StreakDamping)
	applyFloatValue(&params.StrengthGain, c.StrengthGain)
	applyFloatValue(&params.StrengthDecay, c.StrengthDecay)
	applyFloatValue(&params.ConfidenceGain, c.ConfidenceGain)
	applyFloatValue(&params.ConfidenceDecay, c.ConfidenceDecay)
	applyFloatValue(&params.StabilityScale, c.StabilityScale)
	applyIntValue(&params.GraduationReviews, c.GraduationReviews)
	applyIntValue(&params.MasteredReviews, c.MasteredReviews)
	applyFloatValue(&params.MasteredStrength, c.MasteredStrength)
	applyIntValue(&params.MasteredIntervalDays, c.MasteredIntervalDays)
	applyIntValue(&params.ShortIntervalDays, c.ShortIntervalDays)
	applyIntValue(&params.OverdueUrgentDays, c.OverdueUrgentDays)
	return srs.New(params)
}

func analyticsOptions(c config.AnalyticsConfig) analytics.Options {
	opts := analytics.DefaultOptions()
	applyFloatValue(&opts.MinAccuracy, c.MinAccuracy)
	applyFloatValue(&opts.LowRetention, c.LowRetention)
	applyFloatValue(&opts.LowConsistency, c.LowConsistency)
	applyFloatValue(&opts.LowMinutesPerDay, c.LowMinutesPerDay)
	applyFloatValue(&opts.StrongAccuracy, c.StrongAccuracy)
	applyFloatValue(&opts.StrongConsistency, c.StrongConsistency)
	applyIntValue(&opts.MinStreakBroken, c.MinStreakBroken)
	applyFloatValue(&opts.ConsistencyK, c.ConsistencyK)
	applyFloatValue(&opts.TimeWeight, c.TimeWeight)
	applyFloatValue(&opts.GoalWeight, c.GoalWeight)
	return opts
}

func parseTimeRange(since, until string) (analytics.TimeRange, error) {
	var r analytics.TimeRange
	if since != "" {
		parsed, err := time.Parse("2006-01-02", since)
		if err != nil {
			return r, fmt.Errorf("invalid --since value: %w", err)
		}
		r.From = parsed
	}
	if until != "" {
		parsed, err := time.Parse("2006-01-02", until)
		if err != nil {
			return r, fmt.Errorf("invalid --until value: %w", err)
		}
		r.To = parsed
	}
	return r, nil
}

func parseLevels(values []string) ([]model.Difficulty, error) {
	out := make([]model.Difficulty, 0, len(values))
	for _, v := range values {
		d := model.Difficulty(strings.ToUpper(strings.TrimSpace(v)))
		if !d.IsValid() {
			return nil, fmt.Errorf("unknown difficulty %q (use A1..C1)", v)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseTypes(values []string) ([]model.SessionType, error) {
	out := make([]model.SessionType, 0, len(values))
	for _, v := range values {
		t := model.SessionType(strings.ToLower(strings.TrimSpace(v)))
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown session type %q", v)
		}
		out = append(out, t)
	}
	return out, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntValue(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func applyFloatValue(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wordpulse configuration
# Uncomment a value to enable it. CLI flags override config values.

[user]
# id = %q                 # User id for all commands
# daily-goal = 20         # Words per day

[scheduler]
# max-interval-days = 365 # Longest allowed review interval
# min-ease = 1.3          # Ease factor floor
# ease-bonus = 0.1        # Ease gain on a correct answer
# ease-penalty = 0.2      # Ease loss on a lapse
# stability-scale = 2.0   # Memory decay scale for predicted recall
# overdue-urgent-days = 7 # Days overdue before a word turns urgent

[analytics]
# min-accuracy = 70.0     # Below this, recommend reviewing fundamentals
# low-retention = 50.0    # Below this, urgent foundation work
# low-consistency = 50.0  # Below this, recommend a fixed schedule

[report]
# period = %q             # Default analysis window
# chart = false           # Always plot the progress chart
# weekly = false          # Always show the weekly table
`,
		defaultUser,
		defaultPeriod,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
