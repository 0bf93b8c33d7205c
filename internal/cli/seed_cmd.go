package cli

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
	"github.com/horizon/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions 控制演示数据的规模
type SeedOptions struct {
	Username string
	Password string
	Weeks    int
	Seed     uint64
}

// SeedReport 汇总本次写入的数据量
type SeedReport struct {
	UserID        uint
	Projects      int
	Habits        int
	Completions   int
	Tasks         int
	FocusSessions int
}

var (
	seedProjects = []service.ProjectInput{
		{Name: "Work", Color: "#83a598"},
		{Name: "Personal", Color: "#d3869b"},
		{Name: "Learning", Color: "#fabd2f"},
	}

	seedHabits = []struct {
		input  service.HabitInput
		chance float64
	}{
		{service.HabitInput{Name: "Read 20 pages", Color: "#8ec07c"}, 0.8},
		{service.HabitInput{Name: "Morning run", Color: "#fb4934"}, 0.55},
		{service.HabitInput{Name: "Meditate", Color: "#b8bb26", Description: "Ten minutes, **no phone**."}, 0.7},
		{service.HabitInput{Name: "Inbox zero", Color: "#fe8019"}, 0.4},
	}

	seedTaskTitles = []string{
		"Review pull requests",
		"Write weekly update",
		"Plan sprint goals",
		"Refactor settings page",
		"Read chapter notes",
		"Pay bills",
		"Update resume",
		"Sketch dashboard ideas",
	}
)

func newSeedCmd(app *App) *cobra.Command {
	opts := SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate deterministic demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Seed(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded user %s (id %d)\n", opts.Username, report.UserID)
			fmt.Fprintf(out, "  projects:       %d\n", report.Projects)
			fmt.Fprintf(out, "  habits:         %d\n", report.Habits)
			fmt.Fprintf(out, "  completions:    %d\n", report.Completions)
			fmt.Fprintf(out, "  tasks:          %d\n", report.Tasks)
			fmt.Fprintf(out, "  focus sessions: %d\n", report.FocusSessions)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Username, "user", "demo", "Account to seed")
	cmd.Flags().StringVar(&opts.Password, "password", "horizon-demo", "Password used when the account does not exist")
	cmd.Flags().IntVar(&opts.Weeks, "weeks", 12, "Weeks of history to generate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 42, "Random seed")
	return cmd
}

// Seed 写入演示数据。相同参数重复执行不会产生重复记录。
func (a *App) Seed(opts SeedOptions) (SeedReport, error) {
	if opts.Weeks < 1 || opts.Weeks > 53 {
		return SeedReport{}, fmt.Errorf("--weeks must be between 1 and 53, got %d", opts.Weeks)
	}

	user, err := a.seedUser(opts.Username, opts.Password)
	if err != nil {
		return SeedReport{}, err
	}
	report := SeedReport{UserID: user.ID}

	rng := rand.New(rand.NewPCG(opts.Seed, uint64(user.ID)))
	now := a.now()
	today := metrics.StartOfDay(now)
	first := metrics.AddDays(today, -(opts.Weeks*7 - 1))

	projects := service.NewProjectService(a.DB)
	projectIDs := make([]uint, 0, len(seedProjects))
	for _, input := range seedProjects {
		var existing db.Project
		err := a.DB.Where("user_id = ? AND name = ?", user.ID, input.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, err := projects.Create(user.ID, input)
			if err != nil {
				return report, err
			}
			existing = *created
		} else if err != nil {
			return report, fmt.Errorf("finding project: %w", err)
		}
		projectIDs = append(projectIDs, existing.ID)
		report.Projects++
	}

	for _, sh := range seedHabits {
		var habit db.Habit
		err := a.DB.Where("user_id = ? AND name = ?", user.ID, sh.input.Name).First(&habit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, err := a.Habits.Create(user.ID, sh.input)
			if err != nil {
				return report, err
			}
			habit = *created
		} else if err != nil {
			return report, fmt.Errorf("finding habit: %w", err)
		}
		report.Habits++

		for day := first; !day.After(today); day = metrics.AddDays(day, 1) {
			if rng.Float64() >= sh.chance {
				continue
			}
			if _, err := a.Completions.Upsert(user.ID, habit.ID, day, true, now); err != nil {
				return report, err
			}
			report.Completions++
		}
	}

	tasks := service.NewTaskService(a.DB)
	seq := 0
	for day := first; !day.After(today); day = metrics.AddDays(day, 1) {
		for i := rng.IntN(4); i > 0; i-- {
			seq++
			completedAt := day.Add(time.Duration(9+rng.IntN(10)) * time.Hour)
			if completedAt.After(now) {
				completedAt = now
			}
			projectID := projectIDs[rng.IntN(len(projectIDs))]
			if _, err := tasks.Create(user.ID, service.TaskInput{
				ClientID:  seedID(opts.Username, "task", seq).String(),
				ProjectID: &projectID,
				Title:     seedTaskTitles[rng.IntN(len(seedTaskTitles))],
				Status:    db.TaskStatusDone,
				Priority:  db.TaskPriorityMedium,
			}, completedAt); err != nil {
				return report, err
			}
			report.Tasks++
		}

		for i := rng.IntN(4); i > 0; i-- {
			seq++
			minutes := []int{25, 25, 50, 90}[rng.IntN(4)]
			started := day.Add(time.Duration(8+2*i) * time.Hour)
			ended := started.Add(time.Duration(minutes) * time.Minute)
			if ended.After(now) {
				continue
			}
			session := db.FocusSession{
				ID:              seedID(opts.Username, "focus", seq).String(),
				UserID:          user.ID,
				StartedAt:       started,
				DurationMinutes: minutes,
				Status:          string(metrics.StatusCompleted),
				EndedAt:         &ended,
				ActiveSeconds:   minutes * 60,
			}
			if err := a.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&session).Error; err != nil {
				return report, fmt.Errorf("creating focus session: %w", err)
			}
			report.FocusSessions++
		}
	}

	// 未来几天的待办
	for offset, title := range []string{"Prepare demo", "Book dentist", "Renew domain"} {
		due := metrics.AddDays(today, offset)
		if _, err := tasks.Create(user.ID, service.TaskInput{
			ClientID: seedID(opts.Username, "todo", offset).String(),
			Title:    title,
			Priority: db.TaskPriorityHigh,
			DueDate:  &due,
		}, now); err != nil {
			return report, err
		}
		report.Tasks++
	}

	return report, nil
}

func (a *App) seedUser(username, password string) (*db.User, error) {
	user, err := a.findUser(username)
	if err == nil {
		return user, nil
	}
	return a.Auth.Register(username, password)
}

// seedID 为演示数据生成稳定的 uuid，重复执行时命中同一条记录
func seedID(username, kind string, seq int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("horizon-seed/%s/%s/%d", username, kind, seq)))
}
