package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/studyhall/internal/app"
	"github.com/abhisek/studyhall/internal/backend"
	"github.com/abhisek/studyhall/internal/config"
	"github.com/abhisek/studyhall/internal/events"
	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/explain"
	"github.com/abhisek/studyhall/internal/llm"
	examscreen "github.com/abhisek/studyhall/internal/screens/exam"
	"github.com/spf13/cobra"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Take an exam (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExam(cmd)
	},
}

func init() {
	addExamFlags(examCmd)
}

func addExamFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("kind", string(exam.KindPractice), "Exam kind: class, subject, topic, subtopic, practice or jamb")
	f.String("class", "", "Class level, e.g. JSS2 or SS3 (defaults to user.class)")
	f.String("subject", "", "Subject for subject, topic and subtopic exams")
	f.String("topic", "", "Topic for topic and subtopic exams")
	f.String("subtopic", "", "Subtopic for subtopic exams")
	f.Int64("subtopic-id", 0, "Backend id of the subtopic")
	f.StringSlice("subjects", nil, "Comma-separated subjects for a combined exam")
	f.String("user", "", "Username (defaults to user.username)")
}

// examInputs builds the user and params from flags over config defaults.
func examInputs(cmd *cobra.Command, cfg *config.Config) (exam.User, exam.Params, error) {
	f := cmd.Flags()
	username, _ := f.GetString("user")
	class, _ := f.GetString("class")
	if username == "" {
		username = cfg.User.Username
	}
	if class == "" {
		class = cfg.User.Class
	}
	user := exam.User{Username: username, Class: class}

	kindFlag, _ := f.GetString("kind")
	kind, err := exam.ParseKind(kindFlag)
	if err != nil {
		return user, exam.Params{}, err
	}

	params := exam.Params{Kind: kind, Class: class}
	params.Subject, _ = f.GetString("subject")
	params.Topic, _ = f.GetString("topic")
	params.Subtopic, _ = f.GetString("subtopic")
	if id, _ := f.GetInt64("subtopic-id"); id != 0 {
		params.SubtopicID = &id
	}

	subjects, _ := f.GetStringSlice("subjects")
	if len(subjects) > 0 || kind == exam.KindJAMB {
		params.Subjects, err = exam.SelectSubjects(class, subjects)
		if err != nil {
			return user, params, err
		}
	}

	if err := user.Validate(); err != nil {
		return user, params, err
	}
	return user, params, params.Validate()
}

// runExam wires the store, event bus, backend and optional explainer around
// one exam session and runs the terminal UI until the user quits.
func runExam(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.User.Username = u
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	user, params, err := examInputs(cmd, cfg)
	if err != nil {
		return err
	}

	logger, logCloser := openLogger(cfg)
	defer logCloser.Close()

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	bus, err := events.NewBus(events.Config{
		KafkaBrokers: cfg.Kafka.Brokers,
		KafkaTopic:   cfg.Kafka.Topic,
	}, logger)
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	journal := events.NewJournal(st.ExamEvents(), st.Attempts(), logger)
	if err := journal.Attach(ctx, bus); err != nil {
		_ = bus.Close()
		return fmt.Errorf("attach journal: %w", err)
	}

	client, err := backend.New(backend.Config{
		BaseURL:   cfg.Backend.URL,
		Token:     cfg.Backend.Token,
		Timeout:   cfg.Backend.Timeout,
		UserAgent: "studyhall/" + version,
	}, nil, logger)
	if err != nil {
		_ = bus.Close()
		return err
	}

	sessCfg := exam.Config{
		Source:    client,
		Sink:      client,
		Publisher: bus,
		Logger:    logger,
	}
	if cfg.LLM != nil {
		provider, err := llm.NewProvider(ctx, *cfg.LLM, st.LLMEvents(), logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Explanations will come from the backend only.")
		} else {
			sessCfg.Explainer = explain.NewService(provider, explain.DefaultConfig())
		}
	}

	sess, err := exam.New(user, params, sessCfg)
	if err != nil {
		_ = bus.Close()
		return err
	}

	runErr := app.Run(ctx, examscreen.New(ctx, sess, logger))

	// Drain in order: session events, then the bus, then the journal.
	sess.Close()
	if err := bus.Close(); err != nil {
		logger.LogError(err, "close event bus")
	}
	journal.Wait()
	return runErr
}
