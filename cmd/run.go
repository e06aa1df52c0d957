package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/talent-scout/scout/internal/intake"
	"github.com/talent-scout/scout/internal/interview"
	"github.com/talent-scout/scout/internal/records"
	"github.com/talent-scout/scout/internal/retrieval"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// easierKeyword is the literal answer a candidate types to ask for a simpler
// question instead of answering the current one.
const easierKeyword = "easier"

const greeting = "Hello! I'm Scout, an AI hiring assistant. I'll ask a few questions about your tech stack to get a sense of your experience. Answer in your own words, or type \"easier\" if a question feels too hard."

// intakeFields drives the candidate form, in the order the questions are asked.
var intakeFields = []struct {
	Key   string
	Label string
}{
	{"full_name", "Full name"},
	{"email", "Email address"},
	{"phone_number", "Phone number"},
	{"experience_years", "Years of experience"},
	{"desired_position", "Desired position"},
	{"current_location", "Current location"},
	{"tech_stack", "Tech stack (comma-separated)"},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a candidate screening interview",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to a plain-text resume used to personalize questions")
}

// runInterview is the candidate-facing command: intake form, question loop,
// summary, and the durable record at the end.
func runInterview(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting scout", zap.String("version", version))

	form, err := collectIntake()
	if err != nil {
		logger.Fatal("collecting the intake form", zap.Error(err))
	}

	resume, err := loadResume(cmd)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}

	profile, err := form.Profile(resume)
	if err != nil {
		logger.Fatal("building the candidate profile", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the ai generator", zap.Error(err))
	}

	var provider interview.ContextProvider
	if resume != "" {
		provider = retrieval.New(resume)
	}

	engine := interview.NewEngine(generator, provider, engineConfig(config), logger)

	session, err := interview.NewSession(profile)
	if err != nil {
		logger.Fatal("creating the session", zap.Error(err))
	}

	sessions := interview.NewStore()
	sessions.Put(session)
	defer sessions.Delete(session.ID)

	logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.Strings("topics", profile.Skills),
	)

	fmt.Println()
	fmt.Println(greeting)
	fmt.Println()

	reply, err := engine.Start(ctx, session)
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for !reply.Done {
		fmt.Printf("Scout: %s\n\n", reply.Message)
		fmt.Print("You: ")

		if !scanner.Scan() {
			logger.Fatal("candidate input ended unexpectedly", zap.Error(scanner.Err()))
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Println("Please type an answer, or \"easier\" for a simpler question.")
			continue
		}

		input := interview.Input{Text: answer}
		if strings.EqualFold(answer, easierKeyword) {
			input = interview.Input{Easier: true}
		}

		reply, err = engine.Submit(ctx, session, input)
		if err != nil {
			logger.Fatal("processing the answer", zap.Error(err))
		}
		fmt.Println()
	}

	fmt.Printf("Scout: %s\n\n", reply.Message)

	store := records.NewStore(viper.GetString("storage.dir"))
	path, err := store.Save(records.FromSession(session))
	if err != nil {
		logger.Fatal("saving the interview record", zap.Error(err))
	}

	logger.Info("interview recorded",
		zap.String("session_id", session.ID),
		zap.Int("questions", len(session.Items)),
		zap.String("file", path),
	)
}

// collectIntake walks the candidate through the form, re-running it until it
// validates so a typo does not abort the whole interview.
func collectIntake() (*intake.Form, error) {
	validator, err := intake.NewValidator()
	if err != nil {
		return nil, err
	}

	for {
		answers := make(map[string]string, len(intakeFields))
		for _, field := range intakeFields {
			prompt := promptui.Prompt{Label: field.Label}
			value, err := prompt.Run()
			if err != nil {
				return nil, err
			}
			answers[field.Key] = value
		}

		form, err := intake.Decode(answers)
		if err == nil {
			err = validator.Check(form)
		}
		if err == nil {
			return form, nil
		}

		fmt.Printf("\n%s\n\nLet's try that again.\n\n", err)
	}
}

func loadResume(cmd *cobra.Command) (string, error) {
	path := strings.TrimSpace(cmd.Flag("resume").Value.String())
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume file: %w", err)
	}

	return string(data), nil
}
