package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/talent-scout/scout/internal/auth"
	"github.com/talent-scout/scout/internal/records"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Recruiter access to finished interview records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interview records, newest first",
	Run: func(_ *cobra.Command, _ []string) {
		listRecords()
	},
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <interview-id>",
	Short: "Show a single interview record",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		showRecord(args[0])
	},
}

var recordsPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the recruiter password",
	Run: func(_ *cobra.Command, _ []string) {
		changePassword()
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	recordsCmd.AddCommand(recordsPasswdCmd)
}

// requireRecruiter prompts for the recruiter password and fatals on a miss.
// Every recruiter-facing command goes through here.
func requireRecruiter(logger *zap.Logger) *auth.Gate {
	gate := auth.NewGate(viper.GetString("recruiter.password-file"))

	prompt := promptui.Prompt{
		Label: "Recruiter password",
		Mask:  '*',
	}

	password, err := prompt.Run()
	if err != nil {
		logger.Fatal("reading the recruiter password", zap.Error(err))
	}

	if err := gate.Verify(password); err != nil {
		logger.Fatal("recruiter authentication failed", zap.Error(err))
	}

	return gate
}

func recordsStore() *records.Store {
	return records.NewStore(viper.GetString("storage.dir"))
}

func listRecords() {
	logger := newLogger()
	requireRecruiter(logger)

	recs, err := recordsStore().List()
	if err != nil {
		logger.Fatal("listing interview records", zap.Error(err))
	}

	if len(recs) == 0 {
		fmt.Println("No interview records yet.")
		return
	}

	for _, r := range recs {
		recommendation := "n/a"
		if r.Summary != nil {
			recommendation = string(r.Summary.Recommendation)
		}
		fmt.Printf("%s  %s  %-24s %-20s %s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Candidate.FullName,
			r.Candidate.Position,
			recommendation,
		)
	}
}

func showRecord(id string) {
	logger := newLogger()
	requireRecruiter(logger)

	r, err := recordsStore().Load(id)
	if err != nil {
		logger.Fatal("loading the interview record", zap.Error(err))
	}

	pretty, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		logger.Fatal("encoding the interview record", zap.Error(err))
	}

	fmt.Println(string(pretty))
}

func changePassword() {
	logger := newLogger()
	gate := requireRecruiter(logger)

	prompt := promptui.Prompt{
		Label: "New recruiter password",
		Mask:  '*',
	}

	password, err := prompt.Run()
	if err != nil {
		logger.Fatal("reading the new password", zap.Error(err))
	}

	if err := gate.Set(password); err != nil {
		logger.Fatal("updating the recruiter password", zap.Error(err))
	}

	logger.Info("recruiter password updated")
}
