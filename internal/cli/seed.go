package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/nurpe/ledger-service/internal/auth"
	"github.com/nurpe/ledger-service/internal/config"
	"github.com/nurpe/ledger-service/internal/db"
	"github.com/nurpe/ledger-service/internal/logger"
	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/repository"
)

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Duration("token-ttl", 24*time.Hour, "Lifetime of the printed demo bearer tokens")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo profiles, contracts and jobs into an empty database",
	Long: `Load the demo data set into an empty database. Profile ids are fixed so
they can be sent straight away in the profile_id header. When
JWT_ACCESS_SECRET is set a bearer token is printed for every profile.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	cfg.DB.AutoMigrate = true
	database, err := db.New(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(database)

	ctx := cmd.Context()
	ledger := repository.NewLedgerRepository(database)
	if err := loadFixture(ctx, ledger); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := db.SyncSequences(database); err != nil {
		return err
	}
	log.Info().Int("profiles", len(demoProfiles)).Int("contracts", len(demoContracts)).Int("jobs", len(demoJobs)).Msg("demo data loaded")

	parser := auth.NewParser(cfg.Auth.AccessSecret)
	if !parser.Enabled() {
		return nil
	}
	ttl, _ := cmd.Flags().GetDuration("token-ttl")
	for _, p := range demoProfiles {
		token, err := parser.Issue(p.ID, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", p.ID, p.FullName(), token)
	}
	return nil
}

func loadFixture(ctx context.Context, w repository.Writer) error {
	for _, p := range demoProfiles {
		p := p
		if err := w.CreateProfile(ctx, &p); err != nil {
			return fmt.Errorf("profile %d: %w", p.ID, err)
		}
	}
	for _, c := range demoContracts {
		c := c
		if err := w.CreateContract(ctx, &c); err != nil {
			return fmt.Errorf("contract %d: %w", c.ID, err)
		}
	}
	for _, j := range demoJobs {
		j := j
		if err := w.CreateJob(ctx, &j); err != nil {
			return fmt.Errorf("job %d: %w", j.ID, err)
		}
	}
	return nil
}

func amount(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func paidOn(raw string) *time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return &t
}

var demoProfiles = []model.Profile{
	{ID: 1, FirstName: "Harry", LastName: "Potter", Profession: "Wizard", Balance: amount("1150"), Type: model.ProfileTypeClient},
	{ID: 2, FirstName: "Mr", LastName: "Robot", Profession: "Hacker", Balance: amount("231.11"), Type: model.ProfileTypeClient},
	{ID: 3, FirstName: "John", LastName: "Snow", Profession: "Knows nothing", Balance: amount("451.3"), Type: model.ProfileTypeClient},
	{ID: 4, FirstName: "Ash", LastName: "Kethcum", Profession: "Pokemon master", Balance: amount("1.3"), Type: model.ProfileTypeClient},
	{ID: 5, FirstName: "John", LastName: "Lenon", Profession: "Musician", Balance: amount("1214"), Type: model.ProfileTypeContractor},
	{ID: 6, FirstName: "Linus", LastName: "Torvalds", Profession: "Programmer", Balance: amount("1214"), Type: model.ProfileTypeContractor},
	{ID: 7, FirstName: "Alan", LastName: "Turing", Profession: "Programmer", Balance: amount("22"), Type: model.ProfileTypeContractor},
	{ID: 8, FirstName: "Aragorn", LastName: "II Elessar Telcontarvalds", Profession: "Fighter", Balance: amount("314"), Type: model.ProfileTypeContractor},
}

var demoContracts = []model.Contract{
	{ID: 1, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 1, ContractorID: 5},
	{ID: 2, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 1, ContractorID: 6},
	{ID: 3, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 2, ContractorID: 6},
	{ID: 4, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 2, ContractorID: 7},
	{ID: 5, Terms: "bla bla bla", Status: model.ContractStatusNew, ClientID: 3, ContractorID: 8},
	{ID: 6, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 3, ContractorID: 7},
	{ID: 7, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 4, ContractorID: 7},
	{ID: 8, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 4, ContractorID: 6},
	{ID: 9, Terms: "bla bla bla", Status: model.ContractStatusTerminated, ClientID: 4, ContractorID: 8},
}

var demoJobs = []model.Job{
	{ID: 1, Description: "work", Price: amount("201"), ContractID: 1},
	{ID: 2, Description: "work", Price: amount("201"), ContractID: 2},
	{ID: 3, Description: "work", Price: amount("202"), ContractID: 3},
	{ID: 4, Description: "work", Price: amount("200"), ContractID: 4},
	{ID: 5, Description: "work", Price: amount("200"), ContractID: 7},
	{ID: 6, Description: "work", Price: amount("2020"), Paid: true, PaymentDate: paidOn("2020-08-15T19:11:26Z"), ContractID: 7},
	{ID: 7, Description: "work", Price: amount("200"), Paid: true, PaymentDate: paidOn("2020-08-15T19:11:26Z"), ContractID: 2},
	{ID: 8, Description: "work", Price: amount("200"), Paid: true, PaymentDate: paidOn("2020-08-16T19:11:26Z"), ContractID: 3},
	{ID: 9, Description: "work", Price: amount("200"), Paid: true, PaymentDate: paidOn("2020-08-17T19:11:26Z"), ContractID: 1},
	{ID: 10, Description: "work", Price: amount("200"), Paid: true, PaymentDate: paidOn("2020-08-17T19:11:26Z"), ContractID: 5},
	{ID: 11, Description: "work", Price: amount("21"), Paid: true, PaymentDate: paidOn("2020-08-10T19:11:26Z"), ContractID: 1},
	{ID: 12, Description: "work", Price: amount("21"), Paid: true, PaymentDate: paidOn("2020-08-15T19:11:26Z"), ContractID: 2},
	{ID: 13, Description: "work", Price: amount("121"), Paid: true, PaymentDate: paidOn("2020-08-17T19:11:26Z"), ContractID: 3},
	{ID: 14, Description: "Programmer work", Price: amount("121"), Paid: true, PaymentDate: paidOn("2020-08-14T23:11:26Z"), ContractID: 3},
}
