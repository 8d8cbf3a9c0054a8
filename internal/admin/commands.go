package admin

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newMigrateCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the configured database.`,
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, _ []string) error {
			cmd.Println("Running migrations...")
			if err := st.backend.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration error: %w", err)
			}
			cmd.Println("Migrations completed successfully")
			return nil
		}),
	}
}

func newTokenCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage primary API tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a primary token and print it",
		Args:  cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			keys := services.NewAPIKeyService(st.backend.Sessions, st.log)
			pt, err := keys.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("id: %d\nname: %s\ntoken: %s\n", pt.ID, pt.Name, pt.Token)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List primary tokens",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, _ []string) error {
			keys := services.NewAPIKeyService(st.backend.Sessions, st.log)
			list, err := keys.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTOKEN\tCREATED")
			for _, pt := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", pt.ID, pt.Name, pt.Token, pt.CreatedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		}),
	})

	return cmd
}

type userFlags struct {
	firstName  string
	lastName   string
	secondName string
}

func newUserCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	f := &userFlags{}
	create := &cobra.Command{
		Use:   "create <login>",
		Short: "Create a user and print its first tokens",
		Long:  `Create a user with the given login. The password is read from the terminal twice without echo.`,
		Args:  cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			return createUser(cmd, st, args[0], f)
		}),
	}
	create.Flags().StringVar(&f.firstName, "first-name", "", "first name")
	create.Flags().StringVar(&f.lastName, "last-name", "", "last name")
	create.Flags().StringVar(&f.secondName, "second-name", "", "second name")
	_ = create.MarkFlagRequired("first-name")
	_ = create.MarkFlagRequired("last-name")
	_ = create.MarkFlagRequired("second-name")

	cmd.AddCommand(create)
	return cmd
}

func createUser(cmd *cobra.Command, st *state, login string, f *userFlags) error {
	for _, c := range []struct{ field, v string }{
		{"login", login},
		{"first name", f.firstName},
		{"last name", f.lastName},
		{"second name", f.secondName},
	} {
		if err := checkLength(c.field, c.v, 3, 50); err != nil {
			return err
		}
	}

	password, err := GetPassword(cmd.ErrOrStderr(), "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	repeat, err := GetPassword(cmd.ErrOrStderr(), "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(repeat)

	if string(password) != string(repeat) {
		return fmt.Errorf("passwords do not match")
	}
	if err := checkLength("password", string(password), 6, 50); err != nil {
		return err
	}

	cfg := st.cfg
	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.SigningAlgorithm, cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	if err != nil {
		return err
	}

	users := services.NewUserService(st.backend.Sessions, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens, st.log)
	created, err := users.Create(cmd.Context(), services.NewUser{
		Login:      login,
		Password:   string(password),
		FirstName:  f.firstName,
		LastName:   f.lastName,
		SecondName: f.secondName,
	})
	if err != nil {
		return err
	}

	cmd.Printf("id: %d\nlogin: %s\naccess_token: %s\nrefresh_token: %s\n",
		created.User.ID, created.User.Login, created.AccessToken.Token, created.RefreshToken.Token)
	return nil
}
