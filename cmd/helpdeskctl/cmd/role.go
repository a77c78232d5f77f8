package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	"github.com/opsdesk/helpdesk/internal/service"
)

var (
	roleEmail string
	roleName  string
)

var setRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Set the role of an account by email",
	Long: `Set the role of an account by email.

Only an ADMIN can change roles through the API, so the first ADMIN has to
be created here.`,
	Example: `  helpdeskctl set-role --email ops@example.com --role ADMIN`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := domain.ParseRole(roleName)
		if !ok {
			return fmt.Errorf("invalid role %q: must be ADMIN, AGENT or USER", roleName)
		}

		ctx := cmd.Context()
		pg, err := openPostgres(ctx)
		if err != nil {
			return err
		}
		defer pg.Close()

		users := service.NewUserService(service.UserDependencies{
			UserRepo: repository.NewUserRepository(pg.PoolHandle()),
			Logger:   logger,
		})

		user, err := users.SetRoleByEmail(ctx, roleEmail, role)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.Email, user.ID, user.Role)
		return nil
	},
}

func init() {
	setRoleCmd.Flags().StringVar(&roleEmail, "email", "", "Account email")
	setRoleCmd.Flags().StringVar(&roleName, "role", "", "New role: ADMIN, AGENT or USER")
	_ = setRoleCmd.MarkFlagRequired("email")
	_ = setRoleCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(setRoleCmd)
}
