package cli

import (
	"fmt"
	"time"

	"github.com/jrsteele09/circle-miniapp/authsession"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/telegram"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/spf13/cobra"
)

func (a *app) printResult(result *authsession.Result) error {
	if a.cfg.JSON {
		return a.printJSON(map[string]any{
			"user":        result.User,
			"route":       result.Route,
			"is_new_user": result.IsNewUser,
		})
	}
	a.printf("Signed in as %s\n", result.User.DisplayName())
	if result.IsNewUser {
		a.printf("Welcome to Circle!\n")
	}
	if result.User.NeedsOnboarding() {
		a.printf("Next: finish onboarding (%s)\n", result.Route)
	}
	return nil
}

func (a *app) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a phone number or email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			login, _ := cmd.Flags().GetString("login")
			password, _ := cmd.Flags().GetString("password")

			_, _, manager := a.session()
			result, err := manager.LoginWithCredentials(cmd.Context(), authsession.CredentialsForm{Login: login, Password: password})
			if err != nil {
				return err
			}
			return a.printResult(result)
		},
	}
	cmd.Flags().String("login", "", "phone number or email")
	cmd.Flags().String("password", "", "account password")

	telegramCmd := &cobra.Command{
		Use:   "telegram",
		Short: "Sign in with Telegram WebApp init data",
		Long: `Sign in with the init data string Telegram hands to a mini-app.

--test builds an unsigned development payload instead. Only a backend running
in debug mode accepts it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initData, _ := cmd.Flags().GetString("init-data")
			if test, _ := cmd.Flags().GetBool("test"); test && initData == "" {
				userID, _ := cmd.Flags().GetInt64("user-id")
				firstName, _ := cmd.Flags().GetString("first-name")
				initData = telegram.TestInitData(telegram.User{ID: userID, FirstName: firstName}, time.Now())
			}

			_, manager := a.telegramManager(initData)
			result, err := manager.Login(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(result)
		},
	}
	telegramCmd.Flags().String("init-data", "", "raw Telegram.WebApp.initData")
	telegramCmd.Flags().Bool("test", false, "use a generated development payload")
	telegramCmd.Flags().Int64("user-id", 0, "Telegram user id for --test")
	telegramCmd.Flags().String("first-name", "", "first name for --test")
	cmd.AddCommand(telegramCmd)

	return cmd
}

func (a *app) registerCommand() *cobra.Command {
	var form authsession.RegisterForm
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Circle account",
		Long: `Create an account and sign in. Registration always continues with
onboarding: pick a sphere, then travel preferences.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if form.PasswordConfirm == "" {
				form.PasswordConfirm = form.Password
			}
			_, _, manager := a.session()
			result, err := manager.Register(cmd.Context(), form)
			if err != nil {
				return err
			}
			return a.printResult(result)
		},
	}
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&form.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&form.Email, "email", "", "email (optional)")
	cmd.Flags().StringVar(&form.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&form.PasswordConfirm, "password-confirm", "", "repeat the password (defaults to --password)")
	cmd.Flags().BoolVar(&form.AcceptTerms, "accept-terms", false, "accept the terms of use")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, manager := a.session()
			manager.Logout(cmd.Context())
			a.printf("Signed out\n")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user and token expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, _, manager := a.session()
			if manager.Check(ctx) != authsession.StateLoggedIn {
				if err := manager.LastError(); err != nil {
					return err
				}
				return errors.ErrNotAuthenticated
			}

			user := manager.User()
			if a.cfg.JSON {
				return a.printJSON(user)
			}
			a.printUser(user)
			if t := store.GetTokens(ctx); t != nil {
				a.printTokenExpiry("Access", t.Access)
				a.printTokenExpiry("Refresh", t.Refresh)
			}
			return nil
		},
	}
}

func (a *app) printTokenExpiry(label, raw string) {
	claims, err := tokens.Inspect(raw)
	if err != nil || claims.ExpiresAt.IsZero() {
		return
	}
	a.printf("%-11s %s\n", label+":", fmt.Sprintf("expires %s", claims.ExpiresAt.Local().Format(time.RFC1123)))
}

func (a *app) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the access token now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, manager := a.session()
			if err := manager.Refresh(cmd.Context()); err != nil {
				return err
			}
			a.printf("Tokens refreshed for %s\n", manager.User().DisplayName())
			return nil
		},
	}
}
