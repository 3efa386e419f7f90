package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yks-app/yks-go/internal/domain"
	"github.com/yks-app/yks-go/internal/svc/apiclient"
)

//nolint:gochecknoglobals
var (
	loginEmail    string
	loginPassword string

	registerUsername string
	registerEmail    string
	registerPhone    string
	registerPassword string

	forgotEmail string

	resetEmail    string
	resetOTP      string
	resetPassword string
)

//nolint:gochecknoglobals,exhaustruct
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := domain.ValidateLogin(loginEmail, loginPassword); err != nil {
			return err
		}

		resp, err := app.Client.Login(ctx, apiclient.LoginRequest{
			Email:    loginEmail,
			Password: loginPassword,
		})
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		if err := app.Session.SetCredentials(ctx, resp.Token, resp.Message, resp.User); err != nil {
			return fmt.Errorf("set credentials: %w", err)
		}

		if user := app.Session.User(); user != nil {
			cmd.Printf("Signed in as %s\n", user.Username)

			// Only admin accounts are offered the admin surface.
			if user.IsAdmin() {
				cmd.Println("Admin commands are available under 'yks society'.")
			}
		} else {
			cmd.Println("Signed in")
		}

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := domain.ValidateRegistration(
			registerUsername, registerEmail, registerPhone, registerPassword,
		); err != nil {
			return err
		}

		resp, err := app.Client.Register(cmd.Context(), apiclient.RegistrationRequest{
			Username: registerUsername,
			Email:    registerEmail,
			Phone:    registerPhone,
			Password: registerPassword,
		})
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}

		cmd.Println(orDefault(resp.Message, "Account created, you can now log in"))

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset code",
	RunE: func(cmd *cobra.Command, _ []string) error {
		resp, err := app.Client.ForgotPassword(cmd.Context(), apiclient.ForgotPasswordRequest{
			Email: forgotEmail,
		})
		if err != nil {
			return fmt.Errorf("forgot password: %w", err)
		}

		cmd.Println(orDefault(resp.Message, "Reset code sent"))

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password using the emailed reset code",
	RunE: func(cmd *cobra.Command, _ []string) error {
		resp, err := app.Client.ResetPassword(cmd.Context(), apiclient.ResetPasswordRequest{
			Email:       resetEmail,
			OTP:         resetOTP,
			NewPassword: resetPassword,
		})
		if err != nil {
			return fmt.Errorf("reset password: %w", err)
		}

		cmd.Println(orDefault(resp.Message, "Password updated"))

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app.Session.Logout(cmd.Context())
		cmd.Println(app.Session.Message())

		return nil
	},
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}

	return message
}

//nolint:gochecknoinits
func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")

	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "Phone number")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password")

	forgotPasswordCmd.Flags().StringVar(&forgotEmail, "email", "", "Account email")

	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "Account email")
	resetPasswordCmd.Flags().StringVar(&resetOTP, "otp", "", "Reset code from the email")
	resetPasswordCmd.Flags().StringVar(&resetPassword, "password", "", "New password")
}
