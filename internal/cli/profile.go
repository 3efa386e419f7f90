package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yks-app/yks-go/internal/domain"
	"github.com/yks-app/yks-go/internal/svc/sessionsvc"
	"github.com/yks-app/yks-go/internal/svc/uploadsvc"
)

var errNotSignedIn = errors.New("not signed in, run 'yks login' first")

//nolint:gochecknoglobals
var (
	profileName        string
	profileBio         string
	profileAvatar      string
	profileDOB         string
	profileAnniversary string
	profileInstagram   string
	profileTwitter     string
	profileFacebook    string
	profileLinkedIn    string

	profileWatch bool
)

//nolint:gochecknoglobals,exhaustruct
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the signed-in user's profile",
}

//nolint:gochecknoglobals,exhaustruct
var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, ok := restoreSession(cmd.Context())
		if !ok {
			return errNotSignedIn
		}

		printProfile(cmd, app.Session.User())

		if profileWatch {
			// Keeps refreshing until interrupted, like a mounted
			// profile screen.
			sessionsvc.NewPoller(app.Session, app.Client, app.Poll).Run(ctx)
		}

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields, optionally uploading a new avatar",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, ok := restoreSession(cmd.Context())
		if !ok {
			return errNotSignedIn
		}

		profile := app.Session.User()
		if profile == nil {
			return errNotSignedIn
		}

		applyFlagOverrides(cmd, profile)

		if err := domain.ValidateProfile(*profile); err != nil {
			return err
		}

		// The avatar must be durable before the profile references it.
		// An upload failure aborts the update entirely.
		if profileAvatar != "" {
			url, err := app.Uploads.UploadFile(ctx, profileAvatar, uploadsvc.PrefixProfileImages)
			if err != nil {
				return err
			}

			profile.ProfileURL = url
		}

		done := app.Session.BeginProfileMutation()
		defer done()

		resp, err := app.Client.UpdateProfile(ctx, *profile)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}

		app.Session.SetProfile(ctx, resp.Message, profile)
		cmd.Println(orDefault(resp.Message, "Profile updated"))

		return nil
	},
}

func applyFlagOverrides(cmd *cobra.Command, profile *domain.Profile) {
	overrides := map[string]struct {
		value string
		field *string
	}{
		"name":        {profileName, &profile.Username},
		"bio":         {profileBio, &profile.Bio},
		"dob":         {profileDOB, &profile.DateOfBirth},
		"anniversary": {profileAnniversary, &profile.Anniversary},
		"instagram":   {profileInstagram, &profile.Instagram},
		"twitter":     {profileTwitter, &profile.Twitter},
		"facebook":    {profileFacebook, &profile.Facebook},
		"linkedin":    {profileLinkedIn, &profile.LinkedIn},
	}

	for flag, override := range overrides {
		if cmd.Flags().Changed(flag) {
			*override.field = override.value
		}
	}
}

func printProfile(cmd *cobra.Command, profile *domain.Profile) {
	if profile == nil {
		cmd.Println("No profile")

		return
	}

	cmd.Printf("%s\n", profile.Username)

	if profile.Bio != "" {
		cmd.Printf("  bio:         %s\n", profile.Bio)
	}

	if profile.ProfileURL != "" {
		cmd.Printf("  image:       %s\n", profile.ProfileURL)
	}

	if profile.DateOfBirth != "" {
		cmd.Printf("  birthday:    %s\n", profile.DateOfBirth)
	}

	if profile.Anniversary != "" {
		cmd.Printf("  anniversary: %s\n", profile.Anniversary)
	}

	for label, link := range map[string]string{
		"instagram": profile.Instagram,
		"twitter":   profile.Twitter,
		"facebook":  profile.Facebook,
		"linkedin":  profile.LinkedIn,
	} {
		if link != "" {
			cmd.Printf("  %-12s %s\n", label+":", link)
		}
	}
}

//nolint:gochecknoinits
func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	profileShowCmd.Flags().BoolVar(&profileWatch, "watch", false, "Keep refreshing the profile")

	profileUpdateCmd.Flags().StringVar(&profileName, "name", "", "Display name")
	profileUpdateCmd.Flags().StringVar(&profileBio, "bio", "", "Short bio")
	profileUpdateCmd.Flags().StringVar(&profileAvatar, "avatar", "", "Path to a local image to upload")
	profileUpdateCmd.Flags().StringVar(&profileDOB, "dob", "", "Birthdate (YYYY-MM-DD)")
	profileUpdateCmd.Flags().StringVar(&profileAnniversary, "anniversary", "", "Anniversary (YYYY-MM-DD)")
	profileUpdateCmd.Flags().StringVar(&profileInstagram, "instagram", "", "Instagram URL")
	profileUpdateCmd.Flags().StringVar(&profileTwitter, "twitter", "", "Twitter URL")
	profileUpdateCmd.Flags().StringVar(&profileFacebook, "facebook", "", "Facebook URL")
	profileUpdateCmd.Flags().StringVar(&profileLinkedIn, "linkedin", "", "LinkedIn URL")
}
