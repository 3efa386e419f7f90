package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yks-app/yks-go/internal/svc/apiclient"
)

//nolint:gochecknoglobals
var (
	societyName    string
	societyAddress string
	societyOwner   string
	societyPhone   string
)

//nolint:gochecknoglobals,exhaustruct
var societyCmd = &cobra.Command{
	Use:   "society",
	Short: "List or register societies",
}

//nolint:gochecknoglobals,exhaustruct
var societyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered societies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		societies, release, err := app.Client.GetSocieties(cmd.Context())
		if err != nil {
			return fmt.Errorf("get societies: %w", err)
		}
		defer release()

		if len(societies) == 0 {
			cmd.Println("No societies yet")

			return nil
		}

		for _, society := range societies {
			cmd.Printf("%s  %s (%s)\n", society.ID, society.Name, society.Address)
		}

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var societyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new society",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, ok := restoreSession(cmd.Context())
		if !ok {
			return errNotSignedIn
		}

		resp, err := app.Client.CreateSociety(ctx, apiclient.CreateSocietyRequest{
			Name:        societyName,
			Address:     societyAddress,
			OwnerName:   societyOwner,
			PhoneNumber: societyPhone,
		})
		if err != nil {
			return fmt.Errorf("create society: %w", err)
		}

		cmd.Println(orDefault(resp.Message, "Society registered"))

		return nil
	},
}

//nolint:gochecknoinits
func init() {
	societyCmd.AddCommand(societyListCmd)
	societyCmd.AddCommand(societyCreateCmd)

	societyCreateCmd.Flags().StringVar(&societyName, "name", "", "Society name")
	societyCreateCmd.Flags().StringVar(&societyAddress, "address", "", "Street address")
	societyCreateCmd.Flags().StringVar(&societyOwner, "owner", "", "Owner name")
	societyCreateCmd.Flags().StringVar(&societyPhone, "phone", "", "Contact phone number")

	_ = societyCreateCmd.MarkFlagRequired("name")
	_ = societyCreateCmd.MarkFlagRequired("address")
}
