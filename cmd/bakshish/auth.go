package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a token pair and remember the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			var err error
			if password, err = readLine("Password: "); err != nil {
				return err
			}
		}

		user, err := await(cmd.Context(), "Logging in", app.container.Login(cmd.Context(), username, password))
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", user.Username, user.UserType)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := app.container.Logout(cmd.Context()).Wait(cmd.Context())
		return err
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := await(cmd.Context(), "Loading profile", app.container.RefreshUser(cmd.Context()))
		if err != nil {
			return err
		}
		return printJSON(user)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a passenger, driver or combined account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := models.RegisterRequest{}
		req.Username, _ = f.GetString("username")
		req.Email, _ = f.GetString("email")
		req.Password, _ = f.GetString("password")
		req.Password2, _ = f.GetString("password2")
		req.FirstName, _ = f.GetString("first-name")
		req.LastName, _ = f.GetString("last-name")
		req.PhoneNumber, _ = f.GetString("phone")
		req.DateOfBirth, _ = f.GetString("dob")
		req.UserType, _ = f.GetString("type")

		if req.UserType != models.UserTypeDriver {
			p := &models.PassengerProfileInput{}
			p.PreferredPaymentMethod, _ = f.GetString("payment")
			p.EmergencyContactName, _ = f.GetString("emergency-name")
			p.EmergencyContactPhone, _ = f.GetString("emergency-phone")
			req.PassengerProfile = p
		}
		if req.UserType != models.UserTypePassenger {
			d := &models.DriverProfileInput{}
			d.LicenseNumber, _ = f.GetString("license")
			d.LicenseExpiry, _ = f.GetString("license-expiry")
			d.VehicleMake, _ = f.GetString("vehicle-make")
			d.VehicleModel, _ = f.GetString("vehicle-model")
			d.VehicleYear, _ = f.GetInt("vehicle-year")
			d.VehicleColor, _ = f.GetString("vehicle-color")
			d.VehiclePlateNumber, _ = f.GetString("vehicle-plate")
			d.VehicleCapacity, _ = f.GetInt("vehicle-capacity")
			d.InsuranceNumber, _ = f.GetString("insurance")
			d.InsuranceExpiry, _ = f.GetString("insurance-expiry")
			req.DriverProfile = d
		}

		user, err := app.auth.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (id %d). Run `bakshish login -u %s` to sign in.\n", user.Username, user.ID, user.Username)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the logged-in user's profile",
}

var profileUpdateCmd = &cobra.Command{
	Use:     "update",
	Short:   "Change profile fields",
	Example: "  bakshish profile update --set first_name=Asha --set phone_number=+919800000000",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("set")
		req, err := parseProfileUpdate(pairs)
		if err != nil {
			return err
		}

		user, err := app.auth.UpdateProfile(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(user)
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "account username")
	loginCmd.Flags().StringP("password", "p", "", "account password (prompted when omitted)")
	loginCmd.MarkFlagRequired("username")

	f := registerCmd.Flags()
	f.String("username", "", "username")
	f.String("email", "", "email address")
	f.String("password", "", "password")
	f.String("password2", "", "password again")
	f.String("first-name", "", "first name")
	f.String("last-name", "", "last name")
	f.String("phone", "", "phone number")
	f.String("dob", "", "date of birth (YYYY-MM-DD)")
	f.String("type", models.UserTypePassenger, "account type: passenger, driver or both")
	f.String("payment", "", "preferred payment method: cash, card or wallet")
	f.String("emergency-name", "", "emergency contact name")
	f.String("emergency-phone", "", "emergency contact phone")
	f.String("license", "", "driving license number")
	f.String("license-expiry", "", "license expiry (YYYY-MM-DD)")
	f.String("vehicle-make", "", "vehicle make")
	f.String("vehicle-model", "", "vehicle model")
	f.Int("vehicle-year", 0, "vehicle year")
	f.String("vehicle-color", "", "vehicle color")
	f.String("vehicle-plate", "", "vehicle plate number")
	f.Int("vehicle-capacity", 0, "seats available to passengers")
	f.String("insurance", "", "insurance policy number")
	f.String("insurance-expiry", "", "insurance expiry (YYYY-MM-DD)")

	profileUpdateCmd.Flags().StringArray("set", nil, "field=value, repeatable")
	profileCmd.AddCommand(profileUpdateCmd)
}

// parseProfileUpdate turns field=value pairs into a partial update.
// Unknown field names are rejected rather than silently dropped.
func parseProfileUpdate(pairs []string) (models.ProfileUpdateRequest, error) {
	var req models.ProfileUpdateRequest

	fields := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return req, fmt.Errorf("%w: expected field=value, got %q", apperrors.ErrValidation, pair)
		}
		fields[key] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &req,
	})
	if err != nil {
		return req, err
	}
	if err := decoder.Decode(fields); err != nil {
		return req, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return req, nil
}

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
