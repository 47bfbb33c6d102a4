package models

import (
	"time"
)

// User roles
const (
	UserTypePassenger = "passenger"
	UserTypeDriver    = "driver"
	UserTypeBoth      = "both"
)

// Payment methods
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

type User struct {
	ID               int64             `json:"id"`
	Username         string            `json:"username"`
	Email            string            `json:"email"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	UserType         string            `json:"user_type"`
	PhoneNumber      string            `json:"phone_number"`
	ProfilePicture   *string           `json:"profile_picture"`
	DateOfBirth      *string           `json:"date_of_birth"`
	PassengerProfile *PassengerProfile `json:"passenger_profile"`
	DriverProfile    *DriverProfile    `json:"driver_profile"`
	AverageRating    *Decimal          `json:"average_rating"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type PassengerProfile struct {
	ID                     int64    `json:"id"`
	PreferredPaymentMethod string   `json:"preferred_payment_method"`
	EmergencyContactName   string   `json:"emergency_contact_name"`
	EmergencyContactPhone  string   `json:"emergency_contact_phone"`
	TotalTrips             int      `json:"total_trips"`
	AverageRating          *Decimal `json:"average_rating"`
}

type DriverProfile struct {
	ID                 int64    `json:"id"`
	LicenseNumber      string   `json:"license_number"`
	VehicleMake        string   `json:"vehicle_make"`
	VehicleModel       string   `json:"vehicle_model"`
	VehicleYear        int      `json:"vehicle_year"`
	VehicleColor       string   `json:"vehicle_color"`
	VehiclePlateNumber string   `json:"vehicle_plate_number"`
	VehicleCapacity    int      `json:"vehicle_capacity"`
	IsVerified         bool     `json:"is_verified"`
	IsAvailable        bool     `json:"is_available"`
	TotalTrips         int      `json:"total_trips"`
	AverageRating      *Decimal `json:"average_rating"`
}

// FullName mirrors the backend's get_full_name: first and last name joined,
// trimmed when either is empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsPassenger() bool {
	return u.UserType == UserTypePassenger || u.UserType == UserTypeBoth
}

func (u *User) IsDriver() bool {
	return u.UserType == UserTypeDriver || u.UserType == UserTypeBoth
}

func IsValidUserType(t string) bool {
	return t == UserTypePassenger || t == UserTypeDriver || t == UserTypeBoth
}

// RegisterRequest is the body of POST users/. Driver and "both" accounts
// must carry a driver profile; a passenger profile is created with defaults
// when omitted.
type RegisterRequest struct {
	Username         string                 `json:"username" validate:"required,max=150"`
	Email            string                 `json:"email" validate:"required,email"`
	Password         string                 `json:"password" validate:"required"`
	Password2        string                 `json:"password2" validate:"required,eqfield=Password"`
	FirstName        string                 `json:"first_name" validate:"required"`
	LastName         string                 `json:"last_name" validate:"required"`
	PhoneNumber      string                 `json:"phone_number,omitempty"`
	DateOfBirth      string                 `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UserType         string                 `json:"user_type" validate:"required,oneof=passenger driver both"`
	PassengerProfile *PassengerProfileInput `json:"passenger_profile,omitempty"`
	DriverProfile    *DriverProfileInput    `json:"driver_profile,omitempty" validate:"required_unless=UserType passenger"`
}

type PassengerProfileInput struct {
	PreferredPaymentMethod string `json:"preferred_payment_method,omitempty" validate:"omitempty,oneof=cash card wallet"`
	EmergencyContactName   string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone  string `json:"emergency_contact_phone,omitempty"`
}

type DriverProfileInput struct {
	LicenseNumber      string `json:"license_number" validate:"required"`
	LicenseExpiry      string `json:"license_expiry" validate:"required,datetime=2006-01-02"`
	VehicleMake        string `json:"vehicle_make" validate:"required"`
	VehicleModel       string `json:"vehicle_model" validate:"required"`
	VehicleYear        int    `json:"vehicle_year" validate:"required"`
	VehicleColor       string `json:"vehicle_color" validate:"required"`
	VehiclePlateNumber string `json:"vehicle_plate_number" validate:"required"`
	VehicleCapacity    int    `json:"vehicle_capacity,omitempty"`
	InsuranceNumber    string `json:"insurance_number" validate:"required"`
	InsuranceExpiry    string `json:"insurance_expiry" validate:"required,datetime=2006-01-02"`
}

// ProfileUpdateRequest is sent as-is to users/update_profile/; nil fields
// are left out so the server treats the update as partial. user_type is
// fixed at registration and has no field here.
type ProfileUpdateRequest struct {
	Email          *string `json:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
	FirstName      *string `json:"first_name,omitempty" mapstructure:"first_name"`
	LastName       *string `json:"last_name,omitempty" mapstructure:"last_name"`
	PhoneNumber    *string `json:"phone_number,omitempty" mapstructure:"phone_number"`
	DateOfBirth    *string `json:"date_of_birth,omitempty" mapstructure:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	ProfilePicture *string `json:"profile_picture,omitempty" mapstructure:"profile_picture"`
}

// IsEmpty reports whether the update carries no fields at all.
func (r *ProfileUpdateRequest) IsEmpty() bool {
	return r.Email == nil && r.FirstName == nil && r.LastName == nil &&
		r.PhoneNumber == nil && r.DateOfBirth == nil && r.ProfilePicture == nil
}
