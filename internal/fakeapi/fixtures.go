package fakeapi

import (
	"time"

	"github.com/jaswdr/faker"

	"github.com/aditya/bakshish/internal/models"
)

// FixturePassword is the password of every account built by the fixtures.
const FixturePassword = "secret-pass-123"

var fake = faker.New()

// PassengerFixture returns a valid passenger registration with fake
// personal details.
func PassengerFixture(username string) models.RegisterRequest {
	person := fake.Person()
	return models.RegisterRequest{
		Username:    username,
		Email:       username + "@" + fake.Internet().Domain(),
		Password:    FixturePassword,
		Password2:   FixturePassword,
		FirstName:   person.FirstName(),
		LastName:    person.LastName(),
		PhoneNumber: fake.Phone().Number(),
		UserType:    models.UserTypePassenger,
		PassengerProfile: &models.PassengerProfileInput{
			PreferredPaymentMethod: fake.RandomStringElement([]string{
				models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodWallet,
			}),
			EmergencyContactName:  person.Name(),
			EmergencyContactPhone: fake.Phone().Number(),
		},
	}
}

// DriverFixture returns a valid driver registration with a fake vehicle.
func DriverFixture(username string) models.RegisterRequest {
	req := PassengerFixture(username)
	req.UserType = models.UserTypeDriver
	req.PassengerProfile = nil

	expiry := time.Now().AddDate(2, 0, 0).Format("2006-01-02")
	car := fake.Car()
	req.DriverProfile = &models.DriverProfileInput{
		LicenseNumber:      fake.Numerify("DL-##########"),
		LicenseExpiry:      expiry,
		VehicleMake:        car.Maker(),
		VehicleModel:       car.Model(),
		VehicleYear:        fake.IntBetween(2012, 2025),
		VehicleColor:       fake.Color().ColorName(),
		VehiclePlateNumber: fake.Numerify("KA-##-####"),
		VehicleCapacity:    4,
		InsuranceNumber:    fake.Numerify("INS-########"),
		InsuranceExpiry:    expiry,
	}
	return req
}

// TripFixture returns a trip between two fake addresses a few kilometres
// apart.
func TripFixture() models.TripCreateRequest {
	passengers := models.DefaultPassengers
	return models.TripCreateRequest{
		StartLocationName:  fake.Address().StreetAddress(),
		StartLatitude:      28.55 + fake.Float64(4, 0, 1)/10,
		StartLongitude:     77.15 + fake.Float64(4, 0, 1)/10,
		EndLocationName:    fake.Address().StreetAddress(),
		EndLatitude:        28.55 + fake.Float64(4, 0, 1)/10,
		EndLongitude:       77.15 + fake.Float64(4, 0, 1)/10,
		PassengerNotes:     fake.Lorem().Sentence(6),
		NumberOfPassengers: &passengers,
	}
}
