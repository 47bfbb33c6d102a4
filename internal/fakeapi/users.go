package fakeapi

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/pkg/utils"
)

const passwordCost = bcrypt.MinCost

// POST /api/users/
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.CreateUser(req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, user)
}

// CreateUser registers an account the way POST users/ does. Tests use it
// to seed users without going through HTTP.
func (s *Server) CreateUser(req models.RegisterRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		if fields := utils.FieldErrors(err); fields != nil {
			return nil, apperrors.ValidationFailed(fields)
		}
		return nil, apperrors.BadRequest(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[strings.ToLower(req.Username)]; taken {
		return nil, apperrors.ValidationFailed(map[string][]string{
			"username": {"A user with that username already exists."},
		})
	}

	now := s.now().UTC()
	s.lastID.user++
	user := models.User{
		ID:          s.lastID.user,
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		UserType:    req.UserType,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.DateOfBirth != "" {
		dob := req.DateOfBirth
		user.DateOfBirth = &dob
	}

	if user.IsPassenger() {
		in := req.PassengerProfile
		if in == nil {
			in = &models.PassengerProfileInput{}
		}
		payment := in.PreferredPaymentMethod
		if payment == "" {
			payment = models.PaymentMethodCash
		}
		s.lastID.profile++
		user.PassengerProfile = &models.PassengerProfile{
			ID:                     s.lastID.profile,
			PreferredPaymentMethod: payment,
			EmergencyContactName:   in.EmergencyContactName,
			EmergencyContactPhone:  in.EmergencyContactPhone,
		}
	}

	if user.IsDriver() {
		in := req.DriverProfile
		capacity := in.VehicleCapacity
		if capacity == 0 {
			capacity = 4
		}
		s.lastID.profile++
		user.DriverProfile = &models.DriverProfile{
			ID:                 s.lastID.profile,
			LicenseNumber:      in.LicenseNumber,
			VehicleMake:        in.VehicleMake,
			VehicleModel:       in.VehicleModel,
			VehicleYear:        in.VehicleYear,
			VehicleColor:       in.VehicleColor,
			VehiclePlateNumber: in.VehiclePlateNumber,
			VehicleCapacity:    capacity,
		}
	}

	rec := &userRecord{user: user, passwordHash: hash}
	s.users[user.ID] = rec
	s.usernames[strings.ToLower(user.Username)] = user.ID

	view := s.userView(rec)
	return &view, nil
}

// POST /api/users/token/
func (s *Server) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	var rec *userRecord
	if id, ok := s.usernames[strings.ToLower(req.Username)]; ok {
		rec = s.users[id]
	}
	s.mu.Unlock()

	if rec == nil || bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(req.Password)) != nil {
		utils.Error(w, apperrors.Unauthorized("No active account found with the given credentials"))
		return
	}

	tokens, err := s.tokens.issue(rec.user.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, tokens)
}

// GET /api/users/me/
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := s.userView(s.users[currentUserID(r)])
	s.mu.Unlock()

	utils.Success(w, user)
}

// PUT|PATCH /api/users/update_profile/
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &s.users[currentUserID(r)].user
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = *req.PhoneNumber
	}
	if req.DateOfBirth != nil {
		dob := *req.DateOfBirth
		u.DateOfBirth = &dob
	}
	if req.ProfilePicture != nil {
		pic := *req.ProfilePicture
		u.ProfilePicture = &pic
	}
	// Unknown fields such as user_type are ignored, as the backend does.
	u.UpdatedAt = s.now().UTC()

	utils.Success(w, s.userView(s.users[u.ID]))
}
