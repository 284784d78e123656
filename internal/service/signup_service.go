package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "scholarchat/internal/errors"
	"scholarchat/internal/model"
	"scholarchat/internal/notify"
	"scholarchat/internal/otp"
	"scholarchat/internal/repository"
)

const bcryptCost = 10

// ProfileInput is the demographic intake submitted after email verification.
type ProfileInput struct {
	Name             string
	Gender           string
	DOB              string
	TotalIncome      string
	Caste            string
	FatherOccupation string
	MotherOccupation string
}

// SignupService drives the signup, verification, intake, and login flows.
type SignupService interface {
	// BeginSignup issues a verification code for a new email. emailed is
	// false when delivery is deferred to the caller (weak-trust mode).
	BeginSignup(ctx context.Context, email, password string) (code string, emailed bool, err error)
	// VerifyCode redeems the code and returns the held password hash.
	VerifyCode(ctx context.Context, email, code string) (passwordHash string, err error)
	// CompleteProfile persists the student record and finishes signup.
	CompleteProfile(ctx context.Context, email, passwordHash string, profile ProfileInput) (*model.Student, error)
	// Login authenticates against the stored credential.
	Login(ctx context.Context, email, password string) (*model.Student, error)
}

type signupService struct {
	students  repository.StudentRepository
	issuer    *otp.Issuer
	sender    notify.Sender
	sendEmail bool
}

// NewSignupService creates a signup service. sendEmail selects whether codes
// are delivered over SMTP or handed back to the caller.
func NewSignupService(students repository.StudentRepository, issuer *otp.Issuer, sender notify.Sender, sendEmail bool) SignupService {
	return &signupService{
		students:  students,
		issuer:    issuer,
		sender:    sender,
		sendEmail: sendEmail,
	}
}

// BeginSignup checks for an existing account, hashes the candidate password,
// and issues a code. An already registered email never gets a code.
func (s *signupService) BeginSignup(ctx context.Context, email, password string) (string, bool, error) {
	exists, err := s.students.ExistsByEmail(ctx, email)
	if err != nil {
		return "", false, fmt.Errorf("check account existence: %w", err)
	}
	if exists {
		return "", false, apperrors.ErrStudentExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", false, fmt.Errorf("hash password: %w", err)
	}

	code, err := s.issuer.Issue(ctx, email, string(hashed))
	if err != nil {
		return "", false, fmt.Errorf("issue verification code: %w", err)
	}

	if !s.sendEmail {
		return code, false, nil
	}

	// A delivery failure leaves the pending entry valid, but the signup step
	// must surface the error rather than advance silently.
	if err := s.sender.SendVerificationCode(email, code); err != nil {
		log.Printf("signup: send verification code: %v", err)
		return "", false, apperrors.ErrOTPDelivery
	}
	return code, true, nil
}

func (s *signupService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	return s.issuer.Verify(ctx, email, code)
}

// CompleteProfile creates the student record. A duplicate insert (lost race
// with a concurrent signup) reports the same conflict as an early duplicate.
func (s *signupService) CompleteProfile(ctx context.Context, email, passwordHash string, profile ProfileInput) (*model.Student, error) {
	student := &model.Student{
		Name:             profile.Name,
		Gender:           profile.Gender,
		DOB:              profile.DOB,
		TotalIncome:      profile.TotalIncome,
		Caste:            profile.Caste,
		FatherOccupation: profile.FatherOccupation,
		MotherOccupation: profile.MotherOccupation,
		Email:            email,
		PasswordHash:     passwordHash,
	}

	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrStudentExists
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

// Login collapses "unknown email" and "wrong password" into one error so the
// response does not disclose which emails are registered.
func (s *signupService) Login(ctx context.Context, email, password string) (*model.Student, error) {
	student, err := s.students.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredential
		}
		return nil, fmt.Errorf("find student: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredential
	}
	return student, nil
}
