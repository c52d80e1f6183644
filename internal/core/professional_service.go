package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/catalog"
	"safespace.app/backend/internal/logger"
	"safespace.app/backend/internal/store"
)

// ProfessionalLookup finds the professional row of a user.
type ProfessionalLookup interface {
	GetProfessionalByUserID(ctx context.Context, userID string) (*store.Professional, error)
}

// verifiedProfessional reports whether userID holds a verified professional
// profile.
func verifiedProfessional(ctx context.Context, lookup ProfessionalLookup, userID string) (*store.Professional, bool, error) {
	pro, err := lookup.GetProfessionalByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up professional: %w", err)
	}
	return pro, pro.Status == store.StatusVerified, nil
}

type ProfessionalStore interface {
	ProfessionalLookup
	CreateProfessionalAccount(ctx context.Context, email, passwordHash string, pro *store.Professional) (*store.User, error)
	GetProfessionalByID(ctx context.Context, id string) (*store.Professional, error)
	ListProfessionals(ctx context.Context, status string) ([]store.Professional, error)
	SetProfessionalStatus(ctx context.Context, id, status string, verifiedAt *time.Time) (*store.Professional, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

type RegistrationForm struct {
	Email                string   `json:"email" validate:"required,email,max=320"`
	Password             string   `json:"password" validate:"required,min=6,max=72"`
	FullName             string   `json:"full_name" validate:"required,max=200"`
	Title                string   `json:"title" validate:"required,max=200"`
	Bio                  string   `json:"bio" validate:"max=2000"`
	CertificationDetails string   `json:"certification_details" validate:"max=2000"`
	Specializations      []string `json:"specializations"`
	Languages            []string `json:"languages"`
}

const (
	DecisionVerify = "verify"
	DecisionReject = "reject"
)

type ProfessionalService struct {
	store      ProfessionalStore
	autoVerify bool
	logger     *logger.Logger
}

func NewProfessionalService(st ProfessionalStore, autoVerify bool, log *logger.Logger) *ProfessionalService {
	return &ProfessionalService{store: st, autoVerify: autoVerify, logger: log}
}

// Register creates a professional account. New professionals wait for review
// unless auto verification is on.
func (s *ProfessionalService) Register(ctx context.Context, form RegistrationForm) (*store.Professional, error) {
	form.Email = store.NormalizeEmail(form.Email)
	form.FullName = strings.TrimSpace(form.FullName)
	form.Title = strings.TrimSpace(form.Title)
	if err := validateStruct(form); err != nil {
		return nil, err
	}
	specs, err := pickFrom(form.Specializations, catalog.Specializations, "specialization")
	if err != nil {
		return nil, err
	}
	langs, err := pickFrom(form.Languages, catalog.Languages, "language")
	if err != nil {
		return nil, err
	}
	if len(langs) == 0 {
		langs = []string{"English"}
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	pro := &store.Professional{
		FullName:             form.FullName,
		Title:                form.Title,
		Specializations:      specs,
		Languages:            langs,
		Bio:                  optional(form.Bio),
		CertificationDetails: optional(form.CertificationDetails),
		Status:               store.StatusPending,
	}
	if s.autoVerify {
		at := time.Now().UTC()
		pro.Status = store.StatusVerified
		pro.VerifiedAt = &at
	}

	if _, err := s.store.CreateProfessionalAccount(ctx, form.Email, hash, pro); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register professional: %w", err)
	}
	s.logger.Info("professional registered", "user_id", pro.UserID, "status", pro.Status)
	return pro, nil
}

// Directory lists verified professionals.
func (s *ProfessionalService) Directory(ctx context.Context) ([]store.Professional, error) {
	pros, err := s.store.ListProfessionals(ctx, store.StatusVerified)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return pros, nil
}

// Pending lists professionals awaiting review. Admins only.
func (s *ProfessionalService) Pending(ctx context.Context, sess auth.Session) ([]store.Professional, error) {
	if err := s.requireAdmin(ctx, sess); err != nil {
		return nil, err
	}
	pros, err := s.store.ListProfessionals(ctx, store.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending professionals: %w", err)
	}
	return pros, nil
}

func (s *ProfessionalService) ByUserID(ctx context.Context, userID string) (*store.Professional, error) {
	return s.store.GetProfessionalByUserID(ctx, userID)
}

// Review verifies or rejects a professional. Admins only.
func (s *ProfessionalService) Review(ctx context.Context, sess auth.Session, professionalID, decision string) (*store.Professional, error) {
	if err := s.requireAdmin(ctx, sess); err != nil {
		return nil, err
	}

	var status string
	var verifiedAt *time.Time
	switch decision {
	case DecisionVerify:
		at := time.Now().UTC()
		status, verifiedAt = store.StatusVerified, &at
	case DecisionReject:
		status = store.StatusRejected
	default:
		return nil, invalidf("decision must be %q or %q", DecisionVerify, DecisionReject)
	}

	pro, err := s.store.SetProfessionalStatus(ctx, professionalID, status, verifiedAt)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to review professional: %w", err)
	}
	s.logger.Info("professional reviewed", "professional_id", professionalID, "status", status, "reviewer", sess.UserID)
	return pro, nil
}

func (s *ProfessionalService) requireAdmin(ctx context.Context, sess auth.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	ok, err := s.store.HasRole(ctx, sess.UserID, store.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// pickFrom keeps the distinct values of picked, all of which must be in allowed.
func pickFrom(picked, allowed []string, what string) ([]string, error) {
	out := []string{}
	seen := map[string]bool{}
	for _, p := range picked {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		found := false
		for _, a := range allowed {
			if a == p {
				found = true
				break
			}
		}
		if !found {
			return nil, invalidf("unknown %s %q", what, p)
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
