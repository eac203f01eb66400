package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/SAP-F-2025/survey-service/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

type adminService struct {
	repo       repositories.AdminRepository
	tokens     *TokenManager
	bcryptCost int
	recorder   *MutationRecorder
	validator  *validator.Validator
	logger     *ServiceLogger
}

func NewAdminService(
	repo repositories.AdminRepository,
	tokens *TokenManager,
	bcryptCost int,
	recorder *MutationRecorder,
	validator *validator.Validator,
	logger *slog.Logger,
) AdminService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &adminService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		recorder:   recorder,
		validator:  validator,
		logger:     NewServiceLogger(logger, LogConfig{Service: "survey-service", Component: "admins"}),
	}
}

// ===== ACCOUNT MANAGEMENT =====

func (s *adminService) Create(ctx context.Context, req *CreateAdminRequest) (admin *models.Admin, err error) {
	op := s.logger.WithOperation(ctx, "create_admin", "admin")
	defer func() { op.LogResult(boolCount(admin != nil), err) }()

	req.UserName = strings.TrimSpace(req.UserName)
	if err := s.validator.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	exists, err := s.repo.ExistsByUserName(ctx, req.UserName, nil)
	if err != nil {
		return nil, internal("failed to check user name", err)
	}
	if exists {
		return nil, conflictf("admin %s already exists", req.UserName)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, internal("failed to hash password", err)
	}

	admin = &models.Admin{
		UserName:     req.UserName,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err = s.repo.Create(ctx, admin); err != nil {
		admin = nil
		if repositories.IsDuplicateKeyError(err) {
			return nil, conflictf("admin %s already exists", req.UserName)
		}
		return nil, internal("failed to create admin", err)
	}

	s.recordAdmin(ctx, models.AuditAdminCreated, admin, "created admin "+admin.UserName)
	return admin, nil
}

func (s *adminService) Get(ctx context.Context, userName string) (*models.Admin, error) {
	admin, err := s.repo.GetByUserName(ctx, strings.TrimSpace(userName))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFoundf("admin %s not found", userName)
		}
		return nil, internal("failed to get admin", err)
	}
	return admin, nil
}

func (s *adminService) Update(ctx context.Context, userName string, req *UpdateAdminRequest) (admin *models.Admin, err error) {
	op := s.logger.WithOperation(ctx, "update_admin", "admin")
	defer func() { op.LogResult(boolCount(admin != nil), err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	current, err := s.Get(ctx, userName)
	if err != nil {
		return nil, err
	}

	if req.UserName != nil {
		newName := strings.TrimSpace(*req.UserName)
		if newName != current.UserName {
			exists, err := s.repo.ExistsByUserName(ctx, newName, &current.ID)
			if err != nil {
				return nil, internal("failed to check user name", err)
			}
			if exists {
				return nil, conflictf("admin %s already exists", newName)
			}
			current.UserName = newName
		}
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, internal("failed to hash password", err)
		}
		current.PasswordHash = string(hash)
		// A new password ends existing sessions.
		current.RefreshToken = nil
	}
	if req.Role != nil {
		current.Role = *req.Role
	}

	if err = s.repo.Update(ctx, current); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, conflictf("admin %s already exists", current.UserName)
		}
		return nil, internal("failed to update admin", err)
	}

	s.recordAdmin(ctx, models.AuditAdminUpdated, current, "updated admin "+current.UserName)
	return current, nil
}

func (s *adminService) Delete(ctx context.Context, userName string) (err error) {
	op := s.logger.WithOperation(ctx, "delete_admin", "admin")
	defer func() { op.LogResult(boolCount(err == nil), err) }()

	userName = strings.TrimSpace(userName)
	if userName == "" {
		return invalidInputf("user name is required")
	}

	deleted, err := s.repo.DeleteByUserName(ctx, userName)
	if err != nil {
		return internal("failed to delete admin", err)
	}
	if deleted == 0 {
		return notFoundf("admin %s not found", userName)
	}

	s.recordAdmin(ctx, models.AuditAdminDeleted, &models.Admin{UserName: userName}, "deleted admin "+userName)
	return nil
}

// ===== SESSIONS =====

func (s *adminService) Login(ctx context.Context, userName, password string) (result *LoginResult, err error) {
	op := s.logger.WithOperation(ctx, "login", "admin")
	defer func() { op.LogResult(boolCount(result != nil), err) }()

	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return nil, invalidInputf("user name and password are required")
	}

	admin, err := s.repo.GetByUserName(ctx, userName)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, newServiceError(KindUnauthorized, "invalid user name or password", nil)
		}
		return nil, internal("failed to load admin", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, newServiceError(KindUnauthorized, "invalid user name or password", nil)
	}

	result, err = s.issueSession(ctx, admin)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(WithActor(ctx, Actor{ID: admin.ID, UserName: admin.UserName}), Mutation{
		AuditType:   models.AuditAdminLogin,
		Description: "admin " + admin.UserName + " logged in",
	})
	return result, nil
}

// Refresh rotates the session. Only the most recently issued refresh token is accepted.
func (s *adminService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, newServiceError(KindUnauthorized, "invalid refresh token", err)
	}

	admin, err := s.repo.GetByID(ctx, claims.AdminID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, newServiceError(KindUnauthorized, "invalid refresh token", err)
		}
		return nil, internal("failed to load admin", err)
	}

	if admin.RefreshToken == nil || *admin.RefreshToken != refreshToken {
		return nil, newServiceError(KindUnauthorized, "refresh token is expired or used", nil)
	}

	return s.issueSession(ctx, admin)
}

func (s *adminService) Logout(ctx context.Context, adminID uint) error {
	if err := s.repo.SetRefreshToken(ctx, adminID, nil); err != nil {
		if repositories.IsNotFoundError(err) {
			return notFoundf("admin %d not found", adminID)
		}
		return internal("failed to clear session", err)
	}
	return nil
}

// EnsureBootstrapAdmin creates the first ADMIN account when none exists.
func (s *adminService) EnsureBootstrapAdmin(ctx context.Context, userName, password string) error {
	if strings.TrimSpace(userName) == "" || password == "" {
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.Create(ctx, &CreateAdminRequest{UserName: userName, Password: password, Role: models.RoleAdmin})
	if err != nil && !errors.Is(err, ErrConflict) {
		return err
	}
	return nil
}

func (s *adminService) issueSession(ctx context.Context, admin *models.Admin) (*LoginResult, error) {
	access, err := s.tokens.IssueAccessToken(admin)
	if err != nil {
		return nil, internal("failed to issue access token", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(admin)
	if err != nil {
		return nil, internal("failed to issue refresh token", err)
	}

	if err := s.repo.SetRefreshToken(ctx, admin.ID, &refresh); err != nil {
		return nil, internal("failed to store refresh token", err)
	}
	admin.RefreshToken = &refresh

	return &LoginResult{Admin: admin, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *adminService) recordAdmin(ctx context.Context, auditType models.AuditEventType, admin *models.Admin, description string) {
	s.recorder.Record(ctx, Mutation{
		AuditType:   auditType,
		Description: description,
		Changes:     map[string]interface{}{"userName": admin.UserName, "role": admin.Role},
	})
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
