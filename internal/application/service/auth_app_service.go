// Package service provides application-level services that orchestrate the
// domain services behind the HTTP handlers.
package service

import (
	"context"
	"time"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	"github.com/snowch/vast-sp-console/internal/domain/models"
	domainService "github.com/snowch/vast-sp-console/internal/domain/service"
	"github.com/snowch/vast-sp-console/internal/infrastructure/monitoring"
	"github.com/snowch/vast-sp-console/pkg/errors"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// AuthAppService is the authentication surface consumed by the HTTP layer.
type AuthAppService interface {
	// Login authenticates against the cluster and mints a session token.
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)

	// Verify checks a session token locally and then revalidates the
	// embedded access token against the cluster.
	Verify(ctx context.Context, token string) (*models.User, error)

	// Claims decodes a session token without the cluster round trip.
	Claims(token string) (*models.SessionClaims, error)
}

type authAppServiceImpl struct {
	codec   domainService.TokenCodec
	cluster domainService.ClusterAuthService
	metrics *monitoring.Metrics
	logger  logger.Logger
}

// NewAuthAppService creates a new AuthAppService.
func NewAuthAppService(
	codec domainService.TokenCodec,
	cluster domainService.ClusterAuthService,
	metrics *monitoring.Metrics,
	log logger.Logger,
) AuthAppService {
	return &authAppServiceImpl{
		codec:   codec,
		cluster: cluster,
		metrics: metrics,
		logger:  log,
	}
}

func (s *authAppServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	tenant := req.Tenant
	if tenant == "" {
		tenant = "default"
	}

	start := time.Now()
	session, err := s.cluster.Authenticate(ctx, req.VastHost, req.VastPort, req.Username, req.Password, tenant)
	if err != nil {
		s.recordLogin("failure", start)
		s.logger.Warn(ctx, "cluster login failed",
			logger.String("host", req.VastHost),
			logger.Int("port", req.VastPort),
			logger.String("username", req.Username),
			logger.String("kind", string(errors.KindOf(err))),
		)
		return nil, err
	}

	bundle := &models.SessionBundle{
		Username:     session.Username,
		VastHost:     session.Host,
		VastPort:     session.Port,
		Tenant:       session.Tenant,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}
	token, err := s.codec.Mint(bundle)
	if err != nil {
		s.recordLogin("failure", start)
		s.logger.Error(ctx, "failed to mint session token", err)
		return nil, errors.Internal("failed to create session").WithCause(err)
	}

	s.recordLogin("success", start)
	s.logger.Info(ctx, "user logged in",
		logger.String("username", session.Username),
		logger.String("host", session.Host),
		logger.String("tenant", session.Tenant),
	)
	return &dto.LoginResponse{
		Token: token,
		User: models.User{
			Username: session.Username,
			VastHost: session.Host,
			VastPort: session.Port,
			Tenant:   session.Tenant,
		},
	}, nil
}

func (s *authAppServiceImpl) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	ok, err := s.cluster.VerifyToken(ctx, claims.AccessToken, claims.VastHost, claims.VastPort)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Unauthenticated("cluster session is no longer valid")
	}

	user := claims.User()
	return &user, nil
}

func (s *authAppServiceImpl) Claims(token string) (*models.SessionClaims, error) {
	return s.codec.Verify(token)
}

func (s *authAppServiceImpl) recordLogin(result string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordLogin(result, time.Since(start))
	}
}
