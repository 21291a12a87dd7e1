package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/gateway"
)

var ErrMissingCredentials = errors.New("username and password are required")

type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Admin     *domain.Admin `json:"admin"`
}

// Service 封装登录、登出和当前管理员相关的接口
type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Login 登录成功后把 token 写入客户端的 Session
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var res LoginResult
	if err := s.client.PostJSON(ctx, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, errors.New("login response did not contain a token")
	}
	if err := s.client.Session().SetToken(res.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	return &res, nil
}

// Logout 让服务端吊销 token，无论服务端是否成功都会清除本地的 token
func (s *Service) Logout(ctx context.Context) error {
	session := s.client.Session()
	if session.Token() == "" {
		return nil
	}

	err := s.client.PostJSON(ctx, "/auth/logout", struct{}{}, nil)
	if clearErr := session.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	if gateway.IsKind(err, gateway.KindUnauthorized) {
		// token 已经失效，等同于登出成功
		return nil
	}
	return err
}

func (s *Service) Me(ctx context.Context) (*domain.Admin, error) {
	var admin domain.Admin
	if err := s.client.Get(ctx, "/me", nil, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}{oldPassword, newPassword}
	return s.client.PatchJSON(ctx, "/me/password", body, nil)
}
