package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func revokedTokenKey(jti string) string {
	return fmt.Sprintf("revoked_token_%s", jti)
}

func (h *Handler) isTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" || h.redisClient == nil {
		return false, nil
	}

	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	n, err := h.redisClient.Exists(ctx, revokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 验证用户名和密码
	admin, err := h.repository.GetAdminByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.unauthorized(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.unauthorized(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !admin.IsActive {
		h.forbidden(w, r, "账号已停用")
		return
	}

	// 生成 JWT
	now := h.now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(admin.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(admin.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// token 由客户端自行保存，之后通过 Authorization 头携带
	h.successResponse(w, r, "登录成功", struct {
		Token     string        `json:"token"`
		ExpiresAt time.Time     `json:"expiresAt"`
		Admin     *domain.Admin `json:"admin"`
	}{
		Token:     ss,
		ExpiresAt: expiration,
		Admin:     admin,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(ClaimsCtxKey).(*AuthClaims)

	ttl := time.Until(claims.ExpiresAt.Time)
	if claims.ID != "" && ttl > 0 && h.redisClient != nil {
		ctx, cancel := h.redisContext(r.Context())
		defer cancel()

		if err := h.redisClient.Set(ctx, revokedTokenKey(claims.ID), 1, ttl).Err(); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "登出成功", nil)
}
