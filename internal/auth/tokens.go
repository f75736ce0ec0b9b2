// Package auth issues access tokens and rotating refresh tokens for staff
// users and portal clients.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

const (
	KindStaff  = "staff"
	KindClient = "client"
)

type Claims struct {
	SubjectID uint
	CompanyID uint
	Role      string
	Kind      string
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type Issuer struct {
	db         *gorm.DB
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(db *gorm.DB, secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		db:         db,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs an access token and stores a fresh refresh token for the subject.
func (i *Issuer) Issue(ctx context.Context, c Claims) (*TokenPair, error) {
	return i.issue(i.db.WithContext(ctx), c)
}

func (i *Issuer) issue(tx *gorm.DB, c Claims) (*TokenPair, error) {
	now := i.now()
	exp := now.Add(i.accessTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        c.SubjectID,
		"company_id": c.CompanyID,
		"role":       c.Role,
		"kind":       c.Kind,
		"iat":        now.Unix(),
		"exp":        exp.Unix(),
	})
	access, err := token.SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	raw, err := randomToken()
	if err != nil {
		return nil, err
	}

	rt := models.RefreshToken{
		Kind:      c.Kind,
		SubjectID: c.SubjectID,
		CompanyID: c.CompanyID,
		Role:      c.Role,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(i.refreshTTL),
	}
	if err := tx.Create(&rt).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: raw, ExpiresAt: exp}, nil
}

// Parse validates an access token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, httperr.ErrBusiness("invalid_token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, httperr.ErrBusiness("invalid_token_claims")
	}

	sub, ok1 := mc["sub"].(float64)
	company, ok2 := mc["company_id"].(float64)
	kind, ok3 := mc["kind"].(string)
	role, _ := mc["role"].(string)
	if !ok1 || !ok2 || !ok3 {
		return nil, httperr.ErrBusiness("invalid_token_payload")
	}

	return &Claims{
		SubjectID: uint(sub),
		CompanyID: uint(company),
		Role:      role,
		Kind:      kind,
	}, nil
}

// Refresh exchanges a refresh token of the given kind for a new pair and
// revokes the one presented.
func (i *Issuer) Refresh(ctx context.Context, kind, raw string) (*TokenPair, error) {
	var pair *TokenPair

	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt models.RefreshToken
		if err := tx.Where("token_hash = ?", hashToken(raw)).First(&rt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrBusiness("invalid_refresh_token")
			}
			return err
		}
		if rt.Kind != kind || rt.IsRevoked() || rt.IsExpired(i.now()) {
			return httperr.ErrBusiness("invalid_refresh_token")
		}
		role, err := currentRole(tx, rt)
		if err != nil {
			return err
		}

		now := i.now()
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", rt.ID).
			Update("revoked_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.ErrBusiness("invalid_refresh_token")
		}

		p, err := i.issue(tx, Claims{
			SubjectID: rt.SubjectID,
			CompanyID: rt.CompanyID,
			Role:      role,
			Kind:      rt.Kind,
		})
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// currentRole reloads the token's subject so a removed user or a deactivated
// client cannot keep rotating. Staff get their present role.
func currentRole(tx *gorm.DB, rt models.RefreshToken) (string, error) {
	switch rt.Kind {
	case KindClient:
		var client models.Client
		err := tx.Select("id", "is_active").
			Where("id = ? AND company_id = ?", rt.SubjectID, rt.CompanyID).
			First(&client).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", httperr.ErrBusiness("invalid_refresh_token")
		}
		if err != nil {
			return "", err
		}
		if !client.IsActive {
			return "", httperr.ErrBusiness("client_inactive")
		}
		return rt.Role, nil
	default:
		var user models.User
		err := tx.Select("id", "role").
			Where("id = ? AND company_id = ?", rt.SubjectID, rt.CompanyID).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", httperr.ErrBusiness("invalid_refresh_token")
		}
		if err != nil {
			return "", err
		}
		return user.Role, nil
	}
}

// Revoke invalidates a refresh token. Unknown tokens are ignored.
func (i *Issuer) Revoke(ctx context.Context, raw string) error {
	return i.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashToken(raw)).
		Update("revoked_at", i.now()).Error
}

// RevokeAll invalidates every refresh token of a subject.
func (i *Issuer) RevokeAll(ctx context.Context, kind string, subjectID uint) error {
	return i.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("kind = ? AND subject_id = ? AND revoked_at IS NULL", kind, subjectID).
		Update("revoked_at", i.now()).Error
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
