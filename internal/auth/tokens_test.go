package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/testutil"
)

func newIssuer(t *testing.T) *auth.Issuer {
	return auth.NewIssuer(testutil.NewDB(t), "test-secret", time.Hour, 24*time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	iss := newIssuer(t)

	pair, err := iss.Issue(context.Background(), auth.Claims{
		SubjectID: 7, CompanyID: 3, Role: "owner", Kind: auth.KindStaff,
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := iss.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.SubjectID)
	assert.Equal(t, uint(3), claims.CompanyID)
	assert.Equal(t, auth.KindStaff, claims.Kind)
}

func TestParse_RejectsForeignSignature(t *testing.T) {
	iss := newIssuer(t)
	other := auth.NewIssuer(testutil.NewDB(t), "other-secret", time.Hour, time.Hour)

	pair, err := other.Issue(context.Background(), auth.Claims{SubjectID: 1, CompanyID: 1, Kind: auth.KindStaff})
	require.NoError(t, err)

	_, err = iss.Parse(pair.AccessToken)
	assert.True(t, httperr.IsBusiness(err, "invalid_token"))
}

func TestRefresh_RotatesAndRevokes(t *testing.T) {
	db := testutil.NewDB(t)
	iss := auth.NewIssuer(db, "test-secret", time.Hour, 24*time.Hour)
	ctx := context.Background()
	company := testutil.Company(t, db)
	client := testutil.Client(t, db, company.ID, "jane@example.com")

	first, err := iss.Issue(ctx, auth.Claims{SubjectID: client.ID, CompanyID: company.ID, Kind: auth.KindClient})
	require.NoError(t, err)

	second, err := iss.Refresh(ctx, auth.KindClient, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = iss.Refresh(ctx, auth.KindClient, first.RefreshToken)
	assert.True(t, httperr.IsBusiness(err, "invalid_refresh_token"), "reused token must fail")

	_, err = iss.Refresh(ctx, auth.KindStaff, second.RefreshToken)
	assert.True(t, httperr.IsBusiness(err, "invalid_refresh_token"), "kind mismatch must fail")

	require.NoError(t, iss.Revoke(ctx, second.RefreshToken))
	_, err = iss.Refresh(ctx, auth.KindClient, second.RefreshToken)
	assert.Error(t, err)
}

func TestRefresh_RejectsDeactivatedClient(t *testing.T) {
	db := testutil.NewDB(t)
	iss := auth.NewIssuer(db, "test-secret", time.Hour, 24*time.Hour)
	ctx := context.Background()
	company := testutil.Company(t, db)
	client := testutil.Client(t, db, company.ID, "jane@example.com")

	pair, err := iss.Issue(ctx, auth.Claims{SubjectID: client.ID, CompanyID: company.ID, Kind: auth.KindClient})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Client{}).Where("id = ?", client.ID).Update("is_active", false).Error)

	_, err = iss.Refresh(ctx, auth.KindClient, pair.RefreshToken)
	assert.True(t, httperr.IsBusiness(err, "client_inactive"))

	var live int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("revoked_at IS NULL").Count(&live).Error)
	assert.EqualValues(t, 1, live, "a rejected refresh leaves the token untouched")
}

func TestRefresh_StaffRoleAndRemovedUser(t *testing.T) {
	db := testutil.NewDB(t)
	iss := auth.NewIssuer(db, "test-secret", time.Hour, 24*time.Hour)
	ctx := context.Background()
	company := testutil.Company(t, db)

	user := models.User{CompanyID: company.ID, Name: "Ana", Email: "ana@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&user).Error)

	pair, err := iss.Issue(ctx, auth.Claims{SubjectID: user.ID, CompanyID: company.ID, Role: models.RoleAdmin, Kind: auth.KindStaff})
	require.NoError(t, err)
	require.NoError(t, db.Model(&user).Update("role", models.RoleStaff).Error)

	next, err := iss.Refresh(ctx, auth.KindStaff, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := iss.Parse(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, claims.Role)

	require.NoError(t, db.Delete(&user).Error)
	_, err = iss.Refresh(ctx, auth.KindStaff, next.RefreshToken)
	assert.True(t, httperr.IsBusiness(err, "invalid_refresh_token"))
}

func TestHashPassword(t *testing.T) {
	_, err := auth.HashPassword("123")
	assert.True(t, httperr.IsBusiness(err, "weak_password"))

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(hash, "secret1"))
	assert.False(t, auth.CheckPassword(hash, "secret2"))
	assert.False(t, auth.CheckPassword("", "secret1"))
}
