package relink_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/relinkhq/relink"
	"github.com/stretchr/testify/assert"
)

func TestSessionObject(t *testing.T) {
	userID := uuid.New().String()
	now := time.Now()
	expiry := now.Add(time.Hour)

	session := &relink.SessionObject{
		UserID:         userID,
		UserName:       "Test User",
		Issuer:         "test-issuer",
		IssuedAt:       &now,
		ExpirationDate: &expiry,
	}

	assert.Equal(t, userID, session.GetUserID())

	userUUID, err := session.GetUserUUID()
	assert.NoError(t, err)
	assert.Equal(t, userID, userUUID.String())

	assert.Equal(t, "Test User", session.GetUserName())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.Equal(t, &now, session.GetIssuedAt())
	assert.Equal(t, &expiry, session.GetExpiration())

	stringRep := session.String()
	assert.Contains(t, stringRep, userID)
	assert.Contains(t, stringRep, "Test User")
	assert.Contains(t, stringRep, "test-issuer")
}

func TestSessionObject_InvalidUserID(t *testing.T) {
	session := &relink.SessionObject{UserID: "not-a-uuid"}

	_, err := session.GetUserUUID()
	assert.Error(t, err)
}

func TestSessionObject_String_NilIssuedAt(t *testing.T) {
	session := &relink.SessionObject{UserID: "abc"}

	assert.Contains(t, session.String(), "<nil>")
}
