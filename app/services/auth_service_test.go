package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rangershop/app/repositories"
	"github.com/shashiranjanraj/rangershop/app/services"
	"github.com/shashiranjanraj/rangershop/pkg/apperr"
	"github.com/shashiranjanraj/rangershop/pkg/auth"
	"github.com/shashiranjanraj/rangershop/pkg/event"
)

func newAuthService(t *testing.T) (*services.AuthService, *event.Bus) {
	t.Helper()
	db := newTestDB(t)
	events := event.NewBus()
	tokens := auth.NewManager("test-secret", time.Hour)
	return services.NewAuthService(repositories.NewUserRepository(db), tokens, events), events
}

func validSignup() services.RegisterInput {
	return services.RegisterInput{
		FirstName: "Johnny",
		LastName:  "Tightlips",
		Username:  "johnny",
		Email:     "johnny@example.com",
		Password:  "hushhushhush",
	}
}

func TestRegister(t *testing.T) {
	svc, events := newAuthService(t)

	var fired int
	events.Listen(event.UserRegistered, func(interface{}) { fired++ })

	user, err := svc.Register(validSignup())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "johnny", user.Username)
	assert.NotEqual(t, "hushhushhush", user.Password, "password must be stored hashed")
	assert.Equal(t, 1, fired)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(validSignup())
	require.NoError(t, err)

	// Same username, different email.
	in := validSignup()
	in.Email = "other@example.com"
	_, err = svc.Register(in)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	// Same email, different username.
	in = validSignup()
	in.Username = "someoneelse"
	_, err = svc.Register(in)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestRegisterRequiresCredentials(t *testing.T) {
	svc, _ := newAuthService(t)

	in := validSignup()
	in.Password = ""
	_, err := svc.Register(in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuthService(t)

	registered, err := svc.Register(validSignup())
	require.NoError(t, err)

	user, token, err := svc.Authenticate("johnny@example.com", "hushhushhush")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	// The token carries the user id as its subject.
	tokens := auth.NewManager("test-secret", time.Hour)
	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.ClientID)
}

func TestAuthenticateBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(validSignup())
	require.NoError(t, err)

	// Wrong password and unknown email look identical to the caller.
	_, _, err = svc.Authenticate("johnny@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, _, err = svc.Authenticate("nobody@example.com", "hushhushhush")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestToken(t *testing.T) {
	svc, _ := newAuthService(t)

	token, err := svc.Token("cust-42")
	require.NoError(t, err)

	tokens := auth.NewManager("test-secret", time.Hour)
	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "cust-42", claims.ClientID)

	_, err = svc.Token("")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
