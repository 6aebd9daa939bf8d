package service

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stackover-dev/stackover/internal/config"
	"github.com/stackover-dev/stackover/internal/domain"
	"github.com/stackover-dev/stackover/internal/errors"
	"github.com/stackover-dev/stackover/internal/jwt"
	"github.com/stackover-dev/stackover/internal/logger"
	"github.com/stackover-dev/stackover/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const otpCodeLength = 6

type AuthService interface {
	Register(name, email, password string) (domain.User, error)
	Login(creds domain.Credentials) (string, error)
	Logout(tokenString string) error
	RequestPasswordReset(email string) error
	ConfirmPasswordReset(email, code, newPassword string) error
	UpdateProfile(actor *domain.User, id domain.UserId, name, email string) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByEmail(email string) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
	UpdateUser(id domain.UserId, name, email string) error
	SetOTP(id domain.UserId, code string, expires time.Time) error
	ClearOTP(id domain.UserId) error
	ConfirmPasswordReset(id domain.UserId, passHash, code string, now time.Time) (bool, error)
}

type Email interface {
	Send(recipientEmail, subject, body string) error
	IsCorrect(email string) error
}

// RevocationLedger is the append-only set of revoked token ids.
type RevocationLedger interface {
	Record(jti string) error
	IsRevoked(jti string) bool
}

type Auth struct {
	storage AuthStorage
	email   Email
	jwt     jwt.JwtService
	ledger  RevocationLedger
	cfg     *config.Config
	now     func() time.Time
}

func NewAuth(storage AuthStorage, email Email, jwtService jwt.JwtService, ledger RevocationLedger, cfg *config.Config) *Auth {
	return &Auth{
		storage: storage,
		email:   email,
		jwt:     jwtService,
		ledger:  ledger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Register creates a new user account. Uniqueness of name and email is
// enforced by the storage layer; collisions surface as Conflict.
func (a *Auth) Register(name, email, password string) (domain.User, error) {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return domain.User{}, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	user := domain.User{Name: name, Email: email, PassHash: string(passHash)}
	id, err := a.storage.SaveUser(user)
	if err != nil {
		return domain.User{}, err
	}
	user.Id = id
	return user, nil
}

// Login checks the credentials and returns a fresh access token.
// A missing user and a wrong password produce the same answer so login
// can't be used to probe which emails are registered.
func (a *Auth) Login(creds domain.Credentials) (string, error) {
	email := strings.ToLower(creds.Email)

	if err := a.email.IsCorrect(email); err != nil {
		return "", err
	}

	user, err := a.storage.UserByEmail(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.Unauthorized("Invalid email or password")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(creds.Password)); err != nil {
		logger.Log.Debug("password verification failed", "user_id", user.Id)
		return "", errors.Unauthorized("Invalid email or password")
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return "", err
	}

	return token, nil
}

// Logout appends the token's id to the revocation ledger. A token that
// no longer decodes (expired, tampered) has nothing left to revoke and
// logout still succeeds; the cookie is cleared by the handler either way.
func (a *Auth) Logout(tokenString string) error {
	claims, err := a.jwt.DecodeToken(tokenString)
	if err != nil {
		return nil
	}
	return a.ledger.Record(claims.ID)
}

// RequestPasswordReset generates a one-time code, stores it with its
// expiry (overwriting any pending code) and emails it to the user.
// A failed send is reported to the caller but does not roll back the
// stored code: the user can simply request another one.
func (a *Auth) RequestPasswordReset(email string) error {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return err
	}

	user, err := a.storage.UserByEmail(email)
	if err != nil {
		return err
	}

	code := utils.GenerateOTPCode(otpCodeLength)
	expires := a.now().UTC().Add(a.cfg.OtpTTL())
	if err := a.storage.SetOTP(user.Id, code, expires); err != nil {
		return err
	}

	emailBody := fmt.Sprintf(`
		Hello %s,

		Your password reset code below

		%s

		It is valid for %.0f minutes. If you did not request this, please ignore this email.
	`, user.Name, code, a.cfg.OtpTTL().Minutes())

	if err := a.email.Send(email, "Your password reset code", emailBody); err != nil {
		logger.Log.Error("failed to send reset code", "user_id", user.Id, "error", err)
		return &errors.ErrorWithStatusCode{Message: "Failed to send reset code", StatusCode: http.StatusBadGateway}
	}
	return nil
}

// ConfirmPasswordReset replaces the password if the submitted code
// matches the pending one and has not expired. The check and the swap
// are a single storage operation; on failure nothing changes.
func (a *Auth) ConfirmPasswordReset(email, code, newPassword string) error {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return err
	}

	user, err := a.storage.UserByEmail(email)
	if err != nil {
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return err
	}

	updated, err := a.storage.ConfirmPasswordReset(user.Id, string(passHash), code, a.now().UTC())
	if err != nil {
		return err
	}
	if !updated {
		return errors.BadRequest("Invalid or expired code")
	}
	return nil
}

// UpdateProfile edits name/email. Users may only edit their own record.
func (a *Auth) UpdateProfile(actor *domain.User, id domain.UserId, name, email string) (domain.User, error) {
	if actor == nil || actor.Id != id {
		return domain.User{}, errors.Forbidden("You can only edit your own profile")
	}

	email = strings.ToLower(email)
	if err := a.email.IsCorrect(email); err != nil {
		return domain.User{}, err
	}

	if err := a.storage.UpdateUser(id, name, email); err != nil {
		return domain.User{}, err
	}
	return a.storage.UserById(id)
}

func (a *Auth) UserById(id domain.UserId) (domain.User, error) {
	return a.storage.UserById(id)
}
