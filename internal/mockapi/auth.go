package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// bcryptMaxBytes is the longest password bcrypt accepts.
const bcryptMaxBytes = 72

var (
	serverEmailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	serverUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	fullNamePattern       = regexp.MustCompile(`^[\p{L}\s-]+$`)
)

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

type registerResponse struct {
	Detail string             `json:"detail"`
	User   domain.UserProfile `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	User        domain.UserProfile `json:"user"`
}

type userResponse struct {
	User domain.UserProfile `json:"user"`
}

// register creates an observer account pending e-mail confirmation and
// queues the confirmation mail.
func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if msg := checkRegistration(req); msg != "" {
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	regToken := uuid.NewString()
	account, err := s.accounts.Create(c.Request().Context(), &domain.Account{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         string(domain.RoleObserver),
		PasswordHash: string(hash),
		RegToken:     regToken,
		CreatedAt:    s.now().UTC(),
	})
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Username already taken")
	case errors.Is(err, domain.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	case err != nil:
		return err
	}

	s.mailer.Enqueue(domain.ConfirmationMail{
		To:   account.Email,
		Link: s.confirmationLink(regToken),
	})
	s.log.Info().Int64("user_id", account.ID).Msg("account registered, awaiting confirmation")

	return c.JSON(http.StatusOK, registerResponse{
		Detail: "Confirm your e-mail",
		User:   account.Profile(),
	})
}

// verify follows a confirmation link and sends the browser back to the
// front end with a success or error message.
func (s *Server) verify(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return s.redirectFrontend(c, "error", "Verification token not provided")
	}

	ctx := c.Request().Context()
	account, err := s.accounts.FindByRegToken(ctx, token)
	if err != nil {
		return s.redirectFrontend(c, "error", "Invalid or expired verification token")
	}
	if err := s.accounts.Confirm(ctx, account.ID); err != nil {
		return err
	}

	s.log.Info().Int64("user_id", account.ID).Msg("account confirmed")
	return s.redirectFrontend(c, "success", fmt.Sprintf("Account %s confirmed!", account.Email))
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	}

	account, err := s.accounts.FindByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	}
	if !account.Confirmed() {
		return echo.NewHTTPError(http.StatusForbidden, "Confirm your e-mail before logging in")
	}

	token, err := s.generateToken(account)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        account.Profile(),
	})
}

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, userResponse{User: currentAccount(c).Profile()})
}

func (s *Server) generateToken(account *domain.Account) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Username: account.Username,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) confirmationLink(token string) string {
	return strings.TrimRight(s.cfg.PublicURL, "/") + "/verify?" + url.Values{"token": {token}}.Encode()
}

func (s *Server) redirectFrontend(c echo.Context, kind, msg string) error {
	target := strings.TrimRight(s.cfg.FrontendURL, "/") + "/?" + url.Values{kind: {msg}}.Encode()
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

// checkRegistration applies the server-side registration rules and returns
// the first violation. The confirmation is only compared when sent.
func checkRegistration(req registerRequest) string {
	if req.Email == "" || req.Username == "" || req.FullName == "" || req.Password == "" {
		return "Not enough data"
	}

	if !serverEmailPattern.MatchString(req.Email) {
		return "Invalid email format"
	}

	switch n := len(req.Username); {
	case n < 3:
		return "Username must be at least 3 characters"
	case n > 50:
		return "Username is too long (50 characters max)"
	}
	if !serverUsernamePattern.MatchString(req.Username) {
		return "Username may contain only latin letters, digits and underscore"
	}

	name := strings.TrimSpace(req.FullName)
	switch n := len([]rune(name)); {
	case n < 2:
		return "Full name is too short"
	case len([]rune(req.FullName)) > 100:
		return "Full name is too long (100 characters max)"
	}
	if !fullNamePattern.MatchString(req.FullName) {
		return "Full name may contain only letters, spaces and hyphens"
	}
	if len(strings.Fields(name)) < 2 {
		return "Enter both first and last name"
	}

	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return "Passwords do not match"
	}
	if msg := checkPassword(req.Password); msg != "" {
		return msg
	}
	if len(req.Password) > bcryptMaxBytes {
		return "Password is too long"
	}
	return ""
}

func checkPassword(password string) string {
	if len([]rune(password)) < 8 {
		return "Password must be at least 8 characters"
	}

	var digit, letter, upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
			upper = upper || unicode.IsUpper(r)
			lower = lower || unicode.IsLower(r)
		}
	}

	switch {
	case !digit:
		return "Password must contain at least one digit"
	case !letter:
		return "Password must contain at least one letter"
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !lower:
		return "Password must contain at least one lowercase letter"
	}
	return ""
}
