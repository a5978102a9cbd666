package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vecinu/internal/models"

	"github.com/gofiber/fiber/v2"
)

const gotrueTimeout = 15 * time.Second

// GoTrueProvider talks to a GoTrue (Supabase Auth) compatible service. Tokens
// it hands out are verified locally with the shared JWT secret.
type GoTrueProvider struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewGoTrueProvider returns a provider for the GoTrue API at baseURL.
func NewGoTrueProvider(baseURL, apiKey string) *GoTrueProvider {
	return &GoTrueProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: gotrueTimeout,
	}
}

type gotrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return "identity provider error"
}

func (p *GoTrueProvider) post(ctx context.Context, path, bearer string, body any, out any) (int, error) {
	agent := fiber.Post(p.baseURL + path)
	agent.Set("apikey", p.apiKey)
	if bearer != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	if body != nil {
		agent.JSON(body)
	}
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)

	code, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, fmt.Errorf("identity provider %s: %w", path, errors.Join(errs...))
	}
	if code >= http.StatusBadRequest {
		var ge gotrueError
		_ = json.Unmarshal(raw, &ge)
		return code, &providerError{status: code, message: ge.text()}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return code, fmt.Errorf("decode identity provider response: %w", err)
		}
	}
	return code, nil
}

type providerError struct {
	status  int
	message string
}

func (e *providerError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.status, e.message)
}

func (p *GoTrueProvider) SignUp(ctx context.Context, user *models.User, password string) error {
	body := map[string]any{
		"email":    user.Email,
		"password": password,
		"data":     map[string]any{"full_name": user.FullName},
	}
	_, err := p.post(ctx, "/signup", "", body, nil)
	var pe *providerError
	if errors.As(err, &pe) {
		switch {
		case pe.status == http.StatusUnprocessableEntity || strings.Contains(strings.ToLower(pe.message), "already registered"):
			return models.NewConflictError("An account with this email already exists")
		case pe.status == http.StatusBadRequest:
			return models.NewValidationError(pe.message)
		}
	}
	return err
}

func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		User        struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	_, err := p.post(ctx, "/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	var pe *providerError
	if errors.As(err, &pe) && pe.status < http.StatusInternalServerError {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	sessionEmail := resp.User.Email
	if sessionEmail == "" {
		sessionEmail = email
	}
	return &Session{
		AccessToken: resp.AccessToken,
		ExpiresAt:   time.Now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Email:       strings.ToLower(sessionEmail),
	}, nil
}

func (p *GoTrueProvider) SignOut(ctx context.Context, accessToken string) error {
	_, err := p.post(ctx, "/logout", accessToken, nil, nil)
	var pe *providerError
	if errors.As(err, &pe) && pe.status == http.StatusUnauthorized {
		return nil
	}
	return err
}

func (p *GoTrueProvider) ResendVerification(ctx context.Context, email string) error {
	_, err := p.post(ctx, "/resend", "", map[string]string{"type": "signup", "email": email}, nil)
	return err
}
