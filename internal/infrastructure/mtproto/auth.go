package mtproto

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"

	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/infrastructure/http/server"
)

// Hints sent to the chat while the login flow waits for a code
const (
	cliCodeHint = "Provide the login code via cli."
	webCodeHint = "Provide the login code using this => %s"
)

// codeInputTimeout bounds a single wait for the login code
const codeInputTimeout = 2 * time.Minute

const maxAuthAttempts = 3

// CodeProvider supplies the login code Telegram sent to the account.
// hint is called once the provider is ready to receive the code.
type CodeProvider interface {
	GetCode(ctx context.Context, hint deps.CodeRequestFunc) (string, error)
}

// ConsoleCodeProvider implements CodeProvider by reading a line from In
type ConsoleCodeProvider struct {
	In  io.Reader
	Out io.Writer
}

// NewConsoleCodeProvider reads codes from stdin
func NewConsoleCodeProvider() *ConsoleCodeProvider {
	return &ConsoleCodeProvider{In: os.Stdin, Out: os.Stdout}
}

// GetCode prompts user for authentication code via console with timeout
func (p *ConsoleCodeProvider) GetCode(ctx context.Context, hint deps.CodeRequestFunc) (string, error) {
	hint(cliCodeHint)
	fmt.Fprint(p.Out, "Enter authentication code: ")

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(p.In)
		code, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || code == "") {
			errChan <- fmt.Errorf("failed to read code: %w", err)
			return
		}
		codeChan <- strings.TrimSpace(code)
	}()

	return awaitCode(ctx, codeChan, errChan)
}

// WebCodeProvider implements CodeProvider with a temporary HTTP form
type WebCodeProvider struct {
	port      string
	publicURL string
	logger    zerolog.Logger
}

// NewWebCodeProvider serves the code form on port while a code is awaited.
// publicURL is the address given to the user, it defaults to localhost.
func NewWebCodeProvider(port, publicURL string, logger zerolog.Logger) *WebCodeProvider {
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%s", port)
	}
	return &WebCodeProvider{
		port:      port,
		publicURL: strings.TrimSuffix(publicURL, "/") + "/code",
		logger:    logger,
	}
}

// GetCode starts the form server, tells the user where it is and waits for a submission
func (p *WebCodeProvider) GetCode(ctx context.Context, hint deps.CodeRequestFunc) (string, error) {
	codeChan := make(chan string, 1)

	srv := server.NewServer("pibot-login", p.port, p.logger)
	srv.RegisterCodeInput(func(code string) error {
		select {
		case codeChan <- strings.TrimSpace(code):
			return nil
		default:
			return fmt.Errorf("code already received")
		}
	})

	if err := srv.Start(); err != nil {
		return "", fmt.Errorf("failed to start code server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to stop code server")
		}
	}()

	hint(fmt.Sprintf(webCodeHint, p.publicURL))
	return awaitCode(ctx, codeChan, nil)
}

func awaitCode(ctx context.Context, codeChan <-chan string, errChan <-chan error) (string, error) {
	timer := time.NewTimer(codeInputTimeout)
	defer timer.Stop()

	select {
	case code := <-codeChan:
		return code, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("code input cancelled: %w", ctx.Err())
	case <-timer.C:
		return "", fmt.Errorf("code input timeout")
	}
}

// ensureAuthorized resumes the stored session or runs the login flow
func (c *Client) ensureAuthorized(ctx context.Context, client *telegram.Client, onCodeRequest deps.CodeRequestFunc) error {
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check auth status: %w", err)
	}
	if status.Authorized {
		c.logger.Info().Msg("session restored from storage")
		return nil
	}

	if c.cfg.PhoneNumber == "" {
		// The stored session was revoked and cannot be renewed without a phone number
		if err := c.sessionStorage.DeleteSession(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to delete stale session")
		}
		return fmt.Errorf("%w: session is not authorized and no phone number is configured", ErrAuthFailed)
	}

	c.logger.Info().Msg("not authorized, starting authentication")
	if err := c.authenticateWithRetry(ctx, client, onCodeRequest); err != nil {
		c.logger.Error().Err(err).Msg("authentication failed")
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	return nil
}

// authenticateWithRetry performs authentication, retrying FLOOD_WAIT and mistyped codes
func (c *Client) authenticateWithRetry(ctx context.Context, client *telegram.Client, onCodeRequest deps.CodeRequestFunc) error {
	var lastErr error

	for attempt := 0; attempt < maxAuthAttempts; attempt++ {
		err := c.performAuthentication(ctx, client, onCodeRequest)
		if err == nil {
			return nil
		}
		lastErr = err

		// Check for non-retryable errors that should fail immediately
		if isNonRetryableAuthError(err) {
			return fmt.Errorf("authentication failed with non-retryable error: %w", err)
		}

		if wait, ok := tgerr.AsFloodWait(err); ok {
			c.logger.Warn().
				Int("attempt", attempt+1).
				Dur("wait_duration", wait).
				Msg("flood wait detected, waiting before retry")
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if tgerr.Is(err, "PHONE_CODE_INVALID") {
			c.logger.Warn().Int("attempt", attempt+1).Msg("invalid phone code provided")
			continue
		}

		return err
	}

	return fmt.Errorf("authentication failed after %d attempts: %w", maxAuthAttempts, lastErr)
}

// performAuthentication performs a single authentication attempt
func (c *Client) performAuthentication(ctx context.Context, client *telegram.Client, onCodeRequest deps.CodeRequestFunc) error {
	flow := auth.NewFlow(
		auth.Constant(
			c.cfg.PhoneNumber,
			c.cfg.Password,
			auth.CodeAuthenticatorFunc(func(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
				c.logger.Info().Msg("authentication code has been sent")
				return c.codes.GetCode(ctx, onCodeRequest)
			}),
		),
		auth.SendCodeOptions{},
	)

	if err := client.Auth().IfNecessary(ctx, flow); err != nil {
		return err
	}

	c.logger.Info().Msg("authentication successful")
	return nil
}
