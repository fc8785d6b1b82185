package firebase

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"budgetcoach/internal/domain/user"
)

// Config selects the Firebase project. CredentialsFile may be empty when
// application default credentials or the Firestore emulator are available.
type Config struct {
	ProjectID       string
	CredentialsFile string
}

// App wraps a Firebase app and the clients built from it
type App struct {
	app  *firebase.App
	auth *auth.Client
}

// NewApp initializes a Firebase app and its Auth client
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	logrus.WithField("project_id", cfg.ProjectID).Info("Firebase app initialized")
	return &App{app: app, auth: authClient}, nil
}

// Firestore returns a new Firestore client. The caller closes it.
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := a.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}
	return client, nil
}

// VerifyIDToken checks a Firebase ID token and returns the identity it carries.
// Implements user.TokenVerifier.
func (a *App) VerifyIDToken(ctx context.Context, idToken string) (*user.ExternalIdentity, error) {
	token, err := a.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}
	return identityFromToken(token)
}

// DeleteAuthUser removes the Firebase Auth record of a user. A user that
// does not exist in Firebase Auth is not an error.
func (a *App) DeleteAuthUser(ctx context.Context, uid string) error {
	err := a.auth.DeleteUser(ctx, uid)
	if err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("failed to delete firebase user: %w", err)
	}
	return nil
}

func identityFromToken(token *auth.Token) (*user.ExternalIdentity, error) {
	if token == nil || token.UID == "" {
		return nil, errors.New("token has no subject")
	}

	ident := &user.ExternalIdentity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		ident.DisplayName = name
	}
	if ident.Email == "" {
		return nil, errors.New("token has no email claim")
	}
	return ident, nil
}

var _ user.TokenVerifier = (*App)(nil)
