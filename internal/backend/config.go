package backend

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"finsight/internal/config"
)

// FromAppConfig converts the application config to backend config. The
// Firebase app is attached separately because auth shares it.
func FromAppConfig(appConfig *config.Config, app *firebase.App) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:            backendType,
		SQLiteDBPath:    appConfig.SQLiteDBPath,
		FirestorePrefix: appConfig.FirestorePrefix,
		Firebase:        app,
		AMQPURL:         appConfig.AMQPURL,
		AMQPExchange:    appConfig.AMQPExchange,
		AMQPQueue:       appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case FirestoreBackend:
		if c.Firebase == nil {
			return errors.New("an initialized Firebase app is required for firestore backend")
		}
	}
	return nil
}

// NeedsFirebase reports whether the configuration needs a Firebase app.
func NeedsFirebase(appConfig *config.Config) bool {
	return appConfig.DataBackend == string(FirestoreBackend) || appConfig.AuthMode == "firebase"
}

// NewFirebaseApp initializes the Firebase app shared by Firestore and auth.
// Without a credentials file, application default credentials are used.
func NewFirebaseApp(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{FirestoreBackend.String(), SQLiteBackend.String(), MemoryBackend.String()}
}
