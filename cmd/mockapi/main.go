// mockapi serves an in-memory copy of the event platform backend for local development.
// It refuses to start when APP_ENV=production. Without MOCK_JWT_PRIVATE_KEY it signs with a
// throwaway ES256 key and prints the matching public key for JWT_PUBLIC_KEY.
package main

import (
	"context"
	"crypto"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-admin-console/internal/config"
	"event-admin-console/internal/logging"
	"event-admin-console/internal/mockapi"
	"event-admin-console/internal/security"
)

const (
	issuerName = "event-admin-console-mockapi"
	audience   = "event-admin-console"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	signer, pub, err := signingKeys(cfg, logger)
	if err != nil {
		logger.Error("signing key", "error", err)
		os.Exit(1)
	}
	issuer, err := security.NewIssuer(signer, pub, issuerName, audience, cfg.MockAccessTTLDuration())
	if err != nil {
		logger.Error("issuer", "error", err)
		os.Exit(1)
	}

	srv, err := mockapi.New(mockapi.Options{
		Addr:       cfg.MockAPIAddr,
		Env:        cfg.Env,
		Issuer:     issuer,
		Hasher:     security.NewPasswordHasher(cfg.BcryptCost),
		RefreshTTL: cfg.MockRefreshTTLDuration(),
		Seed: []mockapi.SeedAccount{
			{Email: cfg.MockSeedEmail, Password: cfg.MockSeedPassword, FirstName: "Dev", LastName: "Admin", RoleID: mockapi.RoleITAdmin},
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("mockapi", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("mock backend listening", "addr", cfg.MockAPIAddr, "seed_email", cfg.MockSeedEmail)
		if err := srv.Start(); err != nil {
			logger.Error("serve", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down mock backend...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("mock backend stopped")
}

// signingKeys loads the configured key pair or generates an ephemeral one.
func signingKeys(cfg *config.Config, logger *slog.Logger) (crypto.Signer, crypto.PublicKey, error) {
	if cfg.MockJWTPrivateKey != "" && cfg.MockJWTPublicKey != "" {
		signer, err := security.ParsePrivateKey(cfg.MockJWTPrivateKey)
		if err != nil {
			return nil, nil, fmt.Errorf("MOCK_JWT_PRIVATE_KEY: %w", err)
		}
		pub, err := security.ParsePublicKey(cfg.MockJWTPublicKey)
		if err != nil {
			return nil, nil, fmt.Errorf("MOCK_JWT_PUBLIC_KEY: %w", err)
		}
		return signer, pub, nil
	}
	signer, pub, err := security.GenerateSigningKey()
	if err != nil {
		return nil, nil, err
	}
	pemText, err := security.EncodePublicKeyPEM(pub)
	if err != nil {
		return nil, nil, err
	}
	logger.Warn("no MOCK_JWT_PRIVATE_KEY/MOCK_JWT_PUBLIC_KEY set; using an ephemeral ES256 key")
	fmt.Fprint(os.Stderr, pemText)
	return signer, pub, nil
}
