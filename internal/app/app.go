package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/altair-hq/igclient/internal/config"
	"github.com/altair-hq/igclient/internal/logger"
	"github.com/altair-hq/igclient/internal/storage"
	"github.com/altair-hq/igclient/pkg/client"
	"github.com/altair-hq/igclient/pkg/devices"
	"github.com/altair-hq/igclient/pkg/httpclient"
	"github.com/altair-hq/igclient/pkg/session"
	"github.com/altair-hq/igclient/pkg/signer"
)

// App wires the session store, transport and signed client together for one
// account. It restores a persisted session when a fresh one exists and
// persists the evolved state after every call.
type App struct {
	cfg    *config.Config
	log    logger.Logger
	store  storage.Store
	state  *session.State
	client *client.Client
}

// New builds the runtime for the configured account.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg.Account == "" {
		return nil, fmt.Errorf("account must be configured")
	}

	if cfg.DevicesFile != "" {
		if err := devices.LoadProfiles(cfg.DevicesFile); err != nil {
			return nil, fmt.Errorf("load device profiles: %w", err)
		}
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SessionTTL:      cfg.SessionTTL,
		CleanupInterval: cfg.StorageCleanup,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	state, restored, err := restoreOrCreate(store, cfg.Account)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.InfoObj("session ready", "session_meta", map[string]any{
		"account":   cfg.Account,
		"restored":  restored,
		"device_id": state.DeviceID,
	})

	transport := httpclient.NewRestyClient(cfg.HTTPTimeout)

	base := cfg.APIBaseURL
	if base == "" {
		base = signer.BaseURL
	}
	cookies, err := session.NewJarCookies(transport.Jar(), base)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("bind cookie jar: %w", err)
	}
	state.Cookies = cookies

	c := client.New(transport, state,
		client.WithBaseURL(base),
		client.WithLogger(log),
	)

	return &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		state:  state,
		client: c,
	}, nil
}

// restoreOrCreate loads the persisted session for account or mints a new one.
func restoreOrCreate(store storage.Store, account string) (*session.State, bool, error) {
	snapshot, found, err := store.LoadSession(account)
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	if found {
		state, err := session.Restore(snapshot)
		if err != nil {
			return nil, false, fmt.Errorf("restore session: %w", err)
		}
		// Pigeon ids do not survive across processes.
		state.PigeonSessionID = session.NewPigeonSessionID()
		return state, true, nil
	}

	profile := devices.ProfileForSeed(account)
	return session.New(account, profile.UserAgent()), false, nil
}

// Send issues one signed request and persists the updated session state.
func (a *App) Send(ctx context.Context, path, method string, data map[string]any) (json.RawMessage, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("app is not initialized")
	}

	out, err := a.client.Send(ctx, client.Request{
		URL:    path,
		Method: method,
		Data:   data,
	})

	// Persist whatever the response hook wrote, even on decode failures.
	if snapErr := a.persist(); snapErr != nil {
		a.log.WarnObj("session persist failed", "error", snapErr)
	}

	return out, err
}

func (a *App) persist() error {
	snapshot, err := a.state.Snapshot()
	if err != nil {
		return err
	}
	if err := a.store.SaveSession(a.cfg.Account, snapshot); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Close releases the session store.
func (a *App) Close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("storage close failed", "error", err)
	}
}
