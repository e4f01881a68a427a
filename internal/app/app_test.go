package app

import (
	"context"
	"testing"
	"time"

	"github.com/sm8ta/webike_workshop_service/internal/config"
)

func memoryConfig() *config.Container {
	return &config.Container{
		App:       &config.App{Name: "webike-workshop", Env: "test"},
		Token:     &config.Token{Secret: "test-secret", Duration: time.Hour},
		DB:        &config.DB{},
		HTTP:      &config.HTTP{Env: "test", URL: "127.0.0.1", Port: "0", AllowedOrigins: "*"},
		Redis:     &config.Redis{},
		Storage:   &config.Storage{Driver: config.StorageMemory},
		Inventory: &config.Inventory{Debounce: time.Millisecond},
		Admin:     &config.Admin{},
	}
}

func TestStopBeforeRunShutsServerDown(t *testing.T) {
	a, err := New(context.Background(), memoryConfig())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run after stop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run kept serving after stop")
	}
}
