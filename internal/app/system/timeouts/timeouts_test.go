package timeouts

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	Reset()
	if List() != 8*time.Second {
		t.Errorf("List() = %v, want 8s", List())
	}
	if Export() != 30*time.Second {
		t.Errorf("Export() = %v, want 30s", Export())
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{List: 3 * time.Second})
	got := Current()
	if got.List != 3*time.Second {
		t.Errorf("List = %v, want 3s", got.List)
	}
	if got.Export != DefaultExport {
		t.Errorf("Export = %v, want default", got.Export)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 10*time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
