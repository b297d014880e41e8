package gpu

import (
	"errors"
	"strings"
	"testing"
)

func TestFenceWaitErr(t *testing.T) {
	if err := fenceWaitErr(true, nil); err != nil {
		t.Errorf("signaled fence produced error: %v", err)
	}

	if err := fenceWaitErr(false, nil); !errors.Is(err, ErrFenceTimeout) {
		t.Errorf("timed-out fence: got %v, want ErrFenceTimeout", err)
	}

	cause := errors.New("device lost")
	err := fenceWaitErr(false, cause)
	if !errors.Is(err, cause) {
		t.Errorf("wait error not wrapped: %v", err)
	}
	if strings.Contains(err.Error(), "%!") {
		t.Errorf("malformed error message: %q", err.Error())
	}
}
