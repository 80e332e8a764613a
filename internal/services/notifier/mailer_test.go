package notifier

import (
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jafetfresenbet/TrueTime/internal/domain/reminder"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"nil", nil, false},
		{"550 no such mailbox", &textproto.Error{Code: 550, Msg: "no such user"}, true},
		{"553 bad address", &textproto.Error{Code: 553, Msg: "mailbox name not allowed"}, true},
		{"wrapped 5xx", fmt.Errorf("rcpt to: %w", &textproto.Error{Code: 554, Msg: "rejected"}), true},
		{"421 service unavailable", &textproto.Error{Code: 421, Msg: "try again later"}, false},
		{"450 mailbox busy", &textproto.Error{Code: 450, Msg: "busy"}, false},
		{"dial error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Error(t, got)
			assert.Equal(t, tt.permanent, reminder.IsPermanent(got))
			if !tt.permanent {
				assert.Equal(t, tt.err, got, "transient errors pass through untouched")
			}
		})
	}
}
